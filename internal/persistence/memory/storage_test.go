package memory

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/example/timeclock/internal/persistence"
)

var (
	_ persistence.EmployeeRepository = (*Storage)(nil)
	_ persistence.SessionRepository  = (*Storage)(nil)
	_ persistence.Pinger             = (*Storage)(nil)
)

func TestStorageCountOpenSessions(t *testing.T) {
	t.Parallel()

	storage := NewStorage()
	ctx := context.Background()
	started := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	count, err := storage.CountOpenSessions(ctx)
	if err != nil {
		t.Fatalf("CountOpenSessions returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0 on an empty store", count)
	}

	for _, id := range []string{"emp-1", "emp-2"} {
		_, err := storage.CreateOpenSession(ctx, persistence.WorkSession{
			ID:         "sess-" + id,
			EmployeeID: id,
			StartedAt:  started,
			CreatedAt:  started,
			UpdatedAt:  started,
		})
		if err != nil {
			t.Fatalf("opening session for %s: %v", id, err)
		}
	}

	count, err = storage.CountOpenSessions(ctx)
	if err != nil {
		t.Fatalf("CountOpenSessions returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2 open sessions", count)
	}

	if _, err := storage.CloseOpenSession(ctx, "emp-1", started.Add(45*time.Minute)); err != nil {
		t.Fatalf("closing session: %v", err)
	}

	count, err = storage.CountOpenSessions(ctx)
	if err != nil {
		t.Fatalf("CountOpenSessions returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1 after one clock-out", count)
	}
}

func TestStorageCountOpenSessionsFailure(t *testing.T) {
	t.Parallel()

	storage := NewStorage()
	storage.Fail(io.ErrUnexpectedEOF)

	if _, err := storage.CountOpenSessions(context.Background()); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected the injected failure, got %v", err)
	}
}
