package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/timeclock/internal/persistence"
)

func TestSessionRepository_CreateOpenSession(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	employee := seedEmployee(t, db, "emp-1")
	started := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	created, err := repo.CreateOpenSession(ctx, persistence.WorkSession{
		ID:         "sess-1",
		EmployeeID: employee.ID,
		StartedAt:  started,
		CreatedAt:  started,
		UpdatedAt:  started,
	})
	if err != nil {
		t.Fatalf("CreateOpenSession returned error: %v", err)
	}
	if !created.Open() {
		t.Fatalf("expected created session to be open")
	}

	t.Run("rejects a second open session", func(t *testing.T) {
		_, err := repo.CreateOpenSession(ctx, persistence.WorkSession{
			ID:         "sess-2",
			EmployeeID: employee.ID,
			StartedAt:  started.Add(time.Minute),
			CreatedAt:  started.Add(time.Minute),
			UpdatedAt:  started.Add(time.Minute),
		})
		if !errors.Is(err, persistence.ErrOpenSessionExists) {
			t.Fatalf("expected ErrOpenSessionExists, got %v", err)
		}
	})

	t.Run("round trips through GetOpenSession", func(t *testing.T) {
		open, err := repo.GetOpenSession(ctx, employee.ID)
		if err != nil {
			t.Fatalf("GetOpenSession returned error: %v", err)
		}
		if open.ID != "sess-1" {
			t.Fatalf("expected sess-1, got %q", open.ID)
		}
		if !open.StartedAt.Equal(started) {
			t.Fatalf("started_at = %v, want %v", open.StartedAt, started)
		}
	})
}

func TestSessionRepository_CloseOpenSession(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	employee := seedEmployee(t, db, "emp-1")
	started := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	ended := started.Add(45 * time.Minute)

	if _, err := repo.CreateOpenSession(ctx, persistence.WorkSession{
		ID: "sess-1", EmployeeID: employee.ID, StartedAt: started, CreatedAt: started, UpdatedAt: started,
	}); err != nil {
		t.Fatalf("CreateOpenSession returned error: %v", err)
	}

	closed, err := repo.CloseOpenSession(ctx, employee.ID, ended)
	if err != nil {
		t.Fatalf("CloseOpenSession returned error: %v", err)
	}
	if closed.EndedAt == nil || !closed.EndedAt.Equal(ended) {
		t.Fatalf("ended_at = %v, want %v", closed.EndedAt, ended)
	}
	if closed.StartedAt.After(*closed.EndedAt) {
		t.Fatalf("ended_at precedes started_at")
	}

	t.Run("closing again fails with ErrNoOpenSession", func(t *testing.T) {
		if _, err := repo.CloseOpenSession(ctx, employee.ID, ended.Add(time.Minute)); !errors.Is(err, persistence.ErrNoOpenSession) {
			t.Fatalf("expected ErrNoOpenSession, got %v", err)
		}
	})

	t.Run("open session lookup now misses", func(t *testing.T) {
		if _, err := repo.GetOpenSession(ctx, employee.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after close, got %v", err)
		}
	})
}

func TestSessionRepository_CloseWithoutOpen(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewSessionRepository(db)
	employee := seedEmployee(t, db, "emp-1")

	_, err := repo.CloseOpenSession(context.Background(), employee.ID, time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC))
	if !errors.Is(err, persistence.ErrNoOpenSession) {
		t.Fatalf("expected ErrNoOpenSession, got %v", err)
	}
}

func TestSessionRepository_CountOpenSessions(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	first := seedEmployee(t, db, "emp-1")
	second := seedEmployee(t, db, "emp-2")

	count, err := repo.CountOpenSessions(ctx)
	if err != nil {
		t.Fatalf("CountOpenSessions returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0 on an empty store", count)
	}

	started := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	for i, employee := range []persistence.Employee{first, second} {
		_, err := repo.CreateOpenSession(ctx, persistence.WorkSession{
			ID:         fmt.Sprintf("sess-%d", i+1),
			EmployeeID: employee.ID,
			StartedAt:  started,
			CreatedAt:  started,
			UpdatedAt:  started,
		})
		if err != nil {
			t.Fatalf("opening session for %s: %v", employee.ID, err)
		}
	}

	count, err = repo.CountOpenSessions(ctx)
	if err != nil {
		t.Fatalf("CountOpenSessions returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2 open sessions", count)
	}

	if _, err := repo.CloseOpenSession(ctx, first.ID, started.Add(30*time.Minute)); err != nil {
		t.Fatalf("closing session: %v", err)
	}

	count, err = repo.CountOpenSessions(ctx)
	if err != nil {
		t.Fatalf("CountOpenSessions returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1 after one clock-out", count)
	}
}

func TestSessionRepository_ListSessionsOverlapping(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	employee := seedEmployee(t, db, "emp-1")
	other := seedEmployee(t, db, "emp-2")

	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	add := func(id, employeeID string, start time.Time, end *time.Time) {
		t.Helper()
		created, err := repo.CreateOpenSession(ctx, persistence.WorkSession{
			ID: id, EmployeeID: employeeID, StartedAt: start, CreatedAt: start, UpdatedAt: start,
		})
		if err != nil {
			t.Fatalf("seeding session %s: %v", id, err)
		}
		if end != nil {
			if _, err := repo.CloseOpenSession(ctx, created.EmployeeID, *end); err != nil {
				t.Fatalf("closing session %s: %v", id, err)
			}
		}
	}
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }
	ptr := func(v time.Time) *time.Time { return &v }

	add("sess-prev", employee.ID, at(-10, 0), ptr(at(-9, 0)))      // previous day, closed
	add("sess-span", employee.ID, at(-1, 30), ptr(at(1, 0)))       // spans midnight into the day
	add("sess-in", employee.ID, at(9, 0), ptr(at(9, 45)))          // inside the day
	add("sess-other", other.ID, at(9, 0), ptr(at(10, 0)))          // different employee
	add("sess-open", employee.ID, at(15, 0), nil)                  // still open

	sessions, err := repo.ListSessionsOverlapping(ctx, employee.ID, persistence.SessionFilter{
		From: day,
		To:   day.AddDate(0, 0, 1),
	})
	if err != nil {
		t.Fatalf("ListSessionsOverlapping returned error: %v", err)
	}

	want := []string{"sess-span", "sess-in", "sess-open"}
	if len(sessions) != len(want) {
		t.Fatalf("expected %d sessions, got %d: %v", len(want), len(sessions), sessionIDs(sessions))
	}
	for i, id := range want {
		if sessions[i].ID != id {
			t.Fatalf("session[%d] = %q, want %q (order must be StartedAt ascending)", i, sessions[i].ID, id)
		}
	}
}

// Two goroutines racing to open a session for the same employee must produce
// exactly one open row; the partial unique index arbitrates the race even
// without the service-level lock.
func TestSessionRepository_ConcurrentOpenIsExclusive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	employee := seedEmployee(t, db, "emp-1")
	started := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateOpenSession(ctx, persistence.WorkSession{
				ID:         fmt.Sprintf("sess-%d", i),
				EmployeeID: employee.ID,
				StartedAt:  started,
				CreatedAt:  started,
				UpdatedAt:  started,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, persistence.ErrOpenSessionExists):
		default:
			t.Fatalf("attempt %d failed unexpectedly: %v", i, err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one open session to win, got %d", succeeded)
	}
}

func sessionIDs(sessions []persistence.WorkSession) []string {
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}
