package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/timeclock/internal/persistence"
)

// newTestDB opens a file-backed database in a temp directory. A file-backed DB
// shares state across all connections in the pool, unlike :memory:.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "timeclock_test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func seedEmployee(t *testing.T, db *DB, id string) persistence.Employee {
	t.Helper()
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	employee := persistence.Employee{
		ID:                  id,
		DisplayName:         "Employee " + id,
		Role:                "support",
		WeeklyTargetMinutes: 2400,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := NewEmployeeRepository(db).CreateEmployee(context.Background(), employee); err != nil {
		t.Fatalf("seeding employee %s: %v", id, err)
	}
	return employee
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate returned error: %v", err)
	}
}

func TestDB_Ping(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}
