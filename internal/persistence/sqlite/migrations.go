package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migration is a named, ordered schema change. Statements run inside a single
// transaction together with the bookkeeping insert, so a migration either
// applies completely or not at all.
type migration struct {
	version    int
	name       string
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create_employees",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS employees (
				id TEXT PRIMARY KEY,
				display_name TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT '',
				weekly_target_minutes INTEGER NOT NULL DEFAULT 0 CHECK (weekly_target_minutes >= 0),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "create_work_sessions",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS work_sessions (
				id TEXT PRIMARY KEY,
				employee_id TEXT NOT NULL REFERENCES employees(id),
				started_at TEXT NOT NULL,
				ended_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (ended_at IS NULL OR ended_at >= started_at)
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS work_sessions_open_employee
				ON work_sessions(employee_id) WHERE ended_at IS NULL`,
			`CREATE INDEX IF NOT EXISTS work_sessions_employee_started
				ON work_sessions(employee_id, started_at)`,
		},
	},
}

// Migrate applies pending migrations in version order.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := d.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("reading applied migrations: %w", err)
	}
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("scanning migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterating applied migrations: %w", err)
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := d.withTx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("applying migration %d (%s): %w", m.version, m.name, err)
				}
			}
			_, err := tx.Exec(`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				m.version, m.name, formatTime(time.Now()))
			if err != nil {
				return fmt.Errorf("recording migration %d: %w", m.version, err)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	return nil
}
