package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/timeclock/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
//
// The single-open-session invariant is enforced twice: the partial unique
// index work_sessions_open_employee rejects a second open row at insert, and
// CloseOpenSession targets `ended_at IS NULL` so a session can only be closed
// once.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a session repository on the shared connection.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, employee_id, started_at, ended_at, created_at, updated_at`

// CreateOpenSession inserts a new open session for the employee.
func (r *SessionRepository) CreateOpenSession(ctx context.Context, session persistence.WorkSession) (persistence.WorkSession, error) {
	if session.ID == "" || session.EmployeeID == "" {
		return persistence.WorkSession{}, persistence.ErrConstraintViolation
	}

	session.EndedAt = nil
	session.StartedAt = session.StartedAt.UTC()
	session.CreatedAt = session.CreatedAt.UTC()
	session.UpdatedAt = session.UpdatedAt.UTC()

	query := `INSERT INTO work_sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, NULL, ?, ?)`
	_, err := r.db.db.ExecContext(ctx, query,
		session.ID,
		session.EmployeeID,
		formatTime(session.StartedAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	if err != nil {
		return persistence.WorkSession{}, mapError(err)
	}

	return session, nil
}

// CloseOpenSession writes EndedAt on the employee's open session and returns
// the closed record. The update is conditional on `ended_at IS NULL`, so
// concurrent closes cannot both succeed.
func (r *SessionRepository) CloseOpenSession(ctx context.Context, employeeID string, endedAt time.Time) (persistence.WorkSession, error) {
	endedAtUTC := endedAt.UTC()
	var closed persistence.WorkSession

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var (
			session               persistence.WorkSession
			startedAtStr          string
			createdAtStr          string
			updatedAtStr          string
			endedAtStr            sql.NullString
			parseErr, scanTimeErr error
		)

		row := tx.QueryRow(`SELECT `+sessionColumns+` FROM work_sessions
			WHERE employee_id = ? AND ended_at IS NULL`, employeeID)
		if err := row.Scan(&session.ID, &session.EmployeeID, &startedAtStr, &endedAtStr, &createdAtStr, &updatedAtStr); err != nil {
			if err == sql.ErrNoRows {
				return persistence.ErrNoOpenSession
			}
			return mapError(err)
		}

		if session.StartedAt, parseErr = parseTime(startedAtStr); parseErr != nil {
			return parseErr
		}
		if session.CreatedAt, parseErr = parseTime(createdAtStr); parseErr != nil {
			return parseErr
		}
		if session.UpdatedAt, scanTimeErr = parseTime(updatedAtStr); scanTimeErr != nil {
			return scanTimeErr
		}

		result, err := tx.Exec(`UPDATE work_sessions
			SET ended_at = ?, updated_at = ?
			WHERE id = ? AND ended_at IS NULL`,
			formatTime(endedAtUTC), formatTime(endedAtUTC), session.ID)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("reading rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNoOpenSession
		}

		session.EndedAt = &endedAtUTC
		session.UpdatedAt = endedAtUTC
		closed = session
		return nil
	})
	if err != nil {
		return persistence.WorkSession{}, err
	}

	return closed, nil
}

// GetOpenSession returns the employee's open session, if any.
func (r *SessionRepository) GetOpenSession(ctx context.Context, employeeID string) (persistence.WorkSession, error) {
	row := r.db.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM work_sessions
		WHERE employee_id = ? AND ended_at IS NULL`, employeeID)
	return scanSessionRow(row)
}

// ListSessionsOverlapping returns the employee's sessions intersecting
// [filter.From, filter.To), oldest first. Open sessions count as running
// through the end of the range.
func (r *SessionRepository) ListSessionsOverlapping(ctx context.Context, employeeID string, filter persistence.SessionFilter) ([]persistence.WorkSession, error) {
	rows, err := r.db.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM work_sessions
		WHERE employee_id = ?
		  AND started_at < ?
		  AND (ended_at IS NULL OR ended_at > ?)
		ORDER BY started_at, id`,
		employeeID, formatTime(filter.To), formatTime(filter.From))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	sessions := make([]persistence.WorkSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return sessions, nil
}

// CountOpenSessions reports how many sessions are open across all employees.
// Used to seed gauges after a restart.
func (r *SessionRepository) CountOpenSessions(ctx context.Context) (int, error) {
	var count int
	err := r.db.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_sessions WHERE ended_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSessionRow(row *sql.Row) (persistence.WorkSession, error) {
	session, err := scanSession(row)
	if err != nil {
		return persistence.WorkSession{}, err
	}
	return session, nil
}

func scanSession(row rowScanner) (persistence.WorkSession, error) {
	var (
		session      persistence.WorkSession
		startedAtStr string
		createdAtStr string
		updatedAtStr string
		endedAtStr   sql.NullString
	)

	if err := row.Scan(&session.ID, &session.EmployeeID, &startedAtStr, &endedAtStr, &createdAtStr, &updatedAtStr); err != nil {
		return persistence.WorkSession{}, mapError(err)
	}

	var err error
	if session.StartedAt, err = parseTime(startedAtStr); err != nil {
		return persistence.WorkSession{}, err
	}
	if session.EndedAt, err = parseTimePtr(endedAtStr); err != nil {
		return persistence.WorkSession{}, err
	}
	if session.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.WorkSession{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.WorkSession{}, err
	}

	return session, nil
}
