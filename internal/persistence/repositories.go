package persistence

import (
	"context"
	"time"
)

// EmployeeRepository exposes directory operations for employees.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee Employee) error
	UpdateEmployee(ctx context.Context, employee Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// SessionFilter narrows work-session queries to intervals that overlap the
// half-open range [From, To). Open sessions are treated as extending to To.
type SessionFilter struct {
	From time.Time
	To   time.Time
}

// SessionRepository stores work-session records. Implementations must enforce
// the single-open-session invariant: CreateOpenSession fails with
// ErrOpenSessionExists when the employee already has an open session, and
// CloseOpenSession writes EndedAt exactly once via a conditional update.
type SessionRepository interface {
	CreateOpenSession(ctx context.Context, session WorkSession) (WorkSession, error)
	CloseOpenSession(ctx context.Context, employeeID string, endedAt time.Time) (WorkSession, error)
	GetOpenSession(ctx context.Context, employeeID string) (WorkSession, error)
	ListSessionsOverlapping(ctx context.Context, employeeID string, filter SessionFilter) ([]WorkSession, error)
	CountOpenSessions(ctx context.Context) (int, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
