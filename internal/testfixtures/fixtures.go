// Package testfixtures provides deterministic clocks, identifier generators,
// and record builders shared by the test suites.
package testfixtures

import (
	"time"

	"github.com/example/timeclock/internal/persistence"
)

// ReferenceTime returns the shared anchor instant used across fixtures. It is
// a Wednesday, keeping day and week boundaries a safe distance away so tests
// that advance the clock by a few hours stay inside the same windows.
func ReferenceTime() time.Time {
	return time.Date(2024, time.March, 13, 9, 0, 0, 0, time.UTC)
}

// EmployeeOption mutates an employee fixture before it is returned.
type EmployeeOption func(*persistence.Employee)

// WithWeeklyTarget overrides the fixture's weekly target minutes.
func WithWeeklyTarget(minutes int) EmployeeOption {
	return func(e *persistence.Employee) {
		e.WeeklyTargetMinutes = minutes
	}
}

// WithRole overrides the fixture's role.
func WithRole(role string) EmployeeOption {
	return func(e *persistence.Employee) {
		e.Role = role
	}
}

// NewEmployee builds an employee record with sensible defaults. The default
// weekly target is 2400 minutes, a 40 hour week.
func NewEmployee(id string, opts ...EmployeeOption) persistence.Employee {
	ref := ReferenceTime()
	employee := persistence.Employee{
		ID:                  id,
		DisplayName:         "Employee " + id,
		Role:                "agent",
		WeeklyTargetMinutes: 2400,
		CreatedAt:           ref,
		UpdatedAt:           ref,
	}
	for _, opt := range opts {
		opt(&employee)
	}
	return employee
}

// OpenSession builds a session that started at the given instant and has not
// ended.
func OpenSession(id, employeeID string, startedAt time.Time) persistence.WorkSession {
	return persistence.WorkSession{
		ID:         id,
		EmployeeID: employeeID,
		StartedAt:  startedAt,
		CreatedAt:  startedAt,
		UpdatedAt:  startedAt,
	}
}

// ClosedSession builds a session spanning the given instants.
func ClosedSession(id, employeeID string, startedAt, endedAt time.Time) persistence.WorkSession {
	session := OpenSession(id, employeeID, startedAt)
	session.EndedAt = &endedAt
	session.UpdatedAt = endedAt
	return session
}
