package persistence

import "time"

// Employee represents a directory entry for a staff member.
type Employee struct {
	ID                  string
	DisplayName         string
	Role                string
	WeeklyTargetMinutes int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// WorkSession represents a single clocked work interval for an employee.
// EndedAt is nil while the session is open. StartedAt is immutable and
// closing the session is the only mutation a record ever receives.
type WorkSession struct {
	ID         string
	EmployeeID string
	StartedAt  time.Time
	EndedAt    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Open reports whether the session has not been closed yet.
func (s WorkSession) Open() bool {
	return s.EndedAt == nil
}
