package application

import (
	"time"

	"github.com/example/timeclock/internal/persistence"
)

// Employee represents a directory entry exposed by the application services.
type Employee struct {
	ID                  string
	DisplayName         string
	Role                string
	WeeklyTargetMinutes int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// EmployeeInput captures caller provided employee attributes.
type EmployeeInput struct {
	DisplayName         string
	Role                string
	WeeklyTargetMinutes int
}

// WorkSession represents a clocked work interval. EndedAt is nil while the
// session is open.
type WorkSession struct {
	ID         string
	EmployeeID string
	StartedAt  time.Time
	EndedAt    *time.Time
}

// Open reports whether the session has not been closed yet.
func (s WorkSession) Open() bool {
	return s.EndedAt == nil
}

// StartResult captures the outcome of a clock-in request. AlreadyWorking is
// true when an open session already existed; the request is then a no-op and
// Session is the existing record.
type StartResult struct {
	Session        WorkSession
	AlreadyWorking bool
}

// StopResult captures the outcome of a clock-out request.
type StopResult struct {
	Session         WorkSession
	DurationMinutes int
}

// Status reports whether an employee is currently clocked in.
type Status struct {
	IsWorking bool
	OpenSince *time.Time
}

// Totals carries aggregated worked minutes for the day, week, and month
// containing the reference instant.
type Totals struct {
	Reference    time.Time
	TodayMinutes int
	WeekMinutes  int
	MonthMinutes int
}

// Progress compares the weekly total against the weekly target. Percentage is
// not capped; exceeding the target is reported as-is.
type Progress struct {
	Reference     time.Time
	WeekMinutes   int
	TargetMinutes int
	Percentage    float64
}

// Productivity is a bounded 0-100 score derived from recent target attainment
// and day-to-day consistency, plus the current streak of days that met the
// pro-rated daily share of the weekly target.
type Productivity struct {
	Reference  time.Time
	Score      int
	StreakDays int
}

func toEmployee(model persistence.Employee) Employee {
	return Employee{
		ID:                  model.ID,
		DisplayName:         model.DisplayName,
		Role:                model.Role,
		WeeklyTargetMinutes: model.WeeklyTargetMinutes,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}

func toWorkSession(model persistence.WorkSession) WorkSession {
	session := WorkSession{
		ID:         model.ID,
		EmployeeID: model.EmployeeID,
		StartedAt:  model.StartedAt,
	}
	if model.EndedAt != nil {
		ended := *model.EndedAt
		session.EndedAt = &ended
	}
	return session
}
