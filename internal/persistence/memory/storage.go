// Package memory provides an in-memory persistence implementation used by
// service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/timeclock/internal/persistence"
)

// Storage implements the persistence repositories backed by process memory.
type Storage struct {
	mu        sync.RWMutex
	employees map[string]persistence.Employee
	sessions  map[string]persistence.WorkSession
	failure   error
}

// NewStorage returns an empty storage.
func NewStorage() *Storage {
	return &Storage{
		employees: make(map[string]persistence.Employee),
		sessions:  make(map[string]persistence.WorkSession),
	}
}

// Fail makes every subsequent operation return err until cleared with nil.
// Tests use it to exercise store-unavailable handling.
func (s *Storage) Fail(err error) {
	s.mu.Lock()
	s.failure = err
	s.mu.Unlock()
}

// Ping reports the injected failure, if any.
func (s *Storage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure
}

// --- EmployeeRepository implementation ---

// CreateEmployee stores a new employee.
func (s *Storage) CreateEmployee(ctx context.Context, employee persistence.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return s.failure
	}
	if _, ok := s.employees[employee.ID]; ok {
		return persistence.ErrDuplicate
	}

	s.employees[employee.ID] = employee
	return nil
}

// UpdateEmployee updates an existing employee.
func (s *Storage) UpdateEmployee(ctx context.Context, employee persistence.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return s.failure
	}
	if _, ok := s.employees[employee.ID]; !ok {
		return persistence.ErrNotFound
	}

	s.employees[employee.ID] = employee
	return nil
}

// GetEmployee retrieves an employee by ID.
func (s *Storage) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failure != nil {
		return persistence.Employee{}, s.failure
	}
	employee, ok := s.employees[id]
	if !ok {
		return persistence.Employee{}, persistence.ErrNotFound
	}

	return employee, nil
}

// ListEmployees returns all employees ordered by display name.
func (s *Storage) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failure != nil {
		return nil, s.failure
	}

	employees := make([]persistence.Employee, 0, len(s.employees))
	for _, employee := range s.employees {
		employees = append(employees, employee)
	}

	sort.Slice(employees, func(i, j int) bool {
		if employees[i].DisplayName == employees[j].DisplayName {
			return employees[i].ID < employees[j].ID
		}
		return employees[i].DisplayName < employees[j].DisplayName
	})

	return employees, nil
}

// --- SessionRepository implementation ---

// CreateOpenSession stores a new open session, rejecting a second open session
// for the same employee.
func (s *Storage) CreateOpenSession(ctx context.Context, session persistence.WorkSession) (persistence.WorkSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return persistence.WorkSession{}, s.failure
	}
	if _, ok := s.sessions[session.ID]; ok {
		return persistence.WorkSession{}, persistence.ErrDuplicate
	}
	for _, existing := range s.sessions {
		if existing.EmployeeID == session.EmployeeID && existing.Open() {
			return persistence.WorkSession{}, persistence.ErrOpenSessionExists
		}
	}

	session.EndedAt = nil
	s.sessions[session.ID] = cloneSession(session)
	return cloneSession(session), nil
}

// CloseOpenSession sets EndedAt on the employee's open session. The check and
// write happen under one lock, mirroring the conditional UPDATE the SQLite
// implementation issues.
func (s *Storage) CloseOpenSession(ctx context.Context, employeeID string, endedAt time.Time) (persistence.WorkSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		return persistence.WorkSession{}, s.failure
	}
	for id, existing := range s.sessions {
		if existing.EmployeeID != employeeID || !existing.Open() {
			continue
		}
		ended := endedAt
		existing.EndedAt = &ended
		existing.UpdatedAt = endedAt
		s.sessions[id] = cloneSession(existing)
		return cloneSession(existing), nil
	}

	return persistence.WorkSession{}, persistence.ErrNoOpenSession
}

// GetOpenSession returns the employee's open session, if any.
func (s *Storage) GetOpenSession(ctx context.Context, employeeID string) (persistence.WorkSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failure != nil {
		return persistence.WorkSession{}, s.failure
	}
	for _, existing := range s.sessions {
		if existing.EmployeeID == employeeID && existing.Open() {
			return cloneSession(existing), nil
		}
	}

	return persistence.WorkSession{}, persistence.ErrNotFound
}

// ListSessionsOverlapping returns the employee's sessions intersecting the
// filter range, ordered by StartedAt ascending. Open sessions are treated as
// running until the end of the range.
func (s *Storage) ListSessionsOverlapping(ctx context.Context, employeeID string, filter persistence.SessionFilter) ([]persistence.WorkSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failure != nil {
		return nil, s.failure
	}

	sessions := make([]persistence.WorkSession, 0)
	for _, session := range s.sessions {
		if session.EmployeeID != employeeID {
			continue
		}
		end := filter.To
		if session.EndedAt != nil {
			end = *session.EndedAt
		}
		if !session.StartedAt.Before(filter.To) || !end.After(filter.From) {
			continue
		}
		sessions = append(sessions, cloneSession(session))
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})

	return sessions, nil
}

// CountOpenSessions reports how many sessions across all employees have no
// end instant yet.
func (s *Storage) CountOpenSessions(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failure != nil {
		return 0, s.failure
	}

	count := 0
	for _, session := range s.sessions {
		if session.Open() {
			count++
		}
	}
	return count, nil
}

func cloneSession(session persistence.WorkSession) persistence.WorkSession {
	clone := session
	if session.EndedAt != nil {
		ended := *session.EndedAt
		clone.EndedAt = &ended
	}
	return clone
}
