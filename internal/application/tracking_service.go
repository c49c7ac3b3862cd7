package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/timeclock/internal/persistence"
	"github.com/example/timeclock/internal/timeclock"
)

// ClockStore captures the session persistence operations needed by the
// tracking service.
type ClockStore interface {
	CreateOpenSession(ctx context.Context, session persistence.WorkSession) (persistence.WorkSession, error)
	CloseOpenSession(ctx context.Context, employeeID string, endedAt time.Time) (persistence.WorkSession, error)
	GetOpenSession(ctx context.Context, employeeID string) (persistence.WorkSession, error)
}

// EmployeeDirectory resolves employee identities for validation.
type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, id string) (persistence.Employee, error)
}

// TrackingMetrics records tracking events for observability. Implementations
// must be safe for concurrent use.
type TrackingMetrics interface {
	SessionStarted()
	SessionStopped(durationMinutes int)
	ClockSkewClamped()
}

type noopTrackingMetrics struct{}

func (noopTrackingMetrics) SessionStarted() {}

func (noopTrackingMetrics) SessionStopped(int) {}

func (noopTrackingMetrics) ClockSkewClamped() {}

// TrackingService owns the clock-in/clock-out state machine. It is the sole
// writer of the clock store and serializes start/stop per employee so the
// single-open-session invariant holds under concurrent requests. Operations
// for distinct employees never block each other.
type TrackingService struct {
	store       ClockStore
	directory   EmployeeDirectory
	locks       employeeLocks
	idGenerator func() string
	now         func() time.Time
	metrics     TrackingMetrics
	logger      *slog.Logger
}

// NewTrackingService wires dependencies for the tracking service.
func NewTrackingService(store ClockStore, directory EmployeeDirectory, idGenerator func() string, now func() time.Time) *TrackingService {
	return NewTrackingServiceWithLogger(store, directory, idGenerator, now, nil, nil)
}

// NewTrackingServiceWithLogger wires dependencies including an explicit
// logger and metrics recorder. Nil metrics and logger fall back to no-ops.
func NewTrackingServiceWithLogger(store ClockStore, directory EmployeeDirectory, idGenerator func() string, now func() time.Time, metrics TrackingMetrics, logger *slog.Logger) *TrackingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if metrics == nil {
		metrics = noopTrackingMetrics{}
	}
	return &TrackingService{
		store:       store,
		directory:   directory,
		idGenerator: idGenerator,
		now:         now,
		metrics:     metrics,
		logger:      defaultLogger(logger),
	}
}

// Start clocks the employee in. Starting twice is a no-op: when an open
// session already exists it is returned unchanged with AlreadyWorking set.
func (s *TrackingService) Start(ctx context.Context, employeeID string) (StartResult, error) {
	if s == nil || s.store == nil {
		return StartResult{}, fmt.Errorf("tracking service not configured")
	}

	logger := serviceLogger(ctx, s.logger, "TrackingService", "Start", "employee_id", employeeID)

	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return StartResult{}, err
	}

	unlock := s.locks.lock(employeeID)
	defer unlock()

	existing, err := s.store.GetOpenSession(ctx, employeeID)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "clock-in ignored, session already open", "session_id", existing.ID)
		return StartResult{Session: toWorkSession(existing), AlreadyWorking: true}, nil
	case !errors.Is(err, persistence.ErrNotFound):
		return StartResult{}, storeError("reading open session", err)
	}

	startedAt := s.now().UTC()
	created, err := s.store.CreateOpenSession(ctx, persistence.WorkSession{
		ID:         s.idGenerator(),
		EmployeeID: employeeID,
		StartedAt:  startedAt,
		CreatedAt:  startedAt,
		UpdatedAt:  startedAt,
	})
	if err != nil {
		// A concurrent writer may have won the race past the lock (e.g. a
		// second service instance sharing the store); treat it as the
		// idempotent no-op case.
		if errors.Is(err, persistence.ErrOpenSessionExists) {
			if open, getErr := s.store.GetOpenSession(ctx, employeeID); getErr == nil {
				logger.InfoContext(ctx, "clock-in lost race, returning existing session", "session_id", open.ID)
				return StartResult{Session: toWorkSession(open), AlreadyWorking: true}, nil
			}
		}
		return StartResult{}, storeError("creating session", err)
	}

	s.metrics.SessionStarted()
	logger.InfoContext(ctx, "clocked in", "session_id", created.ID, "started_at", created.StartedAt)
	return StartResult{Session: toWorkSession(created)}, nil
}

// Stop clocks the employee out and returns the closed session's duration.
// Fails with ErrNotWorking when no session is open; nothing is mutated then.
func (s *TrackingService) Stop(ctx context.Context, employeeID string) (StopResult, error) {
	if s == nil || s.store == nil {
		return StopResult{}, fmt.Errorf("tracking service not configured")
	}

	logger := serviceLogger(ctx, s.logger, "TrackingService", "Stop", "employee_id", employeeID)

	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return StopResult{}, err
	}

	unlock := s.locks.lock(employeeID)
	defer unlock()

	open, err := s.store.GetOpenSession(ctx, employeeID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return StopResult{}, ErrNotWorking
		}
		return StopResult{}, storeError("reading open session", err)
	}

	endedAt := s.now().UTC()
	if endedAt.Before(open.StartedAt) {
		// Clock skew: never record a negative duration.
		logger.WarnContext(ctx, "clock skew clamped on clock-out",
			"session_id", open.ID, "started_at", open.StartedAt, "observed_now", endedAt)
		s.metrics.ClockSkewClamped()
		endedAt = open.StartedAt
	}

	closed, err := s.store.CloseOpenSession(ctx, employeeID, endedAt)
	if err != nil {
		if errors.Is(err, persistence.ErrNoOpenSession) {
			return StopResult{}, ErrNotWorking
		}
		return StopResult{}, storeError("closing session", err)
	}

	duration := timeclock.ElapsedMinutes(closed.StartedAt, *closed.EndedAt)
	s.metrics.SessionStopped(duration)
	logger.InfoContext(ctx, "clocked out", "session_id", closed.ID, "duration_minutes", duration)
	return StopResult{Session: toWorkSession(closed), DurationMinutes: duration}, nil
}

// Status reports whether the employee is currently clocked in.
func (s *TrackingService) Status(ctx context.Context, employeeID string) (Status, error) {
	if s == nil || s.store == nil {
		return Status{}, fmt.Errorf("tracking service not configured")
	}

	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return Status{}, err
	}

	open, err := s.store.GetOpenSession(ctx, employeeID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Status{}, nil
		}
		return Status{}, storeError("reading open session", err)
	}

	since := open.StartedAt
	return Status{IsWorking: true, OpenSince: &since}, nil
}

func (s *TrackingService) ensureEmployee(ctx context.Context, employeeID string) error {
	if s.directory == nil {
		return nil
	}
	if _, err := s.directory.GetEmployee(ctx, employeeID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return storeError("resolving employee", err)
	}
	return nil
}

// storeError maps persistence failures onto the retryable ErrUnavailable
// sentinel. Start/stop leave no partial state behind on failure, so callers
// can retry safely.
func storeError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, operation, err)
}

// employeeLocks hands out one mutex per employee key. The zero value is ready
// to use.
type employeeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *employeeLocks) lock(key string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
