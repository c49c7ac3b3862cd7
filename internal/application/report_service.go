package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/timeclock/internal/persistence"
	"github.com/example/timeclock/internal/timeclock"
)

// SessionReader captures the read-only session access needed for aggregation.
type SessionReader interface {
	ListSessionsOverlapping(ctx context.Context, employeeID string, filter persistence.SessionFilter) ([]persistence.WorkSession, error)
}

// Weights of the two productivity components and the lookback used for the
// streak calculation.
const (
	attainmentWeight   = 0.6
	consistencyWeight  = 0.4
	streakLookbackDays = 28
	productivityWindow = 7
)

// ReportService aggregates closed and in-progress sessions into day, week,
// and month totals and derives target progress and a productivity score.
//
// Every read takes an explicit reference instant, making results
// deterministic: reads never block writers and compute on a snapshot of the
// session set taken up front, so a session closing mid-read still yields a
// consistent non-negative total.
type ReportService struct {
	sessions  SessionReader
	directory EmployeeDirectory
	now       func() time.Time
	location  *time.Location
	weekStart time.Weekday
	logger    *slog.Logger
}

// NewReportService wires dependencies for the report service. The location
// and weekStart define how calendar windows are anchored; a nil location
// means UTC.
func NewReportService(sessions SessionReader, directory EmployeeDirectory, now func() time.Time, location *time.Location, weekStart time.Weekday) *ReportService {
	return NewReportServiceWithLogger(sessions, directory, now, location, weekStart, nil)
}

// NewReportServiceWithLogger wires dependencies including an explicit logger.
func NewReportServiceWithLogger(sessions SessionReader, directory EmployeeDirectory, now func() time.Time, location *time.Location, weekStart time.Weekday, logger *slog.Logger) *ReportService {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	return &ReportService{
		sessions:  sessions,
		directory: directory,
		now:       now,
		location:  location,
		weekStart: weekStart,
		logger:    defaultLogger(logger),
	}
}

// Totals returns worked minutes for the day, week, and month containing ref.
// A zero ref means "now". The live portion of an open session counts up to
// ref, so today's total keeps rising while the employee is clocked in.
func (s *ReportService) Totals(ctx context.Context, employeeID string, ref time.Time) (Totals, error) {
	if s == nil || s.sessions == nil {
		return Totals{}, fmt.Errorf("report service not configured")
	}

	ref = s.reference(ref)
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return Totals{}, err
	}

	day := timeclock.DayWindow(ref, s.location)
	week := timeclock.WeekWindow(ref, s.weekStart, s.location)
	month := timeclock.MonthWindow(ref, s.location)

	// One snapshot covers all three windows; the week can spill outside the
	// month, so the span is the union.
	span := union(day, union(week, month))
	sessions, err := s.snapshot(ctx, employeeID, span)
	if err != nil {
		return Totals{}, err
	}

	return Totals{
		Reference:    ref,
		TodayMinutes: windowTotal(day, sessions, ref),
		WeekMinutes:  windowTotal(week, sessions, ref),
		MonthMinutes: windowTotal(month, sessions, ref),
	}, nil
}

// Progress reports weekly totals as a percentage of the weekly target. A
// targetMinutes of zero falls back to the employee's configured target. The
// percentage is not capped above 100.
func (s *ReportService) Progress(ctx context.Context, employeeID string, targetMinutes int, ref time.Time) (Progress, error) {
	if s == nil || s.sessions == nil {
		return Progress{}, fmt.Errorf("report service not configured")
	}

	ref = s.reference(ref)
	target, err := s.resolveTarget(ctx, employeeID, targetMinutes)
	if err != nil {
		return Progress{}, err
	}

	week := timeclock.WeekWindow(ref, s.weekStart, s.location)
	sessions, err := s.snapshot(ctx, employeeID, week)
	if err != nil {
		return Progress{}, err
	}

	minutes := windowTotal(week, sessions, ref)
	return Progress{
		Reference:     ref,
		WeekMinutes:   minutes,
		TargetMinutes: target,
		Percentage:    float64(minutes) / float64(target) * 100,
	}, nil
}

// Productivity derives a bounded 0-100 score from the trailing seven calendar
// days ending at ref: weighted target attainment plus day-to-day consistency
// against the pro-rated daily share of the weekly target. StreakDays counts
// consecutive days meeting the daily share, looking back at most
// streakLookbackDays; a day still in progress does not break a streak carried
// from yesterday.
func (s *ReportService) Productivity(ctx context.Context, employeeID string, ref time.Time) (Productivity, error) {
	if s == nil || s.sessions == nil {
		return Productivity{}, fmt.Errorf("report service not configured")
	}

	ref = s.reference(ref)
	target, err := s.resolveTarget(ctx, employeeID, 0)
	if err != nil {
		return Productivity{}, err
	}

	today := timeclock.DayWindow(ref, s.location)
	span := timeclock.Window{Start: today.Start.AddDate(0, 0, -(streakLookbackDays - 1)), End: today.End}
	sessions, err := s.snapshot(ctx, employeeID, span)
	if err != nil {
		return Productivity{}, err
	}

	dailyShare := float64(target) / float64(productivityWindow)
	dayTotals := make([]int, streakLookbackDays)
	for i := range dayTotals {
		day := timeclock.Window{
			Start: today.Start.AddDate(0, 0, i-(streakLookbackDays-1)),
			End:   today.Start.AddDate(0, 0, i-(streakLookbackDays-2)),
		}
		dayTotals[i] = windowTotal(day, sessions, ref)
	}

	trailingTotal := 0
	metDays := 0
	for i := streakLookbackDays - productivityWindow; i < streakLookbackDays; i++ {
		trailingTotal += dayTotals[i]
		if float64(dayTotals[i]) >= dailyShare {
			metDays++
		}
	}

	attainment := float64(trailingTotal) / float64(target)
	if attainment > 1 {
		attainment = 1
	}
	consistency := float64(metDays) / float64(productivityWindow)
	score := int(100*(attainmentWeight*attainment+consistencyWeight*consistency) + 0.5)

	// Streak runs backwards from today, or from yesterday when today has not
	// met the share yet.
	last := streakLookbackDays - 1
	if float64(dayTotals[last]) < dailyShare {
		last--
	}
	streak := 0
	for i := last; i >= 0; i-- {
		if float64(dayTotals[i]) < dailyShare {
			break
		}
		streak++
	}

	return Productivity{Reference: ref, Score: score, StreakDays: streak}, nil
}

func (s *ReportService) reference(ref time.Time) time.Time {
	if ref.IsZero() {
		return s.now().UTC()
	}
	return ref
}

func (s *ReportService) resolveTarget(ctx context.Context, employeeID string, override int) (int, error) {
	if override < 0 {
		vErr := &ValidationError{}
		vErr.add("weekly_target_minutes", "weekly target must be positive")
		return 0, vErr
	}
	if override > 0 {
		if err := s.ensureEmployee(ctx, employeeID); err != nil {
			return 0, err
		}
		return override, nil
	}

	if s.directory == nil {
		vErr := &ValidationError{}
		vErr.add("weekly_target_minutes", "weekly target is required")
		return 0, vErr
	}
	employee, err := s.directory.GetEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, storeError("resolving employee", err)
	}
	if employee.WeeklyTargetMinutes <= 0 {
		vErr := &ValidationError{}
		vErr.add("weekly_target_minutes", "no weekly target configured for employee")
		return 0, vErr
	}
	return employee.WeeklyTargetMinutes, nil
}

func (s *ReportService) ensureEmployee(ctx context.Context, employeeID string) error {
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

// snapshot reads all sessions intersecting the window once; aggregation then
// computes on the returned slice without touching the store again.
func (s *ReportService) snapshot(ctx context.Context, employeeID string, window timeclock.Window) ([]persistence.WorkSession, error) {
	sessions, err := s.sessions.ListSessionsOverlapping(ctx, employeeID, persistence.SessionFilter{
		From: window.Start,
		To:   window.End,
	})
	if err != nil {
		// Aggregation failures must surface as unavailable, never as a
		// legitimately empty total.
		serviceLogger(ctx, s.logger, "ReportService", "snapshot", "employee_id", employeeID).
			ErrorContext(ctx, "session listing failed", "error", err)
		return nil, storeError("listing sessions", err)
	}
	return sessions, nil
}

// windowTotal sums each session's portion inside the window, treating an open
// session as running until ref. Overlaps accumulate as durations and truncate
// to minutes once, so a minute-aligned session splits exactly across a
// boundary.
func windowTotal(window timeclock.Window, sessions []persistence.WorkSession, ref time.Time) int {
	var total time.Duration
	for _, session := range sessions {
		end := ref
		if session.EndedAt != nil {
			end = *session.EndedAt
		}
		total += window.Overlap(session.StartedAt, end)
	}
	return timeclock.MinutesOf(total)
}

func union(a, b timeclock.Window) timeclock.Window {
	w := a
	if b.Start.Before(w.Start) {
		w.Start = b.Start
	}
	if b.End.After(w.End) {
		w.End = b.End
	}
	return w
}
