package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/timeclock/internal/persistence"
	"github.com/example/timeclock/internal/persistence/memory"
	"github.com/example/timeclock/internal/testfixtures"
)

func newReportService(t *testing.T, clock *testfixtures.Clock) (*ReportService, *memory.Storage) {
	t.Helper()
	storage := memory.NewStorage()
	if err := storage.CreateEmployee(context.Background(), testfixtures.NewEmployee("emp-1")); err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return NewReportService(storage, storage, clock.NowFunc(), time.UTC, time.Monday), storage
}

func seedSession(t *testing.T, storage *memory.Storage, session persistence.WorkSession) {
	t.Helper()
	if _, err := storage.CreateOpenSession(context.Background(), persistence.WorkSession{
		ID:         session.ID,
		EmployeeID: session.EmployeeID,
		StartedAt:  session.StartedAt,
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  session.CreatedAt,
	}); err != nil {
		t.Fatalf("seed session %s: %v", session.ID, err)
	}
	if session.EndedAt != nil {
		if _, err := storage.CloseOpenSession(context.Background(), session.EmployeeID, *session.EndedAt); err != nil {
			t.Fatalf("close session %s: %v", session.ID, err)
		}
	}
}

func TestReportServiceTotals(t *testing.T) {
	t.Parallel()

	// ReferenceTime is Wednesday 2024-03-13 09:00 UTC; the Monday-anchored
	// week runs 2024-03-11 through 2024-03-18.
	ref := testfixtures.ReferenceTime()

	t.Run("open session counts up to the reference", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, storage := newReportService(t, clock)
		seedSession(t, storage, testfixtures.OpenSession("sess-1", "emp-1", ref))

		totals, err := service.Totals(context.Background(), "emp-1", ref.Add(30*time.Minute))
		if err != nil {
			t.Fatalf("Totals returned error: %v", err)
		}
		if totals.TodayMinutes != 30 {
			t.Errorf("TodayMinutes = %d, want 30", totals.TodayMinutes)
		}
		if totals.WeekMinutes != 30 || totals.MonthMinutes != 30 {
			t.Errorf("Week/Month = %d/%d, want 30/30", totals.WeekMinutes, totals.MonthMinutes)
		}
	})

	t.Run("closed session counts its full length", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, storage := newReportService(t, clock)
		seedSession(t, storage, testfixtures.ClosedSession("sess-1", "emp-1", ref, ref.Add(45*time.Minute)))

		totals, err := service.Totals(context.Background(), "emp-1", ref.Add(time.Hour))
		if err != nil {
			t.Fatalf("Totals returned error: %v", err)
		}
		if totals.TodayMinutes != 45 {
			t.Errorf("TodayMinutes = %d, want 45", totals.TodayMinutes)
		}
	})

	t.Run("midnight splits the session across both days", func(t *testing.T) {
		t.Parallel()
		start := time.Date(2024, time.March, 12, 23, 30, 0, 0, time.UTC)
		end := time.Date(2024, time.March, 13, 0, 30, 0, 0, time.UTC)
		clock := testfixtures.NewClock(ref)
		service, storage := newReportService(t, clock)
		seedSession(t, storage, testfixtures.ClosedSession("sess-1", "emp-1", start, end))

		tuesday, err := service.Totals(context.Background(), "emp-1", start)
		if err != nil {
			t.Fatalf("Totals returned error: %v", err)
		}
		wednesday, err := service.Totals(context.Background(), "emp-1", ref)
		if err != nil {
			t.Fatalf("Totals returned error: %v", err)
		}
		if tuesday.TodayMinutes != 30 {
			t.Errorf("Tuesday TodayMinutes = %d, want 30", tuesday.TodayMinutes)
		}
		if wednesday.TodayMinutes != 30 {
			t.Errorf("Wednesday TodayMinutes = %d, want 30", wednesday.TodayMinutes)
		}
		if wednesday.WeekMinutes != 60 {
			t.Errorf("WeekMinutes = %d, want the undivided 60", wednesday.WeekMinutes)
		}
	})

	t.Run("month includes sessions outside the week", func(t *testing.T) {
		t.Parallel()
		early := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
		clock := testfixtures.NewClock(ref)
		service, storage := newReportService(t, clock)
		seedSession(t, storage, testfixtures.ClosedSession("sess-1", "emp-1", early, early.Add(2*time.Hour)))
		seedSession(t, storage, testfixtures.ClosedSession("sess-2", "emp-1", ref, ref.Add(time.Hour)))

		totals, err := service.Totals(context.Background(), "emp-1", ref.Add(2*time.Hour))
		if err != nil {
			t.Fatalf("Totals returned error: %v", err)
		}
		if totals.TodayMinutes != 60 {
			t.Errorf("TodayMinutes = %d, want 60", totals.TodayMinutes)
		}
		if totals.WeekMinutes != 60 {
			t.Errorf("WeekMinutes = %d, want 60", totals.WeekMinutes)
		}
		if totals.MonthMinutes != 180 {
			t.Errorf("MonthMinutes = %d, want 180", totals.MonthMinutes)
		}
	})

	t.Run("zero reference uses the clock", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref.Add(20 * time.Minute))
		service, storage := newReportService(t, clock)
		seedSession(t, storage, testfixtures.OpenSession("sess-1", "emp-1", ref))

		totals, err := service.Totals(context.Background(), "emp-1", time.Time{})
		if err != nil {
			t.Fatalf("Totals returned error: %v", err)
		}
		if totals.TodayMinutes != 20 {
			t.Errorf("TodayMinutes = %d, want 20", totals.TodayMinutes)
		}
	})

	t.Run("unknown employee", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, _ := newReportService(t, clock)

		if _, err := service.Totals(context.Background(), "emp-missing", ref); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Totals error = %v, want ErrNotFound", err)
		}
	})

	t.Run("store unavailable", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, storage := newReportService(t, clock)
		storage.Fail(persistence.ErrUnavailable)

		if _, err := service.Totals(context.Background(), "emp-1", ref); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("Totals error = %v, want ErrUnavailable", err)
		}
	})
}

func TestReportServiceProgress(t *testing.T) {
	t.Parallel()

	ref := testfixtures.ReferenceTime()

	seedWeekdays := func(t *testing.T, storage *memory.Storage, days int, perDay time.Duration) {
		t.Helper()
		monday := time.Date(2024, time.March, 11, 8, 0, 0, 0, time.UTC)
		for i := 0; i < days; i++ {
			start := monday.AddDate(0, 0, i)
			seedSession(t, storage, testfixtures.ClosedSession(sessionID(i), "emp-1", start, start.Add(perDay)))
		}
	}

	t.Run("half way", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, storage := newReportService(t, clock)
		seedWeekdays(t, storage, 2, 10*time.Hour)

		progress, err := service.Progress(context.Background(), "emp-1", 0, ref)
		if err != nil {
			t.Fatalf("Progress returned error: %v", err)
		}
		if progress.WeekMinutes != 1200 {
			t.Errorf("WeekMinutes = %d, want 1200", progress.WeekMinutes)
		}
		if progress.TargetMinutes != 2400 {
			t.Errorf("TargetMinutes = %d, want the configured 2400", progress.TargetMinutes)
		}
		if progress.Percentage != 50 {
			t.Errorf("Percentage = %v, want 50", progress.Percentage)
		}
	})

	t.Run("over target is not capped", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, storage := newReportService(t, clock)
		seedWeekdays(t, storage, 5, 10*time.Hour)

		friday := time.Date(2024, time.March, 15, 20, 0, 0, 0, time.UTC)
		progress, err := service.Progress(context.Background(), "emp-1", 0, friday)
		if err != nil {
			t.Fatalf("Progress returned error: %v", err)
		}
		if progress.WeekMinutes != 3000 {
			t.Errorf("WeekMinutes = %d, want 3000", progress.WeekMinutes)
		}
		if progress.Percentage != 125 {
			t.Errorf("Percentage = %v, want 125", progress.Percentage)
		}
	})

	t.Run("explicit target overrides the configured one", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, storage := newReportService(t, clock)
		seedWeekdays(t, storage, 1, 10*time.Hour)

		progress, err := service.Progress(context.Background(), "emp-1", 1200, ref)
		if err != nil {
			t.Fatalf("Progress returned error: %v", err)
		}
		if progress.TargetMinutes != 1200 {
			t.Errorf("TargetMinutes = %d, want the override 1200", progress.TargetMinutes)
		}
		if progress.Percentage != 50 {
			t.Errorf("Percentage = %v, want 50", progress.Percentage)
		}
	})

	t.Run("negative target is rejected", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, _ := newReportService(t, clock)

		_, err := service.Progress(context.Background(), "emp-1", -1, ref)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Progress error = %v, want a validation error", err)
		}
		if _, ok := vErr.FieldErrors["weekly_target_minutes"]; !ok {
			t.Errorf("FieldErrors = %v, want weekly_target_minutes", vErr.FieldErrors)
		}
	})

	t.Run("missing configured target is rejected", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, storage := newReportService(t, clock)
		if err := storage.CreateEmployee(context.Background(), testfixtures.NewEmployee("emp-2", testfixtures.WithWeeklyTarget(0))); err != nil {
			t.Fatalf("seed employee: %v", err)
		}

		_, err := service.Progress(context.Background(), "emp-2", 0, ref)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Progress error = %v, want a validation error", err)
		}
	})
}

func TestReportServiceProductivity(t *testing.T) {
	t.Parallel()

	ref := testfixtures.ReferenceTime()

	// seedTrailing books one closed session per day for each of the given
	// day offsets relative to the reference day (0 is today, 1 yesterday).
	seedTrailing := func(t *testing.T, storage *memory.Storage, offsets []int, perDay time.Duration) {
		t.Helper()
		for i, offset := range offsets {
			start := time.Date(2024, time.March, 13-offset, 8, 0, 0, 0, time.UTC)
			seedSession(t, storage, testfixtures.ClosedSession(sessionID(i), "emp-1", start, start.Add(perDay)))
		}
	}

	t.Run("full attainment and consistency", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, storage := newReportService(t, clock)
		// 400 minutes per day clears the 2400/7 daily share on all seven days.
		seedTrailing(t, storage, []int{0, 1, 2, 3, 4, 5, 6}, 400*time.Minute)

		result, err := service.Productivity(context.Background(), "emp-1", ref)
		if err != nil {
			t.Fatalf("Productivity returned error: %v", err)
		}
		if result.Score != 100 {
			t.Errorf("Score = %d, want 100", result.Score)
		}
		if result.StreakDays != 7 {
			t.Errorf("StreakDays = %d, want 7", result.StreakDays)
		}
	})

	t.Run("partial attainment", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, storage := newReportService(t, clock)
		// Three qualifying days totalling 1200 minutes: attainment 0.5 and
		// consistency 3/7 give round(100*(0.3+0.1714)) = 47.
		seedTrailing(t, storage, []int{0, 2, 4}, 400*time.Minute)

		result, err := service.Productivity(context.Background(), "emp-1", ref)
		if err != nil {
			t.Fatalf("Productivity returned error: %v", err)
		}
		if result.Score != 47 {
			t.Errorf("Score = %d, want 47", result.Score)
		}
		if result.StreakDays != 1 {
			t.Errorf("StreakDays = %d, want 1", result.StreakDays)
		}
	})

	t.Run("idle week scores zero", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, _ := newReportService(t, clock)

		result, err := service.Productivity(context.Background(), "emp-1", ref)
		if err != nil {
			t.Fatalf("Productivity returned error: %v", err)
		}
		if result.Score != 0 {
			t.Errorf("Score = %d, want 0", result.Score)
		}
		if result.StreakDays != 0 {
			t.Errorf("StreakDays = %d, want 0", result.StreakDays)
		}
	})

	t.Run("today in progress does not break the streak", func(t *testing.T) {
		t.Parallel()
		clock := testfixtures.NewClock(ref)
		service, storage := newReportService(t, clock)
		seedTrailing(t, storage, []int{1, 2}, 400*time.Minute)

		result, err := service.Productivity(context.Background(), "emp-1", ref)
		if err != nil {
			t.Fatalf("Productivity returned error: %v", err)
		}
		if result.StreakDays != 2 {
			t.Errorf("StreakDays = %d, want 2", result.StreakDays)
		}
	})
}

func sessionID(i int) string {
	return "sess-" + string(rune('a'+i))
}
