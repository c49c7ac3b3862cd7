package timeclock

import "time"

// WindowKind identifies the aggregation range preset.
type WindowKind string

const (
	// WindowDay covers the calendar day containing the reference instant.
	WindowDay WindowKind = "day"
	// WindowWeek covers the week containing the reference instant, starting
	// on the configured start-of-week day.
	WindowWeek WindowKind = "week"
	// WindowMonth covers the calendar month containing the reference instant.
	WindowMonth WindowKind = "month"
)

// Window is a half-open aggregation interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor returns the window of the given kind containing ref. The window is
// computed on ref's wall clock in loc; weekStart only affects WindowWeek.
func WindowFor(kind WindowKind, ref time.Time, weekStart time.Weekday, loc *time.Location) Window {
	switch kind {
	case WindowWeek:
		return WeekWindow(ref, weekStart, loc)
	case WindowMonth:
		return MonthWindow(ref, loc)
	default:
		return DayWindow(ref, loc)
	}
}

// DayWindow returns the calendar day containing ref, in loc.
func DayWindow(ref time.Time, loc *time.Location) Window {
	local := ref.In(location(loc))
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekWindow returns the week containing ref, starting on weekStart, in loc.
func WeekWindow(ref time.Time, weekStart time.Weekday, loc *time.Location) Window {
	day := DayWindow(ref, loc)
	offset := (int(day.Start.Weekday()) - int(weekStart) + 7) % 7
	start := day.Start.AddDate(0, 0, -offset)
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthWindow returns the calendar month containing ref, in loc.
func MonthWindow(ref time.Time, loc *time.Location) Window {
	local := ref.In(location(loc))
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, local.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// Overlap returns how much of the interval [start, end) falls inside the
// window. A session spanning a window boundary contributes only the portion on
// each side, so day totals never double count across midnight.
func (w Window) Overlap(start, end time.Time) time.Duration {
	if start.Before(w.Start) {
		start = w.Start
	}
	if end.After(w.End) {
		end = w.End
	}
	return Elapsed(start, end)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
