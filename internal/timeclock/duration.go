// Package timeclock provides the pure time arithmetic behind work-session
// tracking: elapsed-minute calculation and day/week/month aggregation windows.
//
// Everything in this package is deterministic and free of side effects; the
// reference instant is always an explicit argument so callers stay testable
// without real wall-clock dependence.
package timeclock

import "time"

// Elapsed returns the duration between start and end, clamped to zero when the
// clock moved backwards. It never returns a negative value.
func Elapsed(start, end time.Time) time.Duration {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

// ElapsedMinutes returns the whole minutes between start and end, truncated
// rather than rounded so live readings and aggregates stay consistent.
func ElapsedMinutes(start, end time.Time) int {
	return MinutesOf(Elapsed(start, end))
}

// MinutesOf truncates a duration to whole minutes. Negative durations yield
// zero.
func MinutesOf(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
