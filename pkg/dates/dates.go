// Package dates holds the whole-day arithmetic shared by status
// classification, termination, and reactivation. All helpers truncate to UTC
// dates first so wall-clock components never leak into day counts.
package dates

import "time"

// DateOnly truncates t to its UTC date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole days from a to b. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
