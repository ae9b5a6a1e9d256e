// Package schedule decides which calendar days are expected working days.
package schedule

import (
	"time"

	"github.com/Tiliavir/trivial-time-balance/internal/config"
)

var defaults = config.DefaultPreferences()

// IsWorkDay reports whether the given date is a working day under prefs.
// A nil prefs uses the built-in defaults (Monday to Friday). month is one-based
// as in time.Month; out-of-range days normalise the way time.Date does.
func IsWorkDay(year int, month time.Month, day int, prefs *config.Preferences) bool {
	if prefs == nil {
		prefs = &defaults
	}
	wd := time.Date(year, month, day, 12, 0, 0, 0, time.UTC).Weekday()
	return prefs.WorksOn(wd)
}

// IsWorkDate is IsWorkDay for the calendar date of t.
func IsWorkDate(t time.Time, prefs *config.Preferences) bool {
	y, m, d := t.Date()
	return IsWorkDay(y, m, d, prefs)
}

// CountWorkDays returns the number of working days in [from, to], both
// calendar dates inclusive.
func CountWorkDays(from, to time.Time, prefs *config.Preferences) int {
	n := 0
	for d := civil(from); !d.After(civil(to)); d = d.AddDate(0, 0, 1) {
		if IsWorkDate(d, prefs) {
			n++
		}
	}
	return n
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
