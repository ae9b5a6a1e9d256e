// Package timemath implements signed HH:MM duration arithmetic.
//
// Durations are carried as strings of the form [-]HH:MM at the edges (stored
// entries, preferences, CLI output) and as a count of minutes internally.
// The string "--:--" marks an unset value and is never valid input to
// arithmetic.
package timemath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Invalid is the sentinel for an unset or unknown duration.
const Invalid = "--:--"

// Zero is the formatted zero duration.
const Zero = "00:00"

// ErrInvalidDuration is returned when a string cannot be read as [-]H:M.
var ErrInvalidDuration = errors.New("invalid duration")

var (
	// validRe requires two digits before the colon, so "--:--" never matches
	// it and a negative value can never be mistaken for the sentinel.
	validRe = regexp.MustCompile(`^-?([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

	// parseRe is looser than validRe: hours and minutes may have any number of
	// digits, so accumulated balances such as "-124:30" or "00:60" parse.
	parseRe = regexp.MustCompile(`^(-?)([0-9]+):([0-9]+)$`)
)

// Duration is a signed number of minutes.
type Duration int

// String formats d as [-]HH:MM.
func (d Duration) String() string {
	return Format(int(d))
}

// Format renders totalMinutes as [-]HH:MM. Hours and minutes are zero-padded
// to two digits; hours may grow beyond two digits.
func Format(totalMinutes int) string {
	sign := ""
	if totalMinutes < 0 {
		sign = "-"
		totalMinutes = -totalMinutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, totalMinutes/60, totalMinutes%60)
}

// ParseToMinutes is the inverse of Format. The sentinel and any string that
// is not [-]digits:digits yield ErrInvalidDuration.
func ParseToMinutes(s string) (int, error) {
	m := parseRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	hours, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	minutes, err := strconv.Atoi(m[3])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	total := hours*60 + minutes
	if m[1] == "-" {
		total = -total
	}
	return total, nil
}

// Parse reads s as a Duration.
func Parse(s string) (Duration, error) {
	m, err := ParseToMinutes(s)
	return Duration(m), err
}

// Subtract returns b - a. The argument order reads as "a subtracted from b":
// Subtract(quota, worked) is the signed balance of a day.
func Subtract(a, b string) (string, error) {
	am, err := ParseToMinutes(a)
	if err != nil {
		return Invalid, err
	}
	bm, err := ParseToMinutes(b)
	if err != nil {
		return Invalid, err
	}
	return Format(bm - am), nil
}

// Sum returns a + b.
func Sum(a, b string) (string, error) {
	am, err := ParseToMinutes(a)
	if err != nil {
		return Invalid, err
	}
	bm, err := ParseToMinutes(b)
	if err != nil {
		return Invalid, err
	}
	return Format(am + bm), nil
}

// Multiply returns a scaled by n.
func Multiply(a string, n int) (string, error) {
	am, err := ParseToMinutes(a)
	if err != nil {
		return Invalid, err
	}
	return Format(am * n), nil
}

// Validate reports whether candidate is a well-formed clock value
// ([-]HH:MM with HH in 00..23) or the "--:--" sentinel.
func Validate(candidate string) bool {
	return candidate == Invalid || validRe.MatchString(candidate)
}

// IsNegative reports whether s holds a negative duration. The sentinel is
// not negative.
func IsNegative(s string) bool {
	return s != Invalid && len(s) > 0 && s[0] == '-'
}
