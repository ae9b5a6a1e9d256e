// Package daykey encodes calendar dates as store keys.
//
// The two stores address days differently and the difference is easy to get
// wrong:
//
//	entry store:  "<year>-<month 0..11>-<day>"       e.g. 2020-6-1 is 1 July 2020
//	waiver store: "<year>-<month 01..12>-<day 01..>" e.g. 2020-07-01
//
// Entry keys may carry a field suffix ("2020-6-1-day-total"); only the first
// three dash-separated parts identify the date.
package daykey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedKey is returned when a key does not start with a date.
var ErrMalformedKey = errors.New("malformed day key")

// Entry returns the entry-store key of t's calendar date.
func Entry(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month())-1, t.Day())
}

// Waiver returns the waiver-store key of t's calendar date.
func Waiver(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseEntry returns the civil date (midnight UTC) an entry key refers to.
func ParseEntry(key string) (time.Time, error) {
	y, m, d, err := split(key)
	if err != nil {
		return time.Time{}, err
	}
	return date(key, y, m+1, d)
}

// ParseWaiver returns the civil date (midnight UTC) a waiver key refers to.
func ParseWaiver(key string) (time.Time, error) {
	y, m, d, err := split(key)
	if err != nil {
		return time.Time{}, err
	}
	return date(key, y, m, d)
}

// WaiverFromEntry converts an entry key to the waiver key of the same day.
func WaiverFromEntry(key string) (string, error) {
	t, err := ParseEntry(key)
	if err != nil {
		return "", err
	}
	return Waiver(t), nil
}

func split(key string) (int, int, int, error) {
	parts := strings.SplitN(key, "-", 4)
	if len(parts) < 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	var nums [3]int
	for i := range nums {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedKey, key)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

// date builds a civil date and rejects components that time.Date would
// silently normalise (month 13, 31 February).
func date(key string, year, month, day int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	return t, nil
}
