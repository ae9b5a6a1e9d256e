package balance

import (
	"github.com/Tiliavir/trivial-time-balance/internal/model"
	"github.com/Tiliavir/trivial-time-balance/internal/timemath"
)

// EntryTotal returns the worked duration recorded by e. A fixed day-total
// wins over the punch list.
func EntryTotal(e model.DayEntry) (timemath.Duration, error) {
	if e.DayTotal != "" {
		return timemath.Parse(e.DayTotal)
	}
	return FlexibleTotal(e.Values)
}

// FlexibleTotal sums the intervals of a punch list read as begin/end pairs.
// A list that is odd, shorter than one pair, still holds an unset "--:--"
// value or has a pair that does not move forward counts as 00:00: the day has
// not ended yet.
func FlexibleTotal(values []string) (timemath.Duration, error) {
	if len(values) < 2 || len(values)%2 != 0 {
		return 0, nil
	}
	for _, v := range values {
		if v == timemath.Invalid {
			return 0, nil
		}
	}

	var total timemath.Duration
	for i := 0; i < len(values); i += 2 {
		begin, err := timemath.Parse(values[i])
		if err != nil {
			return 0, err
		}
		end, err := timemath.Parse(values[i+1])
		if err != nil {
			return 0, err
		}
		if begin >= end {
			return 0, nil
		}
		total += end - begin
	}
	return total, nil
}
