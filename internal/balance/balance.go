// Package balance computes signed HH:MM balances from the entry and waiver
// stores against the configured daily quota.
//
// The overall balance walks every day from the first recorded entry up to,
// but excluding, the target day. Non-working days are skipped before any
// store is consulted, so a waiver on a weekend never counts. On a working
// day a waiver wins over an entry; a day with neither counts as 00:00 worked.
// Nothing is cached: every call recomputes from the stores.
package balance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tiliavir/trivial-time-balance/internal/config"
	"github.com/Tiliavir/trivial-time-balance/internal/daykey"
	"github.com/Tiliavir/trivial-time-balance/internal/model"
	"github.com/Tiliavir/trivial-time-balance/internal/schedule"
	"github.com/Tiliavir/trivial-time-balance/internal/storage"
	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
	"github.com/Tiliavir/trivial-time-balance/internal/timemath"
)

// Source tells where a day's total came from.
type Source int

const (
	SourceNone Source = iota
	SourceEntry
	SourceWaiver
)

func (s Source) String() string {
	switch s {
	case SourceEntry:
		return "entry"
	case SourceWaiver:
		return "waiver"
	default:
		return "none"
	}
}

// Calculator reads the stores and preferences it was built with; it never
// writes to them. It is safe for concurrent use when the stores are.
type Calculator struct {
	entries storage.Reader[model.DayEntry]
	waivers storage.Reader[model.WaivedDay]
	prefs   config.Preferences
	logger  *slog.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Calculator) {
		c.logger = l
	}
}

// New returns a Calculator over the given stores. prefs is copied and used
// as an immutable snapshot.
func New(entries storage.Reader[model.DayEntry], waivers storage.Reader[model.WaivedDay], prefs config.Preferences, opts ...Option) *Calculator {
	c := &Calculator{
		entries: entries,
		waivers: waivers,
		prefs:   prefs,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Preferences returns the snapshot the calculator works with.
func (c *Calculator) Preferences() config.Preferences {
	return c.prefs
}

// FirstInput returns the entry key with the earliest date on or after the
// overall-balance start date, or "" when there is none. Keys are compared by
// the date they encode, not as strings; keys that do not start with a date
// are ignored.
func (c *Calculator) FirstInput() (string, error) {
	start, err := c.prefs.StartDate()
	if err != nil {
		return "", err
	}
	keys, err := c.entries.Keys()
	if err != nil {
		return "", fmt.Errorf("listing entries: %w", err)
	}

	var first string
	var firstDate time.Time
	for _, key := range keys {
		d, err := daykey.ParseEntry(key)
		if err != nil {
			c.logger.Warn("ignoring entry with malformed key", slog.String("key", key))
			continue
		}
		if d.Before(start) {
			continue
		}
		if first == "" || d.Before(firstDate) {
			first, firstDate = key, d
		}
	}
	return first, nil
}

// DayTotal returns the worked or credited duration of date's calendar day and
// where it came from. It does not look at the work schedule.
func (c *Calculator) DayTotal(date time.Time) (timemath.Duration, Source, error) {
	wkey := daykey.Waiver(date)
	waived, ok, err := c.waivers.Get(wkey)
	if err != nil {
		return 0, SourceNone, fmt.Errorf("reading waiver %s: %w", wkey, err)
	}
	if ok {
		hours, err := timemath.Parse(waived.Hours)
		if err != nil {
			return 0, SourceWaiver, fmt.Errorf("waiver %s: %w", wkey, err)
		}
		return hours, SourceWaiver, nil
	}

	ekey := daykey.Entry(date)
	entry, ok, err := c.entries.Get(ekey)
	if err != nil {
		return 0, SourceNone, fmt.Errorf("reading entry %s: %w", ekey, err)
	}
	if !ok {
		return 0, SourceNone, nil
	}
	total, err := EntryTotal(entry)
	if err != nil {
		return 0, SourceEntry, fmt.Errorf("entry %s: %w", ekey, err)
	}
	return total, SourceEntry, nil
}

// BalanceForDay returns the signed balance of a single day against
// hoursPerDay: positive is overtime, negative a shortfall.
func (c *Calculator) BalanceForDay(date time.Time, hoursPerDay string) (string, error) {
	quota, err := timemath.Parse(hoursPerDay)
	if err != nil {
		return timemath.Invalid, fmt.Errorf("hours per day: %w", err)
	}
	total, _, err := c.DayTotal(date)
	if err != nil {
		return timemath.Invalid, err
	}
	return (total - quota).String(), nil
}

// DayBalance is BalanceForDay against the configured quota, except that a day
// off always balances to 00:00, as it does in UntilDay and Week.
func (c *Calculator) DayBalance(date time.Time) (string, error) {
	if !schedule.IsWorkDate(date, &c.prefs) {
		return timemath.Zero, nil
	}
	return c.BalanceForDay(date, c.prefs.HoursPerDay)
}

// UntilDay returns the overall balance from the first recorded entry up to
// and excluding target's calendar day. With no entries, or a target on or
// before the first entry, the balance is 00:00.
func (c *Calculator) UntilDay(target time.Time) (string, error) {
	first, err := c.FirstInput()
	if err != nil {
		return timemath.Invalid, err
	}
	if first == "" {
		return timemath.Zero, nil
	}
	cursor, err := daykey.ParseEntry(first)
	if err != nil {
		return timemath.Invalid, err
	}
	quota, err := timemath.Parse(c.prefs.HoursPerDay)
	if err != nil {
		return timemath.Invalid, fmt.Errorf("hours per day: %w", err)
	}

	limit := timecalc.Civil(target)
	var total timemath.Duration
	days := 0
	for ; cursor.Before(limit); cursor = cursor.AddDate(0, 0, 1) {
		if !schedule.IsWorkDate(cursor, &c.prefs) {
			continue
		}
		worked, _, err := c.DayTotal(cursor)
		if err != nil {
			return timemath.Invalid, err
		}
		total += worked - quota
		days++
	}

	c.logger.Debug("computed overall balance",
		slog.String("first", first),
		slog.String("until", timecalc.DateStr(limit)),
		slog.Int("work_days", days),
		slog.String("balance", total.String()))
	return total.String(), nil
}

// Result is delivered by UntilDayAsync.
type Result struct {
	Balance string
	Err     error
}

// UntilDayAsync runs UntilDay on its own goroutine and delivers exactly one
// Result on the returned channel. Once started the computation runs to
// completion; ctx only prevents it from starting.
func (c *Calculator) UntilDayAsync(ctx context.Context, target time.Time) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		if err := ctx.Err(); err != nil {
			out <- Result{Balance: timemath.Invalid, Err: err}
			return
		}
		b, err := c.UntilDay(target)
		out <- Result{Balance: b, Err: err}
	}()
	return out
}
