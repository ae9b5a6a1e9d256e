package balance

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Tiliavir/trivial-time-balance/internal/schedule"
	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
	"github.com/Tiliavir/trivial-time-balance/internal/timemath"
)

// DayReport describes one day of a week report.
type DayReport struct {
	Date    time.Time
	WorkDay bool
	Source  Source
	Total   timemath.Duration
	// Balance is Total minus the quota on working days and zero otherwise.
	Balance timemath.Duration
	// Overall is the overall balance including this day.
	Overall string
}

// Week returns one DayReport per day of the ISO week containing day,
// Monday first. Days are evaluated concurrently.
func (c *Calculator) Week(ctx context.Context, day time.Time) ([]DayReport, error) {
	quota, err := timemath.Parse(c.prefs.HoursPerDay)
	if err != nil {
		return nil, err
	}
	monday, _ := timecalc.WeekRange(timecalc.Civil(day))

	reports := make([]DayReport, 7)
	g, ctx := errgroup.WithContext(ctx)
	for i := range reports {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d := monday.AddDate(0, 0, i)
			total, src, err := c.DayTotal(d)
			if err != nil {
				return err
			}
			overall, err := c.UntilDay(timecalc.Midnight(d))
			if err != nil {
				return err
			}
			r := DayReport{
				Date:    d,
				WorkDay: schedule.IsWorkDate(d, &c.prefs),
				Source:  src,
				Total:   total,
				Overall: overall,
			}
			if r.WorkDay {
				r.Balance = total - quota
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Expected returns the quota summed over the working days in [from, to].
func (c *Calculator) Expected(from, to time.Time) (string, error) {
	return timemath.Multiply(c.prefs.HoursPerDay, schedule.CountWorkDays(from, to, &c.prefs))
}
