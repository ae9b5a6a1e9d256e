package balance_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-time-balance/internal/balance"
)

func TestWeek(t *testing.T) {
	calc := newCalc(entries{
		"2020-5-29": dayTotal("08:00"), // mon 29 June
		"2020-5-30": dayTotal("09:00"), // tue
		"2020-6-1":  dayTotal("07:00"), // wed
		"2020-6-4":  dayTotal("03:00"), // sat, not a work day
	}, waivers{
		"2020-07-03": waived("08:00"), // fri
	})

	week, err := calc.Week(context.Background(), july(2))
	require.NoError(t, err)
	require.Len(t, week, 7)

	assert.Equal(t, june(29), week[0].Date)
	assert.Equal(t, july(5), week[6].Date)

	wantBalance := []string{"00:00", "01:00", "-01:00", "-08:00", "00:00", "00:00", "00:00"}
	wantOverall := []string{"00:00", "01:00", "00:00", "-08:00", "-08:00", "-08:00", "-08:00"}
	wantWork := []bool{true, true, true, true, true, false, false}
	for i, r := range week {
		assert.Equal(t, wantBalance[i], r.Balance.String(), "balance of %s", r.Date.Format("Mon"))
		assert.Equal(t, wantOverall[i], r.Overall, "overall after %s", r.Date.Format("Mon"))
		assert.Equal(t, wantWork[i], r.WorkDay, "work day %s", r.Date.Format("Mon"))
	}
	assert.Equal(t, balance.SourceWaiver, week[4].Source)
	assert.Equal(t, balance.SourceEntry, week[5].Source)
	assert.Equal(t, "03:00", week[5].Total.String())
}

func TestWeekCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newCalc(nil, nil).Week(ctx, july(2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpected(t *testing.T) {
	calc := newCalc(nil, nil)
	got, err := calc.Expected(june(29), july(5))
	require.NoError(t, err)
	assert.Equal(t, "40:00", got)
}
