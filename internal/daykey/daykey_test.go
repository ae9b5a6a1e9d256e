package daykey_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-time-balance/internal/daykey"
)

func TestEncodings(t *testing.T) {
	tests := []struct {
		date   time.Time
		entry  string
		waiver string
	}{
		{time.Date(2020, time.July, 1, 0, 0, 0, 0, time.UTC), "2020-6-1", "2020-07-01"},
		{time.Date(2020, time.January, 9, 15, 0, 0, 0, time.UTC), "2020-0-9", "2020-01-09"},
		{time.Date(2019, time.December, 31, 0, 0, 0, 0, time.UTC), "2019-11-31", "2019-12-31"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.entry, daykey.Entry(tt.date))
		assert.Equal(t, tt.waiver, daykey.Waiver(tt.date))

		fromEntry, err := daykey.ParseEntry(tt.entry)
		require.NoError(t, err)
		fromWaiver, err := daykey.ParseWaiver(tt.waiver)
		require.NoError(t, err)
		assert.True(t, fromEntry.Equal(fromWaiver), "%s and %s must address the same day", tt.entry, tt.waiver)
	}
}

func TestParseEntryWithField(t *testing.T) {
	d := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	parsed, err := daykey.ParseEntry("2020-2-1-day-begin")
	require.NoError(t, err)
	assert.Equal(t, d, parsed)
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, key := range []string{"", "2020", "2020-6", "a-b-c", "2020-12-1", "2020-1-30"} {
		_, err := daykey.ParseEntry(key)
		assert.ErrorIs(t, err, daykey.ErrMalformedKey, "ParseEntry(%q)", key)
	}
	for _, key := range []string{"2020-00-10", "2020-02-30", "x-07-01"} {
		_, err := daykey.ParseWaiver(key)
		assert.ErrorIs(t, err, daykey.ErrMalformedKey, "ParseWaiver(%q)", key)
	}
}

func TestWaiverFromEntry(t *testing.T) {
	got, err := daykey.WaiverFromEntry("2020-6-3")
	require.NoError(t, err)
	assert.Equal(t, "2020-07-03", got)
}
