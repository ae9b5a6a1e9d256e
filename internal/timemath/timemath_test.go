package timemath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-time-balance/internal/timemath"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{1, "00:01"},
		{-1, "-00:01"},
		{59, "00:59"},
		{-59, "-00:59"},
		{60, "01:00"},
		{-60, "-01:00"},
		{61, "01:01"},
		{-61, "-01:01"},
		{1440, "24:00"},
		{-7470, "-124:30"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timemath.Format(tt.minutes), "Format(%d)", tt.minutes)
	}
}

func TestParseToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"-00:00", 0},
		{"01:01", 61},
		{"-01:01", -61},
		{"00:01", 1},
		{"-00:01", -1},
		{"00:59", 59},
		{"-00:59", -59},
		{"01:00", 60},
		{"-01:00", -60},
		{"1:00", 60},
		{"00:60", 60},
		{"124:30", 7470},
	}
	for _, tt := range tests {
		got, err := timemath.ParseToMinutes(tt.in)
		require.NoError(t, err, "ParseToMinutes(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseToMinutes(%q)", tt.in)
	}
}

func TestParseToMinutesRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", timemath.Invalid, "8", "08:", ":30", "8h", "08:00:00", "--08:00", "ab:cd", " 08:00"} {
		_, err := timemath.ParseToMinutes(in)
		assert.ErrorIs(t, err, timemath.ErrInvalidDuration, "ParseToMinutes(%q)", in)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for m := -3000; m <= 3000; m++ {
		d := timemath.Format(m)
		got, err := timemath.ParseToMinutes(d)
		require.NoError(t, err)
		require.Equal(t, m, got, "round trip of %q", d)
		require.Equal(t, d, timemath.Format(got))
	}
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"1:00", "1:00", "00:00"},
		{"00:00", "00:00", "00:00"},
		{"00:01", "01:00", "00:59"},
		{"13:00", "12:00", "-01:00"},
		{"48:00", "24:00", "-24:00"},
		{"00:01", "12:00", "11:59"},
		{"12:00", "13:00", "01:00"},
		{"13:00", "00:00", "-13:00"},
		{"08:00", "09:30", "01:30"},
		{"08:00", "06:15", "-01:45"},
	}
	for _, tt := range tests {
		got, err := timemath.Subtract(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Subtract(%q, %q)", tt.a, tt.b)
	}
}

func TestSum(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"01:00", "01:00", "02:00"},
		{"00:00", "00:00", "00:00"},
		{"00:00", "00:01", "00:01"},
		{"00:59", "00:01", "01:00"},
		{"12:00", "12:00", "24:00"},
		{"12:00", "-12:00", "00:00"},
		{"-01:45", "01:15", "-00:30"},
	}
	for _, tt := range tests {
		got, err := timemath.Sum(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Sum(%q, %q)", tt.a, tt.b)
	}
}

func TestMultiply(t *testing.T) {
	tests := []struct {
		a    string
		n    int
		want string
	}{
		{"01:00", 10, "10:00"},
		{"-01:00", 10, "-10:00"},
		{"01:00", -10, "-10:00"},
		{"00:60", 1, "01:00"},
		{"-00:60", 1, "-01:00"},
		{"00:60", -1, "-01:00"},
		{"08:00", 5, "40:00"},
	}
	for _, tt := range tests {
		got, err := timemath.Multiply(tt.a, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Multiply(%q, %d)", tt.a, tt.n)
	}
}

func TestArithmeticRejectsSentinel(t *testing.T) {
	_, err := timemath.Sum(timemath.Invalid, "01:00")
	assert.ErrorIs(t, err, timemath.ErrInvalidDuration)
	_, err = timemath.Subtract("01:00", timemath.Invalid)
	assert.ErrorIs(t, err, timemath.ErrInvalidDuration)
	got, err := timemath.Multiply(timemath.Invalid, 2)
	assert.ErrorIs(t, err, timemath.ErrInvalidDuration)
	assert.Equal(t, timemath.Invalid, got)
}

func TestValidate(t *testing.T) {
	valid := []string{"00:00", "00:01", "23:59", "-23:59", "-00:01", "09:30", timemath.Invalid}
	invalid := []string{"", "24:00", "-24:00", "0:00", "00:60", "1:00", "--00:00", "-:--", "--:-", "-", "25:00", "00:0a"}
	for _, s := range valid {
		assert.True(t, timemath.Validate(s), "Validate(%q)", s)
	}
	for _, s := range invalid {
		assert.False(t, timemath.Validate(s), "Validate(%q)", s)
	}
}

func TestIsNegative(t *testing.T) {
	assert.True(t, timemath.IsNegative("-01:00"))
	assert.False(t, timemath.IsNegative("01:00"))
	assert.False(t, timemath.IsNegative(timemath.Invalid))
	assert.False(t, timemath.IsNegative(""))
}

func TestDurationString(t *testing.T) {
	d, err := timemath.Parse("-08:00")
	require.NoError(t, err)
	assert.Equal(t, timemath.Duration(-480), d)
	assert.Equal(t, "-08:00", d.String())
}
