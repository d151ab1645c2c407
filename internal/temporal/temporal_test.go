package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEaster(t *testing.T) {
	cases := []struct {
		year            int
		month, day      int
	}{
		{2023, 4, 9},
		{2024, 3, 31},
		{2025, 4, 20},
		{2026, 4, 5},
	}

	for _, c := range cases {
		got := time.Unix(Easter(c.year), 0).UTC()
		assert.Equal(t, c.month, int(got.Month()), "year %d month", c.year)
		assert.Equal(t, c.day, got.Day(), "year %d day", c.year)
	}
}

func TestParseRelative(t *testing.T) {
	now := Date{Epoch: mustUTC(2026, 7, 31, 12, 0, 0), UTC: true}

	cases := []struct {
		title string
		token string
		day   int
		month time.Month
		year  int
	}{
		{"today", "today", 31, time.July, 2026},
		{"tomorrow", "tomorrow", 1, time.August, 2026},
		{"yesterday", "yesterday", 30, time.July, 2026},
		{"eom", "eom", 31, time.July, 2026},
		{"som", "som", 1, time.July, 2026},
		{"soy", "soy", 1, time.January, 2026},
		{"eoy", "eoy", 31, time.December, 2026},
		{"easter exact", "easter", 5, time.April, 2026},
	}

	for _, c := range cases {
		t.Run(c.title, func(t *testing.T) {
			d, ok, err := parseRelative(c.token, now, DefaultConfig())
			require.True(t, ok)
			require.NoError(t, err)
			got := d.Time()
			assert.Equal(t, c.day, got.Day())
			assert.Equal(t, c.month, got.Month())
			assert.Equal(t, c.year, got.Year())
		})
	}
}

func TestParseOrdinalDay(t *testing.T) {
	now := Date{Epoch: mustUTC(2026, 7, 31, 0, 0, 0), UTC: true}

	d, ok, err := parseOrdinalDay("21st", now)
	require.True(t, ok)
	require.NoError(t, err)
	got := d.Time()
	assert.Equal(t, 21, got.Day())
	assert.Equal(t, time.August, got.Month())
}

func TestDurationParse(t *testing.T) {
	cases := []struct {
		title string
		input string
		want  int64
	}{
		{"iso days and hours", "P1DT2H", Day + 2*Hour},
		{"epoch seconds", "3600", 3600},
		{"colloquial days", "2d", 2 * Day},
		{"colloquial prefix", "3min", 3 * Minute},
		{"fixed word weekly", "weekly", Week},
		{"fixed word fortnight", "fortnight", 2 * Week},
		{"fractional hours", "1.5h", int64(1.5 * float64(Hour))},
	}

	for _, c := range cases {
		t.Run(c.title, func(t *testing.T) {
			d, err := ParseDuration(c.input)
			require.NoError(t, err)
			assert.Equal(t, c.want, d.Seconds())
		})
	}
}

func TestDurationStringISOForm(t *testing.T) {
	d := Duration(Day*2 + Hour*3)
	assert.Equal(t, "P2DT3H", d.String())
}

func mustUTC(y int, m time.Month, d, h, n, s int) int64 {
	return time.Date(y, m, d, h, n, s, 0, time.UTC).Unix()
}
