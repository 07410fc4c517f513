package sun

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lisbon(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Lisbon")
	require.NoError(t, err)
	return loc
}

func TestSunsetHour_NorthernPortugalLateAugust(t *testing.T) {
	c := New(41.2, -8.3, lisbon(t))
	h := c.SunsetHour(time.Date(2025, time.August, 25, 0, 0, 0, 0, c.Location))
	// Roughly 20:15 local (WEST, UTC+1).
	assert.InDelta(t, 20.25, h, 0.5)
}

func TestSunsetHour_SummerLaterThanAutumn(t *testing.T) {
	c := New(41.2, -8.3, lisbon(t))
	june := c.SunsetHour(time.Date(2025, time.June, 25, 0, 0, 0, 0, c.Location))
	sept := c.SunsetHour(time.Date(2025, time.September, 29, 0, 0, 0, 0, c.Location))
	assert.Greater(t, june, sept)
	assert.InDelta(t, 21.1, june, 0.5)
}

func TestSunsetHour_UsesCivilDateInZone(t *testing.T) {
	c := New(41.2, -8.3, lisbon(t))
	// 23:30 UTC on the 24th is already the 25th in Lisbon summer time.
	utc := time.Date(2025, time.August, 24, 23, 30, 0, 0, time.UTC)
	local := time.Date(2025, time.August, 25, 0, 0, 0, 0, c.Location)
	assert.Equal(t, c.SunsetHour(local), c.SunsetHour(utc))
}

func TestSunsetHour_Polar(t *testing.T) {
	c := New(78.2, 15.6, time.UTC) // Svalbard
	assert.Equal(t, 24.0, c.SunsetHour(time.Date(2025, time.June, 21, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0.0, c.SunsetHour(time.Date(2025, time.December, 21, 0, 0, 0, 0, time.UTC)))
}

func TestNew_NilLocationIsUTC(t *testing.T) {
	c := New(0, 0, nil)
	assert.Equal(t, time.UTC, c.Location)
}
