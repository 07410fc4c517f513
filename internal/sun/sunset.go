// Package sun computes local sunset times for the day-boundary rule.
package sun

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// Calculator computes sunset for a fixed place.
type Calculator struct {
	Latitude  float64
	Longitude float64
	// Location is the time zone the decimal hour is expressed in.
	Location *time.Location
}

// New returns a Calculator for the given coordinates and zone. A nil zone
// means UTC.
func New(lat, lon float64, loc *time.Location) Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return Calculator{Latitude: lat, Longitude: lon, Location: loc}
}

// Sunset returns the sunset instant for the civil date of d (year, month
// and day are read in c.Location). ok is false when the sun does not set or
// does not rise that day.
func (c Calculator) Sunset(d time.Time) (t time.Time, ok bool) {
	loc := c.location()
	d = d.In(loc)
	rise, set := sunrise.SunriseSunset(c.Latitude, c.Longitude, d.Year(), d.Month(), d.Day())
	if set.IsZero() || rise.IsZero() {
		return time.Time{}, false
	}
	return set.In(loc), true
}

// SunsetHour returns sunset as a local decimal hour in [0, 24]. Days
// without a sunset report 24 in summer (the sun is always up) and 0 in
// winter.
func (c Calculator) SunsetHour(d time.Time) float64 {
	set, ok := c.Sunset(d)
	if !ok {
		if c.polarDay(d) {
			return 24
		}
		return 0
	}

	h := float64(set.Hour()) + float64(set.Minute())/60 + float64(set.Second())/3600
	switch {
	case h < 0:
		return 0
	case h > 24:
		return 24
	}
	return h
}

// polarDay reports whether the missing sunset is midnight sun rather than
// polar night: local summer is May-July in the north, Nov-Jan in the south.
func (c Calculator) polarDay(d time.Time) bool {
	m := d.In(c.location()).Month()
	northSummer := m >= time.April && m <= time.September
	if c.Latitude >= 0 {
		return northSummer
	}
	return !northSummer
}

func (c Calculator) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
