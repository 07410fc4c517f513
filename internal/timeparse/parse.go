// Package timeparse turns the free-form Portuguese time labels used in the
// schedules ("1h30 da tarde", "10 da noite até ás 1h30") into clock times
// and durations.
//
// Parsing never fails: anything unrecognised resolves to 09:00 lasting two
// hours, so one malformed label cannot stop a whole season from being
// generated.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"

	"aviancal/internal/model"
)

var (
	// Sunrise is the fixed stand-in for "nascer do sol". Only sunset is
	// computed astronomically, and only for the day boundary.
	Sunrise = model.ParsedTime{Hour: 6, Minute: 0}
	// Sunset is what "pôr do sol" means inside a label. It can disagree with
	// sun.Calculator; the two serve different purposes.
	Sunset   = model.ParsedTime{Hour: 18, Minute: 30}
	Midnight = model.ParsedTime{Hour: 0, Minute: 0}
	Fallback = model.ParsedTime{Hour: 9, Minute: 0}
)

var clockPattern = regexp.MustCompile(`(\d{1,2})(?:h(\d{2}))?`)

// Parse reads a single time phrase. Idioms are checked first (sunrise,
// sunset, midnight), then the first "H", "HhMM" number. "tarde" or "noite"
// move a morning hour into the afternoon/evening.
func Parse(text string) model.ParsedTime {
	s := strings.ToLower(strings.TrimSpace(text))

	switch {
	case strings.Contains(s, "nascer"):
		return Sunrise
	case strings.Contains(s, "pôr do sol"):
		return Sunset
	case strings.Contains(s, "meia noite"), strings.Contains(s, "meia-noite"):
		return Midnight
	}

	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return Fallback
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return Fallback
	}

	if hour < 12 && (strings.Contains(s, "tarde") || strings.Contains(s, "noite")) {
		hour += 12
	}

	return model.ParsedTime{Hour: hour, Minute: minute}
}
