package model

import "time"

// ScheduleEntry is one calendar day of a season: the household whose turn
// it is and, when configured for that year, its time label.
//
// Entries are values; callers copy rather than mutate them.
type ScheduleEntry struct {
	// Date is local midnight of the civil day, in the plan's time zone.
	Date          time.Time `json:"date"`
	DateFormatted string    `json:"dateFormatted"`
	Location      string    `json:"location"`
	// Schedule is the raw label ("10 da noite até ás 1h30/5h30 da tarde"),
	// empty when the location has no fixed time that year.
	Schedule string `json:"schedule"`
	// IsBold is true exactly when Schedule is non-empty.
	IsBold bool `json:"isBold"`
}

// ParsedTime is a wall-clock time of day.
type ParsedTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Decimal returns the time as fractional hours (13:30 -> 13.5).
func (p ParsedTime) Decimal() float64 {
	return float64(p.Hour) + float64(p.Minute)/60
}

// TimeRange is a parsed slot: a start, an optional end and the duration
// between them. Without End the duration is the fixed fallback.
type TimeRange struct {
	Start           ParsedTime  `json:"start"`
	End             *ParsedTime `json:"end,omitempty"`
	DurationHours   int         `json:"durationHours"`
	DurationMinutes int         `json:"durationMinutes"`
}

// Duration returns the slot length as a time.Duration.
func (r TimeRange) Duration() time.Duration {
	return time.Duration(r.DurationHours)*time.Hour + time.Duration(r.DurationMinutes)*time.Minute
}

// CalendarEvent is a fully resolved timed event ready for serialization.
type CalendarEvent struct {
	UID         string    `json:"uid"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Categories  []string  `json:"categories"`
	// AlarmOffset is how long before Start the reminder fires.
	AlarmOffset time.Duration `json:"alarmOffset"`
}
