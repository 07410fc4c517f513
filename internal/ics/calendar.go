package ics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"aviancal/internal/model"
)

const (
	ProductID       = "-//Aviança//Agua de Vibora//PT"
	DefaultTimezone = "Europe/Lisbon"
)

var ErrInvalidEvent = errors.New("invalid calendar event")

// FeedOptions controls the calendar envelope.
type FeedOptions struct {
	// Name is shown by calendar apps (X-WR-CALNAME).
	Name     string
	Timezone string
	// Subscription feeds carry METHOD:PUBLISH and a refresh hint and leave
	// out alarms, which subscribed calendars usually ignore.
	Subscription bool
	// Stamp is written as DTSTAMP; zero means now. Fixing it makes the
	// output reproducible.
	Stamp time.Time
}

// Generate maps entries into events and serializes them. It is the single
// entry point for calendar output and reports failure through the error,
// never by panicking.
func Generate(entries []model.ScheduleEntry, m Mapper, opts FeedOptions) (string, error) {
	return BuildCalendar(m.MapAll(entries), opts)
}

// BuildCalendar serializes already resolved events as an iCalendar document.
func BuildCalendar(events []model.CalendarEvent, opts FeedOptions) (string, error) {
	for i, ev := range events {
		if err := validateEvent(ev); err != nil {
			return "", fmt.Errorf("ics: event %d: %w", i, err)
		}
	}

	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	tz := opts.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}

	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(tz)
	if opts.Subscription {
		cal.SetMethod(ical.MethodPublish)
		cal.SetXPublishedTTL("PT12H")
	}

	for _, ev := range events {
		ve := cal.AddEvent(ev.UID)
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		ve.SetSummary(ev.Title)
		ve.SetDescription(ev.Description)
		ve.SetLocation(ev.Location)
		ve.SetStatus(ical.ObjectStatusConfirmed)
		ve.SetTimeTransparency(ical.TransparencyOpaque)
		if len(ev.Categories) > 0 {
			ve.AddProperty(ical.ComponentPropertyCategories, strings.Join(ev.Categories, ","))
		}

		if !opts.Subscription && ev.AlarmOffset > 0 {
			alarm := ve.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(triggerBefore(ev.AlarmOffset))
			alarm.SetProperty(ical.ComponentPropertyDescription, ev.Title)
		}
	}

	return cal.Serialize(), nil
}

func validateEvent(ev model.CalendarEvent) error {
	switch {
	case ev.UID == "":
		return fmt.Errorf("%w: missing UID", ErrInvalidEvent)
	case strings.TrimSpace(ev.Title) == "":
		return fmt.Errorf("%w: missing title", ErrInvalidEvent)
	case ev.Start.IsZero() || ev.End.IsZero():
		return fmt.Errorf("%w: missing start or end", ErrInvalidEvent)
	case ev.End.Before(ev.Start):
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidEvent,
			ev.End.Format(time.RFC3339), ev.Start.Format(time.RFC3339))
	}
	return nil
}

// triggerBefore formats a negative RFC 5545 duration ("-PT2H", "-PT1H30M").
func triggerBefore(d time.Duration) string {
	total := int(d.Round(time.Minute).Minutes())
	h, m := total/60, total%60

	var b strings.Builder
	b.WriteString("-PT")
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 || h == 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	return b.String()
}
