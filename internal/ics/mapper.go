package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aviancal/internal/model"
	"aviancal/internal/sun"
	"aviancal/internal/timeparse"
)

const (
	DefaultAlarmOffset = 2 * time.Hour
	DefaultCategory    = "Água de Víbora"

	slotSeparator = "/"
)

// uidNamespace seeds the name-based event UIDs so regenerating a season
// yields the same identifiers and subscribed calendars update in place.
var uidNamespace = uuid.MustParse("6f1c2a0e-3d7b-5c9a-9e41-2b8f7d6a4c10")

// Mapper turns schedule entries into timed calendar events.
type Mapper struct {
	// ScheduleID namespaces event UIDs (one plan per feed).
	ScheduleID string
	Sun        sun.Calculator
	// Location is the zone event wall-clock times are expressed in.
	Location    *time.Location
	AlarmOffset time.Duration
	Category    string
	UIDDomain   string
}

// ToEvents maps one entry. An empty schedule yields no events; a label with
// several "/"-separated slots yields one event per slot, in order.
func (m Mapper) ToEvents(entry model.ScheduleEntry) []model.CalendarEvent {
	if strings.TrimSpace(entry.Schedule) == "" {
		return nil
	}

	var events []model.CalendarEvent
	for i, slot := range strings.Split(entry.Schedule, slotSeparator) {
		if strings.TrimSpace(slot) == "" {
			continue
		}
		events = append(events, m.slotEvent(entry, slot, i))
	}
	return events
}

// MapAll maps a whole season, preserving entry order.
func (m Mapper) MapAll(entries []model.ScheduleEntry) []model.CalendarEvent {
	var events []model.CalendarEvent
	for _, e := range entries {
		events = append(events, m.ToEvents(e)...)
	}
	return events
}

// EventDate applies the day-boundary rule: a slot starting at or after
// sunset belongs to the previous calendar day, the traditional day having
// begun at dusk.
func (m Mapper) EventDate(day time.Time, start model.ParsedTime) time.Time {
	if start.Decimal() >= m.Sun.SunsetHour(day) {
		return day.AddDate(0, 0, -1)
	}
	return day
}

func (m Mapper) slotEvent(entry model.ScheduleEntry, slot string, index int) model.CalendarEvent {
	loc := m.location()
	tr := timeparse.ParseRange(slot)

	day := entry.Date.In(loc)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	date := m.EventDate(day, tr.Start)

	start := time.Date(date.Year(), date.Month(), date.Day(), tr.Start.Hour, tr.Start.Minute, 0, 0, loc)
	end := start.Add(tr.Duration())

	alarm := m.AlarmOffset
	if alarm <= 0 {
		alarm = DefaultAlarmOffset
	}
	category := m.Category
	if category == "" {
		category = DefaultCategory
	}

	return model.CalendarEvent{
		UID:         m.uid(day, entry.Location, index),
		Start:       start,
		End:         end,
		Title:       "Água do casal: " + entry.Location,
		Description: "Horário: " + entry.Schedule,
		Location:    entry.Location,
		Categories:  []string{category, entry.Location},
		AlarmOffset: alarm,
	}
}

func (m Mapper) uid(day time.Time, location string, index int) string {
	name := fmt.Sprintf("%s|%s|%s|%d", m.ScheduleID, day.Format("2006-01-02"), location, index)
	id := uuid.NewSHA1(uidNamespace, []byte(name)).String()
	if m.UIDDomain != "" {
		return id + "@" + m.UIDDomain
	}
	return id
}

func (m Mapper) location() *time.Location {
	if m.Location != nil {
		return m.Location
	}
	if m.Sun.Location != nil {
		return m.Sun.Location
	}
	return time.UTC
}
