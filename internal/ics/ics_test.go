package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aviancal/internal/model"
	"aviancal/internal/sun"
)

func testMapper(t *testing.T) Mapper {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Lisbon")
	require.NoError(t, err)
	return Mapper{
		ScheduleID: "vibora",
		Sun:        sun.New(41.2, -8.3, loc),
		Location:   loc,
		UIDDomain:  "aviancal.test",
	}
}

func entryOn(m Mapper, month time.Month, day int, location, label string) model.ScheduleEntry {
	return model.ScheduleEntry{
		Date:     time.Date(2025, month, day, 0, 0, 0, 0, m.Location),
		Location: location,
		Schedule: label,
		IsBold:   label != "",
	}
}

func TestToEvents_EmptySchedule(t *testing.T) {
	m := testMapper(t)
	assert.Empty(t, m.ToEvents(entryOn(m, time.August, 25, "Crasto", "")))
}

func TestToEvents_NightSlotMovesToPreviousDay(t *testing.T) {
	m := testMapper(t)
	events := m.ToEvents(entryOn(m, time.August, 25, "Passo", "10 da noite até ás 1h30"))
	require.Len(t, events, 1)

	ev := events[0]
	assert.True(t, time.Date(2025, time.August, 24, 22, 0, 0, 0, m.Location).Equal(ev.Start), "start %s", ev.Start)
	assert.True(t, time.Date(2025, time.August, 25, 1, 30, 0, 0, m.Location).Equal(ev.End), "end %s", ev.End)
}

func TestToEvents_DaySlotKeepsDate(t *testing.T) {
	m := testMapper(t)
	events := m.ToEvents(entryOn(m, time.July, 3, "Torre", "12h até as 2h da tarde"))
	require.Len(t, events, 1)
	assert.True(t, time.Date(2025, time.July, 3, 12, 0, 0, 0, m.Location).Equal(events[0].Start))
	assert.True(t, time.Date(2025, time.July, 3, 14, 0, 0, 0, m.Location).Equal(events[0].End))
}

func TestToEvents_SingleTimeGetsDefaultDuration(t *testing.T) {
	m := testMapper(t)
	events := m.ToEvents(entryOn(m, time.July, 3, "Torre", "1h30 da tarde"))
	require.Len(t, events, 1)
	assert.Equal(t, 2*time.Hour, events[0].End.Sub(events[0].Start))
}

func TestToEvents_MultiSlotInOrder(t *testing.T) {
	m := testMapper(t)
	entry := entryOn(m, time.July, 10, "Passo", "9h30 até 10h30/13h30 até 17h")
	events := m.ToEvents(entry)
	require.Len(t, events, 2)

	assert.Equal(t, 9, events[0].Start.Hour())
	assert.Equal(t, 30, events[0].Start.Minute())
	assert.Equal(t, 13, events[1].Start.Hour())
	assert.Equal(t, 17, events[1].End.Hour())
	assert.NotEqual(t, events[0].UID, events[1].UID)

	for _, ev := range events {
		assert.Equal(t, "Água do casal: Passo", ev.Title)
		assert.Equal(t, "Horário: 9h30 até 10h30/13h30 até 17h", ev.Description)
		assert.Equal(t, "Passo", ev.Location)
		assert.Equal(t, []string{DefaultCategory, "Passo"}, ev.Categories)
		assert.Equal(t, DefaultAlarmOffset, ev.AlarmOffset)
		assert.True(t, strings.HasSuffix(ev.UID, "@aviancal.test"))
	}
}

func TestToEvents_MixedNightAndAfternoonSlots(t *testing.T) {
	m := testMapper(t)
	events := m.ToEvents(entryOn(m, time.August, 25, "Passo", "10 da noite até ás 1h30/5h30 da tarde"))
	require.Len(t, events, 2)
	assert.Equal(t, 24, events[0].Start.Day())
	assert.Equal(t, 25, events[1].Start.Day())
	assert.Equal(t, 17, events[1].Start.Hour())
}

func TestToEvents_SkipsEmptySlots(t *testing.T) {
	m := testMapper(t)
	events := m.ToEvents(entryOn(m, time.July, 10, "Passo", "9h30 até 10h30/ /"))
	assert.Len(t, events, 1)
}

func TestEventDate_SunsetBoundary(t *testing.T) {
	m := testMapper(t)
	day := time.Date(2025, time.August, 25, 0, 0, 0, 0, m.Location)
	sunset := m.Sun.SunsetHour(day)
	require.InDelta(t, 20.3, sunset, 0.5)

	assert.Equal(t, 24, m.EventDate(day, model.ParsedTime{Hour: 21}).Day())
	assert.Equal(t, 25, m.EventDate(day, model.ParsedTime{Hour: 19}).Day())
	// The "pôr do sol" label idiom (18:30) sits before the real sunset.
	assert.Equal(t, 25, m.EventDate(day, model.ParsedTime{Hour: 18, Minute: 30}).Day())
}

func TestUID_StableAcrossRuns(t *testing.T) {
	m := testMapper(t)
	entry := entryOn(m, time.July, 10, "Passo", "9h30 até 10h30")
	a := m.ToEvents(entry)
	b := m.ToEvents(entry)
	assert.Equal(t, a[0].UID, b[0].UID)

	other := m
	other.ScheduleID = "coblinho"
	assert.NotEqual(t, a[0].UID, other.ToEvents(entry)[0].UID)
}

func TestGenerate_SerializesAndParsesBack(t *testing.T) {
	m := testMapper(t)
	entries := []model.ScheduleEntry{
		entryOn(m, time.August, 25, "Passo", "10 da noite até ás 1h30/5h30 da tarde"),
		entryOn(m, time.August, 26, "Ramada", ""),
		entryOn(m, time.August, 27, "Torre", "12h"),
	}

	body, err := Generate(entries, m, FeedOptions{
		Name:  "Água de Víbora 2025",
		Stamp: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "PRODID:"+ProductID)
	assert.Equal(t, 3, strings.Count(body, "BEGIN:VEVENT"))
	assert.Equal(t, 3, strings.Count(body, "BEGIN:VALARM"))
	assert.Contains(t, body, "TRIGGER:-PT2H")
	assert.Contains(t, body, "CATEGORIES:")

	parsed, err := ParseFeed(body)
	require.NoError(t, err)
	require.Len(t, parsed, 3)

	want := m.MapAll(entries)
	for i := range want {
		assert.Equal(t, want[i].UID, parsed[i].UID)
		assert.True(t, want[i].Start.Equal(parsed[i].Start), "start %d", i)
		assert.True(t, want[i].End.Equal(parsed[i].End), "end %d", i)
		assert.Equal(t, want[i].Location, parsed[i].Location)
	}
}

func TestBuildCalendar_SubscriptionHasNoAlarms(t *testing.T) {
	m := testMapper(t)
	events := m.ToEvents(entryOn(m, time.July, 3, "Torre", "12h"))

	body, err := BuildCalendar(events, FeedOptions{Subscription: true})
	require.NoError(t, err)
	assert.Contains(t, body, "METHOD:PUBLISH")
	assert.NotContains(t, body, "BEGIN:VALARM")
}

func TestBuildCalendar_RejectsMalformedEvents(t *testing.T) {
	start := time.Date(2025, time.July, 3, 12, 0, 0, 0, time.UTC)
	cases := map[string]model.CalendarEvent{
		"no uid":       {Title: "x", Start: start, End: start.Add(time.Hour)},
		"no title":     {UID: "a", Start: start, End: start.Add(time.Hour)},
		"end first":    {UID: "a", Title: "x", Start: start, End: start.Add(-time.Hour)},
		"missing time": {UID: "a", Title: "x"},
	}
	for name, ev := range cases {
		_, err := BuildCalendar([]model.CalendarEvent{ev}, FeedOptions{})
		assert.ErrorIs(t, err, ErrInvalidEvent, name)
	}
}

func TestBuildCalendar_Empty(t *testing.T) {
	body, err := BuildCalendar(nil, FeedOptions{})
	require.NoError(t, err)
	assert.Contains(t, body, "END:VCALENDAR")
	assert.NotContains(t, body, "BEGIN:VEVENT")
}

func TestTriggerBefore(t *testing.T) {
	assert.Equal(t, "-PT2H", triggerBefore(2*time.Hour))
	assert.Equal(t, "-PT1H30M", triggerBefore(90*time.Minute))
	assert.Equal(t, "-PT45M", triggerBefore(45*time.Minute))
	assert.Equal(t, "-PT0M", triggerBefore(0))
}

func TestParseFeed_Empty(t *testing.T) {
	_, err := ParseFeed("  ")
	assert.Error(t, err)
}
