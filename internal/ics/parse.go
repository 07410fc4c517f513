package ics

import (
	"errors"
	"strings"

	ical "github.com/arran4/golang-ical"

	appLog "aviancal/internal/log"
	"aviancal/internal/model"
)

// ParseFeed reads a serialized calendar back into events. It is used to
// check generated feeds and by the events command when given a file.
//
// VEVENTs that cannot be read are logged and skipped; only a document that
// is not iCalendar at all is an error.
func ParseFeed(body string) ([]model.CalendarEvent, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("ics: empty calendar body")
	}

	cal, err := ical.ParseCalendar(strings.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	events := make([]model.CalendarEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parse completed", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (model.CalendarEvent, error) {
	var out model.CalendarEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = unescapeText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = unescapeText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = unescapeText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil && p.Value != "" {
		for _, c := range strings.Split(p.Value, ",") {
			out.Categories = append(out.Categories, unescapeText(strings.TrimSpace(c)))
		}
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, err
	}
	out.Start = start
	out.End = end

	return out, nil
}

// unescapeText reverses RFC 5545 TEXT escaping for display.
func unescapeText(s string) string {
	r := strings.NewReplacer(`\,`, ",", `\;`, ";", `\n`, "\n", `\N`, "\n", `\\`, `\`)
	return r.Replace(s)
}
