package timeparse

import (
	"regexp"
	"strings"

	"aviancal/internal/model"
)

const (
	DefaultDurationHours   = 2
	DefaultDurationMinutes = 0

	minutesPerDay = 24 * 60
)

// connector matches "até" with an optional glue word ("até às", "até ao",
// "até á", ...) or a bare "às"/"ás"/"as" between two times. Longer glue
// words come first so "às" is not read as "à" + "s".
var connector = regexp.MustCompile(`(?:^|\s)até(?:\s+(?:às|ás|as|ao|à|á|a))?(?:\s+|$)|\s(?:às|ás|as)\s`)

// ParseRange reads a slot such as "12h até as 2h da tarde". The text is
// split at the first connector; both halves must be non-empty or the whole
// text is read as a single start time with the default two-hour duration.
func ParseRange(text string) model.TimeRange {
	s := strings.ToLower(strings.TrimSpace(text))

	if startText, endText, ok := split(s); ok {
		start := Parse(startText)
		end := Parse(endText)

		total := (end.Hour*60 + end.Minute) - (start.Hour*60 + start.Minute)
		total = ((total % minutesPerDay) + minutesPerDay) % minutesPerDay

		return model.TimeRange{
			Start:           start,
			End:             &end,
			DurationHours:   total / 60,
			DurationMinutes: total % 60,
		}
	}

	return model.TimeRange{
		Start:           Parse(s),
		DurationHours:   DefaultDurationHours,
		DurationMinutes: DefaultDurationMinutes,
	}
}

func split(s string) (string, string, bool) {
	loc := connector.FindStringIndex(s)
	if loc == nil {
		return "", "", false
	}
	before := strings.TrimSpace(s[:loc[0]])
	after := strings.TrimSpace(s[loc[1]:])
	if before == "" || after == "" {
		return "", "", false
	}
	return before, after, true
}
