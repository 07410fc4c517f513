package schedule

import (
	"time"

	"aviancal/internal/model"
)

// Build assigns one location per day, cycling through sequence, and pulls
// the next label for that location when it has any.
//
// The per-location pointers live only for the duration of the call, so two
// concurrent builds never observe each other's cursors. An empty labels map
// produces a template: every entry has an empty schedule.
func Build(sequence []string, labels Labels, days []time.Time, format func(time.Time) string) []model.ScheduleEntry {
	pointers := make(map[string]int, len(labels))
	for loc := range labels {
		pointers[loc] = 0
	}

	entries := make([]model.ScheduleEntry, 0, len(days))
	for i, day := range days {
		var location string
		if len(sequence) > 0 {
			location = sequence[i%len(sequence)]
		}

		var label string
		if list := labels[location]; len(list) > 0 {
			label = list[pointers[location]%len(list)]
			pointers[location]++
		}

		formatted := ""
		if format != nil {
			formatted = format(day)
		}

		entries = append(entries, model.ScheduleEntry{
			Date:          day,
			DateFormatted: formatted,
			Location:      location,
			Schedule:      label,
			IsBold:        label != "",
		})
	}
	return entries
}
