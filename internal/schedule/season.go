package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Season is a fixed month/day window applied to any year, inclusive on
// both ends.
type Season struct {
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int
}

// ParseMonthDay parses "MM-DD" (e.g. "06-25").
func ParseMonthDay(s string) (time.Month, int, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("season: %q is not MM-DD", s)
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("season: bad month in %q", s)
	}
	d, err := strconv.Atoi(parts[1])
	// Checked against a leap year so 02-29 is accepted.
	if err != nil || d < 1 || d > daysIn(time.Month(m), 2000) {
		return 0, 0, fmt.Errorf("season: bad day in %q", s)
	}
	return time.Month(m), d, nil
}

// Bounds returns local midnight of the first and last day for year.
func (s Season) Bounds(year int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, s.StartMonth, s.StartDay, 0, 0, 0, 0, loc)
	end := time.Date(year, s.EndMonth, s.EndDay, 0, 0, 0, 0, loc)
	return start, end
}

// Days lists every day of the season in year, as local midnights.
func (s Season) Days(year int, loc *time.Location) ([]time.Time, error) {
	start, end := s.Bounds(year, loc)
	if end.Before(start) {
		return nil, fmt.Errorf("season: end %s is before start %s", end.Format("01-02"), start.Format("01-02"))
	}
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
		Until:   end,
	})
	if err != nil {
		return nil, fmt.Errorf("season: daily rule: %w", err)
	}
	return r.All(), nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
