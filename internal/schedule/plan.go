package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"

	"aviancal/internal/model"
	"aviancal/internal/rotation"
)

const (
	DefaultDateLocale = "pt_PT"
	DefaultDateFormat = "02 de January"
)

var ErrInvalidLabels = errors.New("invalid schedule labels")

// Plan is everything needed to generate one water's season: who takes
// part, how they rotate, which labels apply and how dates are shown.
type Plan struct {
	ID    string
	Title string
	// FilePrefix names downloaded files.
	FilePrefix    string
	ReferenceYear int
	Groups        []rotation.Group
	Season        Season
	Labels        Table
	// Feed enables calendar (ICS) output for this plan.
	Feed bool

	Location   *time.Location
	DateLocale string
	DateFormat string
}

// Sequence returns the ordered location list for year.
func (p Plan) Sequence(year int) []string {
	return rotation.Sequence(p.Groups, year, p.ReferenceYear)
}

// Locations returns every configured location in base order.
func (p Plan) Locations() []string {
	var out []string
	for _, g := range p.Groups {
		out = append(out, g.Locations...)
	}
	return out
}

// Generate builds the season for year from the plan's own label table.
// With template set the labels are left out entirely.
func (p Plan) Generate(year int, template bool) ([]model.ScheduleEntry, error) {
	labels := p.Labels.Lookup(year)
	if template {
		labels = Labels{}
	}
	return p.generate(year, labels)
}

// GenerateCustom builds the season for year with caller-supplied labels in
// place of the configured table.
func (p Plan) GenerateCustom(year int, labels Labels) ([]model.ScheduleEntry, error) {
	if err := ValidateLabels(labels); err != nil {
		return nil, err
	}
	return p.generate(year, labels)
}

func (p Plan) generate(year int, labels Labels) ([]model.ScheduleEntry, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	days, err := p.Season.Days(year, p.location())
	if err != nil {
		return nil, err
	}
	return Build(p.Sequence(year), labels, days, p.FormatDate), nil
}

// FormatDate renders a date in the plan's locale ("25 de junho").
func (p Plan) FormatDate(t time.Time) string {
	layout := p.DateFormat
	if layout == "" {
		layout = DefaultDateFormat
	}
	locale := p.DateLocale
	if locale == "" {
		locale = DefaultDateLocale
	}
	return monday.Format(t, layout, monday.Locale(locale))
}

func (p Plan) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// ValidateLabels checks that every list is non-empty and every label has
// visible text.
func ValidateLabels(labels Labels) error {
	for loc, list := range labels {
		if strings.TrimSpace(loc) == "" {
			return fmt.Errorf("%w: empty location name", ErrInvalidLabels)
		}
		if len(list) == 0 {
			return fmt.Errorf("%w: %s has no labels", ErrInvalidLabels, loc)
		}
		for i, l := range list {
			if strings.TrimSpace(l) == "" {
				return fmt.Errorf("%w: %s label %d is blank", ErrInvalidLabels, loc, i)
			}
		}
	}
	return nil
}
