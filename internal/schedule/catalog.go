package schedule

import (
	"errors"
	"fmt"
)

var ErrUnknownSchedule = errors.New("unknown schedule")

// Catalog is the configured plans in configuration order.
type Catalog []Plan

// Find returns the plan with the given id. An empty id selects the first
// plan.
func (c Catalog) Find(id string) (Plan, error) {
	if len(c) == 0 {
		return Plan{}, fmt.Errorf("%w: none configured", ErrUnknownSchedule)
	}
	if id == "" {
		return c[0], nil
	}
	for _, p := range c {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("%w: %q", ErrUnknownSchedule, id)
}
