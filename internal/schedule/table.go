package schedule

import "aviancal/internal/rotation"

// Labels maps a location name to its cyclic list of time labels.
type Labels map[string][]string

// Table holds the label lists for odd and even years.
type Table struct {
	Odd  Labels `yaml:"odd" json:"odd"`
	Even Labels `yaml:"even" json:"even"`
}

// Lookup returns the labels in force for year. It never fails; a missing
// parity yields a nil map, which Build treats as "no fixed times".
func (t Table) Lookup(year int) Labels {
	if rotation.FloorMod(year, 2) == 0 {
		return t.Even
	}
	return t.Odd
}
