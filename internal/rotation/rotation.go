// Package rotation computes the yearly household order.
//
// Each year the base order of a group shifts left by one position relative
// to a reference year, so over len(group) years every household holds every
// position once.
package rotation

// Group is a named, fixed list of locations rotated as a unit.
type Group struct {
	Name      string
	Locations []string
}

// FloorMod returns a mod n in [0, n). Go's % truncates toward zero and
// yields negative results for negative a.
func FloorMod(a, n int) int {
	if n <= 0 {
		return 0
	}
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// Offset is the number of positions locations are shifted for year.
func Offset(n, year, referenceYear int) int {
	return FloorMod(year-referenceYear, n)
}

// Rotate returns locations[offset:] + locations[:offset] as a new slice.
// The input is not modified.
func Rotate(locations []string, year, referenceYear int) []string {
	n := len(locations)
	out := make([]string, 0, n)
	if n == 0 {
		return out
	}
	offset := Offset(n, year, referenceYear)
	out = append(out, locations[offset:]...)
	out = append(out, locations[:offset]...)
	return out
}

// Sequence rotates every group independently against referenceYear and
// concatenates them. Odd years keep the configured group order; even years
// reverse it, so a group that goes last in one parity goes first in the
// other.
func Sequence(groups []Group, year, referenceYear int) []string {
	order := make([]Group, len(groups))
	copy(order, groups)
	if FloorMod(year, 2) == 0 {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	total := 0
	for _, g := range order {
		total += len(g.Locations)
	}
	out := make([]string, 0, total)
	for _, g := range order {
		out = append(out, Rotate(g.Locations, year, referenceYear)...)
	}
	return out
}
