package solver

import "github.com/go-watersort/watersort/internal/packed"

// DistinctTops counts the distinct top colors of tubes that are neither empty
// nor complete. Every such color needs at least one more pour.
func (r Rules) DistinctTops(s packed.State) int {
	var seen [packed.MaxColors + 1]bool
	n := 0
	for _, t := range s {
		if len(t) == 0 || r.IsComplete(t) {
			continue
		}
		if c := Top(t); !seen[c] {
			seen[c] = true
			n++
		}
	}
	return n
}

// Misplaced counts the units that differ from the top color of their tube.
// Empty, single unit and complete tubes are ignored.
func (r Rules) Misplaced(s packed.State) int {
	n := 0
	for _, t := range s {
		if len(t) <= 1 || r.IsComplete(t) {
			continue
		}
		top := Top(t)
		for _, c := range t[:len(t)-1] {
			if c != top {
				n++
			}
		}
	}
	return n
}

// Heuristic estimates the number of moves left to reach the goal.
// It does not depend on the tube order.
//
// Misplaced may overestimate, so the default estimate can prune solutions
// that fit the depth budget. Admissible rules use DistinctTops alone.
func (r Rules) Heuristic(s packed.State) int {
	if r.Admissible {
		return r.DistinctTops(s)
	}
	return max(r.DistinctTops(s), r.Misplaced(s))
}
