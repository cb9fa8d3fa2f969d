package solver

import "github.com/go-watersort/watersort/internal/packed"

// Rules holds the constants of one puzzle. All tubes share the capacity.
type Rules struct {
	Capacity int

	// Admissible limits the heuristic to DistinctTops. The search is then
	// exact within its depth budget: Exhausted proves that no solution of at
	// most maxDepth moves exists.
	Admissible bool
}

// Segment is the maximal run of one color at the top of a tube.
type Segment struct {
	Color packed.Color
	Len   int
}

// Top returns the top color of t or packed.None if t is empty.
func Top(t packed.Tube) packed.Color {
	if len(t) == 0 {
		return packed.None
	}
	return t[len(t)-1]
}

// TopSegment returns the top segment of t. ok is false for an empty tube.
func TopSegment(t packed.Tube) (seg Segment, ok bool) {
	if len(t) == 0 {
		return Segment{}, false
	}
	c := t[len(t)-1]
	n := 1
	for i := len(t) - 2; i >= 0 && t[i] == c; i-- {
		n++
	}
	return Segment{Color: c, Len: n}, true
}

// IsComplete reports whether t is full and monochrome.
func (r Rules) IsComplete(t packed.Tube) bool {
	if len(t) != r.Capacity || len(t) == 0 {
		return false
	}
	for _, c := range t[1:] {
		if c != t[0] {
			return false
		}
	}
	return true
}

// IsGoal reports whether every tube of s is empty or complete.
func (r Rules) IsGoal(s packed.State) bool {
	for _, t := range s {
		if len(t) != 0 && !r.IsComplete(t) {
			return false
		}
	}
	return true
}

func (r Rules) isFull(t packed.Tube) bool { return len(t) >= r.Capacity }
