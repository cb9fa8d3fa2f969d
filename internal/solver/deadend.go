package solver

import "github.com/go-watersort/watersort/internal/packed"

// IsDead reports whether s is a dead end: every non-full tube has exactly one
// free slot and all non-empty tubes show different top colors, so no pour
// is possible. Goal states are never dead.
//
// The test is cheap and incomplete; states it accepts may still be dead.
func (r Rules) IsDead(s packed.State) bool {
	var spareSlots, numNonFull, numNonEmpty int
	for _, t := range s {
		spareSlots += r.Capacity - len(t)
		if len(t) < r.Capacity {
			numNonFull++
		}
		if len(t) > 0 {
			numNonEmpty++
		}
	}
	if spareSlots > len(s) || spareSlots != numNonFull {
		return false
	}

	var seen [packed.MaxColors + 1]bool
	tops := 0
	for _, t := range s {
		if c := Top(t); len(t) > 0 && !seen[c] {
			seen[c] = true
			tops++
		}
	}
	if tops != numNonEmpty {
		return false
	}
	return !r.IsGoal(s)
}
