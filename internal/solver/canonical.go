package solver

import (
	"github.com/go-watersort/watersort/internal/packed"
	"golang.org/x/exp/slices"
)

// tube categories in canonical order
const (
	catEmpty = iota
	catComplete
	catPartial
)

func (r Rules) category(t packed.Tube) int {
	switch {
	case len(t) == 0:
		return catEmpty
	case r.IsComplete(t):
		return catComplete
	default:
		return catPartial
	}
}

func (r Rules) compareTubes(a, b packed.Tube) int {
	ca, cb := r.category(a), r.category(b)
	if ca != cb {
		return ca - cb
	}
	switch ca {
	case catComplete:
		return int(a[0]) - int(b[0])
	case catPartial:
		return slices.Compare(a, b)
	}
	return 0
}

// Canonicalize returns s with its tubes reordered: empty tubes first, then
// complete tubes by color, then the remaining tubes by content.
// States that only differ in tube order have the same canonical state.
func (r Rules) Canonicalize(s packed.State) packed.State {
	c := s.Clone()
	slices.SortStableFunc(c, r.compareTubes)
	return c
}

// Key returns the canonical key of s.
func (r Rules) Key(s packed.State) packed.Key { return packed.Encode(r.Canonicalize(s)) }
