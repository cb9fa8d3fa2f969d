package solver

import (
	"errors"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/go-watersort/watersort/internal/packed"
)

// ErrInvalidInput is returned for puzzles the search does not accept.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes a tube holding more units than the capacity.
type InputError struct {
	Tube     int
	Len      int
	Capacity int
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v: tube %d holds %d units, capacity is %d", ErrInvalidInput, e.Tube, e.Len, e.Capacity)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// Convert validates tubes against r and packs them into a state.
func (r Rules) Convert(tubes [][]string) (packed.State, *packed.Palette, error) {
	if r.Capacity <= 0 {
		return nil, nil, fmt.Errorf("%w: capacity %d", ErrInvalidInput, r.Capacity)
	}
	for i, t := range tubes {
		if len(t) > r.Capacity {
			return nil, nil, &InputError{Tube: i, Len: len(t), Capacity: r.Capacity}
		}
	}
	s, p, err := packed.Pack(tubes)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s, p, nil
}

// Advisories lists colors whose unit count is not a multiple of the
// capacity.
// Such puzzles are searched anyway.
func (r Rules) Advisories(s packed.State, p *packed.Palette) []string {
	counts := map[packed.Color]int{}
	for _, t := range s {
		for _, c := range t {
			counts[c]++
		}
	}
	colors := maps.Keys(counts)
	slices.Sort(colors)

	var advisories []string
	for _, c := range colors {
		if n := counts[c]; n%r.Capacity != 0 {
			advisories = append(advisories, fmt.Sprintf("color %q has %d units, not a multiple of %d", p.Name(c), n, r.Capacity))
		}
	}
	return advisories
}
