// Package packed provides types and functions for memory efficient representations of tubes and puzzle states.
package packed

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/slices"
)

// Color is an interned color token. The zero value is never a valid color.
type Color byte

// None is the color of an empty tube top.
const None Color = 0

// MaxColors is the maximum number of distinct colors of one puzzle.
const MaxColors = 255

// separator delimits tubes in a Key. No color packs to it.
const separator byte = byte(None)

// ErrTooManyColors is returned if a puzzle uses more than MaxColors colors.
var ErrTooManyColors = errors.New("too many colors")

// Tube lists the colors of one tube bottom to top.
//
// Tubes are treated as immutable once built: moves allocate new tubes and
// states share untouched ones.
type Tube []Color

// State is an ordered sequence of tubes.
type State []Tube

// Key is a hashable encoding of a state.
type Key string

// Hash returns a hash value of k.
func (k Key) Hash() uint64 { return xxhash.Sum64String(string(k)) }

// Clone returns a copy of s. The tubes are shared.
func (s State) Clone() State { return slices.Clone(s) }

// Encode returns the key of s in its current tube order.
func Encode(s State) Key {
	n := len(s)
	for _, t := range s {
		n += len(t)
	}
	b := make([]byte, 0, n)
	for i, t := range s {
		if i > 0 {
			b = append(b, separator)
		}
		for _, c := range t {
			b = append(b, byte(c))
		}
	}
	return Key(b)
}

// Palette interns color names into colors.
type Palette struct {
	colors map[string]Color
	names  []string
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{colors: map[string]Color{}, names: []string{""}}
}

// Intern returns the color of name, assigning the next free color on first use.
func (p *Palette) Intern(name string) (Color, error) {
	if c, ok := p.colors[name]; ok {
		return c, nil
	}
	if len(p.names) > MaxColors {
		return None, fmt.Errorf("%w: more than %d", ErrTooManyColors, MaxColors)
	}
	c := Color(len(p.names))
	p.colors[name] = c
	p.names = append(p.names, name)
	return c, nil
}

// Name returns the name c was interned from.
func (p *Palette) Name(c Color) string {
	if int(c) >= len(p.names) {
		return ""
	}
	return p.names[c]
}

// Len returns the number of interned colors.
func (p *Palette) Len() int { return len(p.names) - 1 }

// Pack interns tubes into a state.
//
// Names are interned in sorted order, so the packed colors only depend on the
// set of names and not on the order the tubes are listed in.
func Pack(tubes [][]string) (State, *Palette, error) {
	var names []string
	for _, tube := range tubes {
		names = append(names, tube...)
	}
	slices.Sort(names)
	names = slices.Compact(names)

	p := NewPalette()
	for _, name := range names {
		if _, err := p.Intern(name); err != nil {
			return nil, nil, err
		}
	}

	s := make(State, len(tubes))
	for i, tube := range tubes {
		t := make(Tube, len(tube))
		for j, name := range tube {
			t[j] = p.colors[name]
		}
		s[i] = t
	}
	return s, p, nil
}

// Unpack returns the color names of s.
func Unpack(s State, p *Palette) [][]string {
	tubes := make([][]string, len(s))
	for i, t := range s {
		tube := make([]string, len(t))
		for j, c := range t {
			tube[j] = p.Name(c)
		}
		tubes[i] = tube
	}
	return tubes
}
