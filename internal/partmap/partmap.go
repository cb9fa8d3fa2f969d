// Package partmap provide a partitioned visited table.
package partmap

import "github.com/go-watersort/watersort/internal/packed"

type entry struct {
	cost int32 // lowest path cost seen
	iter int32 // iteration the cost was last recorded in
}

type part struct {
	m map[packed.Key]entry
}

// Map records the lowest path cost per state key across search iterations.
// A Map is owned by a single search and is not safe for concurrent use.
type Map struct {
	numPart uint64
	parts   []*part
	size    int
}

func New(numPart uint64) *Map {
	if numPart == 0 {
		numPart = 1
	}
	pm := &Map{
		numPart: numPart,
		parts:   make([]*part, numPart),
	}
	for i := range pm.parts {
		pm.parts[i] = &part{m: make(map[packed.Key]entry, 1024)}
	}
	return pm
}

func (pm *Map) part(k packed.Key) *part { return pm.parts[k.Hash()%pm.numPart] }

// Load returns the recorded cost and iteration of k.
func (pm *Map) Load(k packed.Key) (cost, iter int, ok bool) {
	e, ok := pm.part(k).m[k]
	return int(e.cost), int(e.iter), ok
}

// Visit records k reached with cost in iteration iter and reports whether the
// state needs to be expanded.
//
// A state is skipped if it was recorded with a lower cost in any iteration,
// or with the same cost in the current iteration.
func (pm *Map) Visit(k packed.Key, cost, iter int) bool {
	part := pm.part(k)
	e, ok := part.m[k]
	if ok {
		if int(e.cost) < cost || (int(e.cost) == cost && int(e.iter) == iter) {
			return false
		}
	} else {
		pm.size++
	}
	part.m[k] = entry{cost: int32(cost), iter: int32(iter)}
	return true
}

func (pm *Map) Size() int { return pm.size }

func (pm *Map) NumPart() int { return int(pm.numPart) }
