package solver

import (
	"github.com/go-watersort/watersort/internal/packed"
	"golang.org/x/exp/slices"
)

// Move pours Amount units from tube From onto tube To.
type Move struct {
	From, To, Amount int
}

// Pour returns the move pouring tube from onto tube to.
//
// The top segment of from is poured, limited by the free space of to. The
// pour is legal if from is not empty, to is not full and either empty or
// topped by the segment color. This is the only pour rule; the search and
// game sessions both go through it.
func (r Rules) Pour(s packed.State, from, to int) (Move, bool) {
	if from == to {
		return Move{}, false
	}
	src, dst := s[from], s[to]
	seg, ok := TopSegment(src)
	if !ok || r.isFull(dst) {
		return Move{}, false
	}
	if len(dst) != 0 && Top(dst) != seg.Color {
		return Move{}, false
	}
	amount := min(seg.Len, r.Capacity-len(dst))
	if amount <= 0 {
		return Move{}, false
	}
	return Move{From: from, To: to, Amount: amount}, true
}

// AppendMoves appends the legal moves of s to moves.
// Complete tubes are never poured from.
func (r Rules) AppendMoves(moves []Move, s packed.State) []Move {
	for from, src := range s {
		if len(src) == 0 || r.IsComplete(src) {
			continue
		}
		for to := range s {
			if m, ok := r.Pour(s, from, to); ok {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

// Moves returns the legal moves of s ordered by source, then destination.
func (r Rules) Moves(s packed.State) []Move { return r.AppendMoves(nil, s) }

// Apply returns the state after m. s is left untouched.
func (r Rules) Apply(s packed.State, m Move) packed.State {
	next := s.Clone()
	src, dst := s[m.From], s[m.To]
	n := len(src) - m.Amount
	next[m.From] = slices.Clip(src[:n])

	t := make(packed.Tube, len(dst), len(dst)+m.Amount)
	copy(t, dst)
	next[m.To] = append(t, src[n:]...)
	return next
}
