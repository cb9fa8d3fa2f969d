// Package game plays a level with a move budget.
//
// Pours follow the same rule as the search, so a level the solver reports
// as solvable can be won here.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-watersort/watersort/internal/level"
	"github.com/go-watersort/watersort/internal/packed"
	search "github.com/go-watersort/watersort/internal/solver"
	"github.com/go-watersort/watersort/solver"
)

var (
	// ErrIllegalPour is returned for a pour the rules do not allow.
	ErrIllegalPour = errors.New("illegal pour")
	// ErrOutOfMoves is returned once the move budget is used up.
	ErrOutOfMoves = errors.New("no moves left")
	// ErrCapacity is returned when a solver uses another tube capacity
	// than the game.
	ErrCapacity = errors.New("capacity mismatch")
)

// Game is a running level. It is not safe for concurrent use.
type Game struct {
	level     *level.Level
	rules     search.Rules
	palette   *packed.Palette
	start     packed.State
	state     packed.State
	movesLeft int
}

// New starts lvl with tubes of the given capacity. Later changes to lvl do
// not affect the game.
func New(lvl *level.Level, capacity int) (*Game, error) {
	rules := search.Rules{Capacity: capacity}
	start, palette, err := rules.Convert(lvl.Tubes)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", lvl.ID, err)
	}
	g := &Game{level: lvl.Clone(), rules: rules, palette: palette, start: start}
	g.Reset()
	return g, nil
}

// Reset restores the level and the move budget.
func (g *Game) Reset() {
	g.state = g.start.Clone()
	g.movesLeft = g.level.Moves()
}

// Pour pours tube src onto tube dst and returns the number of poured units.
// A successful pour uses one move.
func (g *Game) Pour(src, dst int) (int, error) {
	if g.movesLeft <= 0 {
		return 0, ErrOutOfMoves
	}
	if src < 0 || src >= len(g.state) || dst < 0 || dst >= len(g.state) {
		return 0, fmt.Errorf("%w: tube %d to %d out of range", ErrIllegalPour, src, dst)
	}
	m, ok := g.rules.Pour(g.state, src, dst)
	if !ok {
		return 0, fmt.Errorf("%w: tube %d to %d", ErrIllegalPour, src, dst)
	}
	g.state = g.rules.Apply(g.state, m)
	g.movesLeft--
	return m.Amount, nil
}

// Won reports whether every tube is empty or complete.
func (g *Game) Won() bool { return len(g.state) > 0 && g.rules.IsGoal(g.state) }

// Lost reports whether the game can no longer be won: the budget is used up
// or no pour is possible.
func (g *Game) Lost() bool {
	if g.Won() {
		return false
	}
	return g.movesLeft <= 0 || len(g.rules.Moves(g.state)) == 0
}

// MovesLeft returns the remaining move budget.
func (g *Game) MovesLeft() int { return g.movesLeft }

// Tubes returns the current tubes.
func (g *Game) Tubes() [][]string { return packed.Unpack(g.state, g.palette) }

// Solvable checks whether the current position can still be won within
// the remaining moves. Solved means it can, Exhausted that more moves are
// needed. s must use the capacity of the game.
func (g *Game) Solvable(ctx context.Context, s *solver.Solver) (*solver.Result, error) {
	if s.Capacity() != g.rules.Capacity {
		return nil, fmt.Errorf("%w: solver %d, game %d", ErrCapacity, s.Capacity(), g.rules.Capacity)
	}
	return s.SolveWithin(ctx, g.Tubes(), g.movesLeft)
}
