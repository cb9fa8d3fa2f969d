package solver

import (
	"time"

	search "github.com/go-watersort/watersort/internal/solver"
)

// Outcome classifies how a search ended.
type Outcome = search.Outcome

// Outcomes.
const (
	Solved     = search.Solved
	Unsolvable = search.Unsolvable
	Exhausted  = search.Exhausted
)

// ParseOutcome parses the name of an outcome.
func ParseOutcome(s string) (Outcome, error) { return search.ParseOutcome(s) }

// Resulter is the result of a check.
type Resulter interface {
	Solvable() bool
	NumCalcMove() int
}

var _ Resulter = (*Result)(nil)

// Result is the result of Solve.
type Result struct {
	Outcome    Outcome
	Nodes      int // searched nodes
	Iterations int
	Bound      int // last searched bound
	Visited    int // distinct canonical states
	Duration   time.Duration
	Advisories []string // color count anomalies
	Cached     bool     // verdict came from the store, stats are zero
}

// Solvable reports whether a goal state is reachable.
func (r *Result) Solvable() bool { return r.Outcome == Solved }

// Proven reports whether the outcome is definitive. Exhausted results need
// a larger depth budget.
func (r *Result) Proven() bool { return r.Outcome != Exhausted }

// NumCalcMove returns the number of calculated moves.
func (r *Result) NumCalcMove() int { return r.Nodes }
