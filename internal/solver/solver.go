// Package solver implements an IDA* solvability search for water sort puzzles.
package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-watersort/watersort/internal/packed"
	"github.com/go-watersort/watersort/internal/partmap"
)

// Inf is returned by an exhausted subtree.
const Inf = math.MaxInt

const (
	numPart         = 64
	cancelCheckMask = 1<<12 - 1 // check the context every 4096 nodes
)

// Outcome classifies how a search ended.
type Outcome int

const (
	// Solved means a goal state is reachable.
	Solved Outcome = iota
	// Unsolvable means the whole reachable state space was searched without
	// finding a goal state.
	Unsolvable
	// Exhausted means the bound exceeded the maximum depth before a goal
	// state was found. Solvability is unknown.
	Exhausted
)

var outcomeNames = [...]string{Solved: "solved", Unsolvable: "unsolvable", Exhausted: "exhausted"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	for o, name := range outcomeNames {
		if name == s {
			return Outcome(o), nil
		}
	}
	return 0, fmt.Errorf("unknown outcome %q", s)
}

// Stats describes the work done by a search.
type Stats struct {
	Nodes      int           // expanded or bound-checked nodes
	Iterations int           // IDA* iterations
	Bound      int           // last bound searched, the bound beyond maxDepth if Exhausted
	Visited    int           // distinct canonical states recorded
	Duration   time.Duration // wall time
}

// Result is the result of a search.
type Result struct {
	Outcome Outcome
	Stats
}

// Searcher runs IDA* searches with a fixed rule set and depth budget.
type Searcher struct {
	rules    Rules
	maxDepth int
	logger   *log.Logger
}

// NewSearcher returns a searcher. A nil logger discards debug output.
func NewSearcher(rules Rules, maxDepth int, logger *log.Logger) *Searcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Searcher{rules: rules, maxDepth: maxDepth, logger: logger}
}

// search holds the state of one invocation: path stack, visited table and
// counters. Nothing is shared between invocations.
type search struct {
	ctx      context.Context
	rules    Rules
	maxDepth int
	logger   *log.Logger

	visited *partmap.Map
	path    []packed.State
	moves   [][]Move // move buffers per depth
	iter    int
	nodes   int
	err     error
}

func (s *Searcher) newSearch(ctx context.Context) *search {
	return &search{
		ctx:      ctx,
		rules:    s.rules,
		maxDepth: s.maxDepth,
		logger:   s.logger,
		visited:  partmap.New(numPart),
	}
}

// Run decides whether a goal state is reachable from start.
// An error is only returned if ctx is done before the search finishes.
func (s *Searcher) Run(ctx context.Context, start packed.State) (Result, error) {
	t0 := time.Now()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	root := s.rules.Canonicalize(start)
	srch := s.newSearch(ctx)
	res, err := srch.run(root, 0)
	res.Duration = time.Since(t0)
	return res, err
}

func (s *search) run(root packed.State, g0 int) (Result, error) {
	var res Result
	if s.rules.IsGoal(root) {
		return res, nil // Solved
	}

	rootKey := packed.Encode(root)
	bound := g0 + s.rules.Heuristic(root)
	for bound <= s.maxDepth {
		s.iter++
		s.visited.Visit(rootKey, g0, s.iter)
		s.path = append(s.path[:0], root)

		t, found := s.dfs(g0, bound)
		res.Iterations, res.Bound, res.Nodes, res.Visited = s.iter, bound, s.nodes, s.visited.Size()
		s.logger.Debug("iteration done", "iter", s.iter, "bound", bound, "next", nextBound(t), "nodes", s.nodes, "visited", res.Visited)

		switch {
		case s.err != nil:
			return res, fmt.Errorf("search aborted at bound %d: %w", bound, s.err)
		case found:
			res.Outcome = Solved
			return res, nil
		case t == Inf:
			res.Outcome = Unsolvable
			return res, nil
		}
		bound = t
	}
	res.Outcome = Exhausted
	res.Bound, res.Nodes, res.Visited = bound, s.nodes, s.visited.Size()
	return res, nil
}

func nextBound(t int) any {
	if t == Inf {
		return "inf"
	}
	return t
}

// dfs searches the node on top of the path with cost g. It returns whether
// a goal was found, and otherwise the lowest f value above bound (Inf if
// the subtree holds none).
func (s *search) dfs(g, bound int) (int, bool) {
	node := s.path[len(s.path)-1]

	s.nodes++
	if s.nodes&cancelCheckMask == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return Inf, false
		}
	}

	f := g + s.rules.Heuristic(node)
	if f > bound {
		return f, false
	}
	if s.rules.IsGoal(node) {
		return f, true
	}

	depth := len(s.path) - 1
	for len(s.moves) <= depth {
		s.moves = append(s.moves, nil)
	}
	s.moves[depth] = s.rules.AppendMoves(s.moves[depth][:0], node)

	minF := Inf
	for i := 0; i < len(s.moves[depth]); i++ {
		child := s.rules.Canonicalize(s.rules.Apply(node, s.moves[depth][i]))
		if s.rules.IsDead(child) || !s.visited.Visit(packed.Encode(child), g+1, s.iter) {
			continue
		}

		s.path = append(s.path, child)
		t, found := s.dfs(g+1, bound)
		s.path = s.path[:len(s.path)-1]

		if found {
			return t, true
		}
		if s.err != nil {
			return Inf, false
		}
		minF = min(minF, t)
	}
	return minF, false
}
