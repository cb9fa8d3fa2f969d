package solver

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-watersort/watersort/internal/packed"
)

var numWorker = runtime.NumCPU()

// RunParallel is like Run but searches the first level branches of start
// concurrently. Every branch gets its own visited table; the first branch
// reaching a goal cancels the others.
//
// workers <= 0 uses one worker per CPU.
func (s *Searcher) RunParallel(ctx context.Context, start packed.State, workers int) (Result, error) {
	t0 := time.Now()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if workers <= 0 {
		workers = numWorker
	}

	root := s.rules.Canonicalize(start)
	if s.rules.IsGoal(root) {
		return Result{Outcome: Solved, Stats: Stats{Duration: time.Since(t0)}}, nil
	}
	if h := s.rules.Heuristic(root); h > s.maxDepth {
		return Result{Outcome: Exhausted, Stats: Stats{Bound: h, Duration: time.Since(t0)}}, nil
	}

	rootKey := packed.Encode(root)
	seen := map[packed.Key]bool{rootKey: true}
	var branches []packed.State
	for _, m := range s.rules.Moves(root) {
		child := s.rules.Canonicalize(s.rules.Apply(root, m))
		key := packed.Encode(child)
		if seen[key] || s.rules.IsDead(child) {
			continue
		}
		seen[key] = true
		branches = append(branches, child)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		res      = Result{Outcome: Unsolvable}
		found    bool
		branchFn = func(child packed.State) error {
			srch := s.newSearch(ctx)
			srch.visited.Visit(rootKey, 0, 0)
			r, err := srch.run(child, 1)

			mu.Lock()
			defer mu.Unlock()
			res.Nodes += r.Nodes
			res.Visited += r.Visited
			res.Iterations = max(res.Iterations, r.Iterations)
			res.Bound = max(res.Bound, r.Bound)
			if err != nil {
				return err
			}
			switch r.Outcome {
			case Solved:
				found = true
				cancel()
			case Exhausted:
				res.Outcome = Exhausted
			}
			return nil
		}
	)

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, child := range branches {
		g.Go(func() error { return branchFn(child) })
	}
	err := g.Wait()

	res.Duration = time.Since(t0)
	if found {
		res.Outcome = Solved
		return res, nil
	}
	return res, err
}
