// Package solver decides whether a water sort puzzle can be solved.
//
// Tubes are given bottom to top as color names:
//
//	ok := solver.IsSolvable([][]string{{"A", "A", "A"}, {"A"}, {}, {}}, 60)
//
// A Solver adds logging, a verdict cache and parallel search on top of the
// plain IDA* search.
package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/go-watersort/watersort/internal/metrics"
	"github.com/go-watersort/watersort/internal/packed"
	search "github.com/go-watersort/watersort/internal/solver"
	"github.com/go-watersort/watersort/internal/verdict"
)

// Defaults.
const (
	DefaultCapacity = 4
	DefaultMaxDepth = 60
)

// ErrInvalidInput is returned for tubes the solver does not accept.
var ErrInvalidInput = search.ErrInvalidInput

// InputError describes a tube holding more units than the capacity.
type InputError = search.InputError

// Option configures a Solver.
type Option func(*Solver)

// WithCapacity sets the number of units a tube holds.
func WithCapacity(capacity int) Option { return func(s *Solver) { s.capacity = capacity } }

// WithMaxDepth sets the default depth budget of Solve.
func WithMaxDepth(maxDepth int) Option { return func(s *Solver) { s.maxDepth = maxDepth } }

// WithWorkers searches first level branches concurrently.
// 0 uses one worker per CPU, 1 (the default) searches sequentially.
func WithWorkers(workers int) Option { return func(s *Solver) { s.workers = workers } }

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option { return func(s *Solver) { s.logger = logger } }

// WithStore caches verdicts in store for ttl. A ttl <= 0 never expires.
func WithStore(store verdict.Store, ttl time.Duration) Option {
	return func(s *Solver) { s.store, s.ttl = store, ttl }
}

// Solver checks puzzles. It is safe for concurrent use.
type Solver struct {
	capacity int
	maxDepth int
	workers  int
	logger   *log.Logger
	store    verdict.Store
	ttl      time.Duration

	group   singleflight.Group
	mu      sync.Mutex
	flights map[string]*flight
}

// New returns a solver.
func New(opts ...Option) *Solver {
	s := &Solver{
		capacity: DefaultCapacity,
		maxDepth: DefaultMaxDepth,
		workers:  1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.store == nil {
		s.store = verdict.NewNullStore()
	}
	return s
}

// Capacity returns the tube capacity of s.
func (s *Solver) Capacity() int { return s.capacity }

// MaxDepth returns the default depth budget of s.
func (s *Solver) MaxDepth() int { return s.maxDepth }

// Solve checks tubes with the default depth budget.
func (s *Solver) Solve(ctx context.Context, tubes [][]string) (*Result, error) {
	return s.SolveDepth(ctx, tubes, s.maxDepth)
}

// SolveDepth checks tubes with depth budget maxDepth.
//
// Errors are returned for invalid input (matching ErrInvalidInput) and if
// ctx is done before the search finishes.
func (s *Solver) SolveDepth(ctx context.Context, tubes [][]string, maxDepth int) (*Result, error) {
	return s.solve(ctx, search.Rules{Capacity: s.capacity}, tubes, maxDepth)
}

// SolveWithin checks whether tubes can be solved in at most moves pours.
// Unlike SolveDepth the search never overestimates the moves left, so an
// Exhausted outcome proves that more than moves pours are needed.
func (s *Solver) SolveWithin(ctx context.Context, tubes [][]string, moves int) (*Result, error) {
	return s.solve(ctx, search.Rules{Capacity: s.capacity, Admissible: true}, tubes, moves)
}

func (s *Solver) solve(ctx context.Context, rules search.Rules, tubes [][]string, maxDepth int) (*Result, error) {
	t0 := time.Now()

	if maxDepth < 0 {
		metrics.ObserveSearch("invalid", 0, 0)
		return nil, fmt.Errorf("%w: max depth %d", ErrInvalidInput, maxDepth)
	}
	start, palette, err := rules.Convert(tubes)
	if err != nil {
		metrics.ObserveSearch("invalid", 0, 0)
		return nil, err
	}

	res := &Result{Advisories: rules.Advisories(start, palette)}
	for _, a := range res.Advisories {
		s.logger.Warn("advisory", "msg", a)
	}

	key := verdict.Key(string(rules.Key(start)), s.capacity, maxDepth)
	if rules.Admissible {
		key += ":exact"
	}
	if outcome, ok := s.lookup(ctx, key); ok {
		res.Outcome, res.Cached, res.Duration = outcome, true, time.Since(t0)
		s.logger.Info("verdict", "outcome", outcome, "cached", true, "elapsed", res.Duration)
		return res, nil
	}

	r, err := s.shared(ctx, key, func(ctx context.Context) (search.Result, error) {
		r, err := s.search(ctx, rules, maxDepth, start)
		if err != nil {
			return r, err
		}
		if err := s.store.Set(ctx, key, []byte(r.Outcome.String()), s.ttl); err != nil {
			s.logger.Warn("store verdict", "err", err)
		}
		return r, nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			metrics.ObserveSearch("canceled", 0, time.Since(t0))
		}
		return nil, err
	}

	res.Outcome = r.Outcome
	res.Nodes, res.Iterations, res.Bound, res.Visited = r.Nodes, r.Iterations, r.Bound, r.Visited
	res.Duration = time.Since(t0)
	s.logger.Info("verdict", "outcome", res.Outcome, "nodes", res.Nodes, "iterations", res.Iterations, "elapsed", res.Duration)
	return res, nil
}

// flight is a search shared by all concurrent callers asking for one key.
// Its context is detached from the caller that started it and is canceled
// once every waiting caller has gone.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// shared runs fn once per key for concurrent callers. Each caller waits on
// its own ctx; the search continues as long as one caller still waits.
func (s *Solver) shared(ctx context.Context, key string, fn func(context.Context) (search.Result, error)) (search.Result, error) {
	if err := ctx.Err(); err != nil {
		return search.Result{}, err
	}
	f := s.join(ctx, key)
	defer s.leave(key, f)

	ch := s.group.DoChan(key, func() (any, error) {
		return fn(f.ctx)
	})
	select {
	case <-ctx.Done():
		return search.Result{}, ctx.Err()
	case v := <-ch:
		if v.Err != nil {
			return search.Result{}, v.Err
		}
		return v.Val.(search.Result), nil
	}
}

func (s *Solver) join(ctx context.Context, key string) *flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flights == nil {
		s.flights = make(map[string]*flight)
	}
	f := s.flights[key]
	if f == nil {
		f = new(flight)
		f.ctx, f.cancel = context.WithCancel(context.WithoutCancel(ctx))
		s.flights[key] = f
	}
	f.waiters++
	return f
}

func (s *Solver) leave(key string, f *flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	delete(s.flights, key)
	// A canceled search must not be shared with later callers.
	s.group.Forget(key)
}

func (s *Solver) search(ctx context.Context, rules search.Rules, maxDepth int, start packed.State) (search.Result, error) {
	searcher := search.NewSearcher(rules, maxDepth, s.logger)

	var (
		r   search.Result
		err error
	)
	if s.workers == 1 {
		r, err = searcher.Run(ctx, start)
	} else {
		r, err = searcher.RunParallel(ctx, start, s.workers)
	}
	if err == nil {
		metrics.ObserveSearch(r.Outcome.String(), r.Nodes, r.Duration)
	}
	return r, err
}

func (s *Solver) lookup(ctx context.Context, key string) (Outcome, bool) {
	if _, ok := s.store.(*verdict.NullStore); ok {
		return 0, false
	}
	data, ok, err := s.store.Get(ctx, key)
	switch {
	case err != nil:
		metrics.ObserveCache("error")
		s.logger.Warn("load verdict", "err", err)
		return 0, false
	case !ok:
		metrics.ObserveCache("miss")
		return 0, false
	}
	outcome, err := search.ParseOutcome(string(data))
	if err != nil {
		metrics.ObserveCache("error")
		s.logger.Warn("load verdict", "key", key, "err", err)
		return 0, false
	}
	metrics.ObserveCache("hit")
	return outcome, true
}

var defaultSolver = New(WithLogger(log.New(io.Discard)))

// IsSolvable reports whether a goal state is reachable from tubes with a
// search bound of at most maxDepth moves, using the default capacity. It returns
// false for invalid input and when the budget is exhausted.
func IsSolvable(tubes [][]string, maxDepth int) bool {
	res, err := defaultSolver.SolveDepth(context.Background(), tubes, maxDepth)
	return err == nil && res.Solvable()
}
