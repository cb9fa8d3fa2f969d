package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-watersort/watersort/internal/level"
	"github.com/go-watersort/watersort/solver"
)

// errUnsolved is returned by solve --strict for puzzles not proven solvable.
var errUnsolved = errors.New("puzzle not solved")

func (a *app) solveCmd() *cobra.Command {
	var (
		tubes    string
		maxDepth int
		capacity int
		workers  int
		asJSON   bool
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "solve [level file]",
		Short: "Check whether a puzzle can be solved",
		Long: `Check whether a puzzle can be solved.

The puzzle is read from a YAML or JSON level file or given with --tubes as a
JSON array of tubes, each listed bottom to top:

  solver solve --tubes '[["A","A","A"],["A"],[],[]]'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in [][]string
			switch {
			case len(args) == 1 && tubes != "":
				return errors.New("either a level file or --tubes, not both")
			case len(args) == 1:
				l, err := level.Load(args[0])
				if err != nil {
					return err
				}
				in = l.Tubes
			case tubes != "":
				if err := json.NewDecoder(strings.NewReader(tubes)).Decode(&in); err != nil {
					return fmt.Errorf("parse --tubes: %w", err)
				}
			default:
				return errors.New("no puzzle given")
			}

			if cmd.Flags().Changed("max-depth") {
				a.cfg.MaxDepth = maxDepth
			}
			if cmd.Flags().Changed("capacity") {
				a.cfg.Capacity = capacity
			}
			if cmd.Flags().Changed("workers") {
				a.cfg.Workers = workers
			}

			s, store, err := a.newSolver()
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := s.Solve(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := a.printResult(res, asJSON); err != nil {
				return err
			}
			if strict && !res.Solvable() {
				return fmt.Errorf("%w: %s", errUnsolved, res.Outcome)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tubes, "tubes", "t", "", "puzzle as JSON array of tubes")
	cmd.Flags().IntVarP(&maxDepth, "max-depth", "d", solver.DefaultMaxDepth, "search depth budget")
	cmd.Flags().IntVar(&capacity, "capacity", solver.DefaultCapacity, "units per tube")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "concurrent branch searches (0: one per CPU)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error unless the puzzle is solvable")
	return cmd
}

type resultOut struct {
	Solvable   bool     `json:"solvable"`
	Outcome    string   `json:"outcome"`
	Nodes      int      `json:"nodes"`
	Iterations int      `json:"iterations"`
	Bound      int      `json:"bound"`
	Visited    int      `json:"visited"`
	DurationMs int64    `json:"durationMs"`
	Advisories []string `json:"advisories,omitempty"`
	Cached     bool     `json:"cached"`
}

func (a *app) printResult(res *solver.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resultOut{
			Solvable:   res.Solvable(),
			Outcome:    res.Outcome.String(),
			Nodes:      res.Nodes,
			Iterations: res.Iterations,
			Bound:      res.Bound,
			Visited:    res.Visited,
			DurationMs: res.Duration.Milliseconds(),
			Advisories: res.Advisories,
			Cached:     res.Cached,
		})
	}

	fmt.Fprintf(a.stdout, "solvable: %t (%s)\n", res.Solvable(), res.Outcome)
	if res.Cached {
		fmt.Fprintln(a.stdout, "cached verdict")
	} else {
		fmt.Fprintf(a.stdout, "nodes: %d, iterations: %d, bound: %d, visited: %d\n", res.Nodes, res.Iterations, res.Bound, res.Visited)
	}
	for _, adv := range res.Advisories {
		fmt.Fprintf(a.stdout, "advisory: %s\n", adv)
	}
	return nil
}
