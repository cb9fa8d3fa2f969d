package main

import (
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-watersort/watersort/internal/level"
)

func (a *app) generateCmd() *cobra.Command {
	var (
		colors int
		spare  int
		seed   int64
		output string
		check  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random puzzle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			l, err := level.Generate(rand.New(rand.NewSource(seed)), colors, spare, a.cfg.Capacity)
			if err != nil {
				return err
			}
			a.logger.Debug("generated level", "id", l.ID, "seed", seed)

			if check {
				s, store, err := a.newSolver()
				if err != nil {
					return err
				}
				defer store.Close()

				res, err := s.Solve(cmd.Context(), l.Tubes)
				if err != nil {
					return err
				}
				a.logger.Info("checked level", "id", l.ID, "solvable", res.Solvable(), "outcome", res.Outcome)
			}

			if output != "" {
				if err := l.Save(output); err != nil {
					return err
				}
				a.logger.Info("level written", "path", output)
				return nil
			}
			enc := yaml.NewEncoder(a.stdout)
			defer enc.Close()
			return enc.Encode(l)
		},
	}

	cmd.Flags().IntVarP(&colors, "colors", "n", 6, "number of colors")
	cmd.Flags().IntVar(&spare, "spare", 2, "number of empty tubes")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0: time based)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, .yaml or .json (stdout if empty)")
	cmd.Flags().BoolVar(&check, "check", false, "check the generated level")
	return cmd
}
