// Command solver checks, generates and serves water sort puzzles.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/go-watersort/watersort/internal/config"
	"github.com/go-watersort/watersort/internal/verdict"
	"github.com/go-watersort/watersort/solver"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by all commands.
type app struct {
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "solver",
		Short:         "Water sort puzzle solvability checker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "TOML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(a.solveCmd())
	root.AddCommand(a.generateCmd())
	root.AddCommand(a.serveCmd())
	return root
}

func (a *app) init() error {
	a.cfg = config.Default()
	if a.cfgPath != "" {
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	level, err := a.cfg.Level()
	if err != nil {
		return err
	}
	if a.verbose {
		level = log.DebugLevel
	}
	a.logger = log.NewWithOptions(a.stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	return nil
}

// newSolver returns a solver configured by a.cfg. The returned store must be
// closed by the caller.
func (a *app) newSolver() (*solver.Solver, verdict.Store, error) {
	store, err := verdict.Open(verdict.Options{
		Backend:    a.cfg.Cache.Backend,
		MaxEntries: a.cfg.Cache.MaxEntries,
		BadgerPath: a.cfg.Cache.BadgerPath,
		RedisAddr:  a.cfg.Cache.RedisAddr,
		RedisDB:    a.cfg.Cache.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("verdict store", "backend", a.cfg.Cache.Backend)

	s := solver.New(
		solver.WithCapacity(a.cfg.Capacity),
		solver.WithMaxDepth(a.cfg.MaxDepth),
		solver.WithWorkers(a.cfg.Workers),
		solver.WithLogger(a.logger),
		solver.WithStore(store, a.cfg.Cache.TTL.Duration),
	)
	return s, store, nil
}
