package main

import (
	"github.com/spf13/cobra"

	"github.com/go-watersort/watersort/internal/level"
	"github.com/go-watersort/watersort/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr   string
		levels []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			all := level.Builtin()
			for _, path := range levels {
				l, err := level.Load(path)
				if err != nil {
					return err
				}
				all = append(all, l)
			}

			s, store, err := a.newSolver()
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(s, all, a.logger, a.cfg.Server.RequestTimeout.Duration)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringSliceVarP(&levels, "level", "l", nil, "additional level files")
	return cmd
}
