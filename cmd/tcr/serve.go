package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkoosis/tcr/internal/todo"
)

var serveBindings = map[string]string{
	"addr":      "server.addr",
	"db-driver": "server.db_driver",
	"db-dsn":    "server.db_dsn",
}

func addServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("addr", "127.0.0.1:8000", "listen address")
	f.String("db-driver", todo.DriverSQLite, "store: memory, sqlite3, postgres, mysql")
	f.String("db-dsn", "", "database DSN (default file:todo.db)")
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the todo app the collectors test against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd, serveBindings); err != nil {
				return err
			}
			store, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			return a.serve(cmd.Context(), store)
		},
	}
	addServeFlags(cmd)
	return cmd
}

// openStore opens the configured store; the returned func releases it.
func (a *app) openStore(ctx context.Context) (todo.Store, func(), error) {
	s := a.cfg.Server
	if s.DBDriver == "memory" {
		return todo.NewMemStore(), func() {}, nil
	}
	store, err := todo.Open(ctx, s.DBDriver, s.DBDSN)
	if err != nil {
		return nil, nil, err
	}
	a.log.Info().Str("driver", s.DBDriver).Msg("store opened")
	return store, func() {
		if err := store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing store")
		}
	}, nil
}

func (a *app) serve(ctx context.Context, store todo.Store) error {
	s := a.cfg.Server
	log := a.log.With().Str("component", "todo").Logger()
	h := todo.NewHandler(store, todo.NewMetrics()).Router(log)
	return todo.NewServer(s.Addr, h, s.ShutdownTimeout, log).Run(ctx)
}

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <dataset.json>",
		Short: "Seed the app's store from a JSON dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, map[string]string{
				"db-driver": "server.db_driver",
				"db-dsn":    "server.db_dsn",
			}); err != nil {
				return err
			}
			store, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := todo.ImportDataset(cmd.Context(), store, args[0])
			if err != nil {
				return fmt.Errorf("imported %d task(s) before failing: %w", n, err)
			}
			fmt.Fprintf(a.stdout, "%d task(s) imported\n", n)
			return nil
		},
	}
	f := cmd.Flags()
	f.String("db-driver", todo.DriverSQLite, "store: memory, sqlite3, postgres, mysql")
	f.String("db-dsn", "", "database DSN (default file:todo.db)")
	return cmd
}
