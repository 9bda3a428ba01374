package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gocalphad/internal/server"
	"github.com/njchilds90/gocalphad/internal/telemetry"
	"github.com/njchilds90/gocalphad/model"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve model construction over HTTP",
		Long: `Load the database once and answer model requests over HTTP.

  POST /model   {"components": [...], "phase": "...", "parameters": {...},
                 "format": "string|latex|json", "gradient": bool,
                 "point": {"T": 1000, "Y(LIQUID,0,AL)": 0.5, ...}}
  GET  /phases  phase names
  GET  /metrics Prometheus metrics
  GET  /health  liveness check`,
		Example: `  # Serve a SQLite database and reload it when it changes
  gibbs serve -d alni.db --addr :9000 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openDatabase(ctx)
			if err != nil {
				return err
			}

			if a.cfg.Server.Trace {
				shutdown, err := telemetry.SetupStdoutTracing(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer func() { _ = shutdown(context.Background()) }()
			}

			s := server.New(db, a.log, a.cfg.Model.SymbolDepth, a.cfg.Model.Parallel)
			if a.cfg.Server.Watch {
				path := a.cfg.Database
				err := s.Watch(ctx, path, func(ctx context.Context) (server.Database, error) {
					db, err := loadDatabase(ctx, path)
					if err != nil {
						return nil, err
					}
					return db, nil
				})
				if err != nil {
					return err
				}
			}
			srv := s.HTTPServer(a.cfg.Server.Addr)

			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", srv.Addr).Bool("watch", a.cfg.Server.Watch).Msg("listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				a.log.Info().Msg("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Bool("watch", false, "reload the database when its file changes")
	cmd.Flags().Bool("trace", false, "print a trace span for every model build to stderr")
	cmd.Flags().Bool("parallel", false, "build independent energy contributions concurrently")
	cmd.Flags().Int("symbol-depth", model.DefaultSymbolDepth, "levels of nested symbol references to resolve")

	return cmd
}
