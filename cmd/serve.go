package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/topsync/internal/repositories"
	"github.com/desertthunder/topsync/internal/server"
	"github.com/desertthunder/topsync/internal/shared"
	"github.com/desertthunder/topsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Serve wires the service routes and runs the HTTP server until SIGINT or SIGTERM.
//
// Background exports queued by the callback are drained before returning.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if port := cmd.Int("port"); port > 0 {
		r.config.Server.Port = port
	}

	store, err := r.snapshotStore()
	if err != nil {
		return err
	}

	if r.config.Spotify.UserID == "" {
		r.logger.Warn("spotify user id not set, callback playlist creation will fail")
	}

	pool := tasks.NewPool(r.config.Workers, r.logger)
	pool.Start()
	defer pool.Stop()

	exporter := repositories.NewSnapshotExporter(store, r.logger)

	handler := server.NewRouter(server.Deps{
		Name: r.config.Server.Name,
		Auth: r.auth,
		Orchestrator: tasks.NewOrchestrator(tasks.OrchestratorDeps{
			Auth:      r.auth,
			Collector: r.collector,
			Engine:    r.engine,
			Exporter:  exporter,
			Pool:      pool,
			UserID:    r.config.Spotify.UserID,
			Logger:    r.logger,
		}),
		Collector: r.collector,
		Engine:    r.engine,
		Logger:    r.logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(r.config.Server.Addr(), handler)
	r.logger.Info("starting server", "addr", srv.Addr, "redirect_uri", r.config.Spotify.RedirectURI())

	if err := server.Serve(ctx, srv, r.logger); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return nil
}
