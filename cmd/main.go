package main

import (
	"cmp"
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/topsync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := cmp.Or(os.Getenv("TOPSYNC_CONFIG"), "config.toml")

	config, err := shared.LoadConfig(configPath)
	switch {
	case errors.Is(err, shared.ErrMissingConfig):
		logger.Debug("config file not found, using defaults", "path", configPath)
		config = shared.DefaultConfig()
	case err != nil:
		logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		config = shared.DefaultConfig()
	}

	if err := config.ApplyEnv(".env"); err != nil {
		logger.Fatalf("environment error: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:    "topsync",
		Usage:   "Export Spotify top items and rebuild playlists from them",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
