package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/topsync/internal/formatter"
	"github.com/desertthunder/topsync/internal/repositories"
	"github.com/desertthunder/topsync/internal/services"
	"github.com/desertthunder/topsync/internal/shared"
	"github.com/desertthunder/topsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

func requireToken(cmd *cli.Command) (string, error) {
	token := cmd.String("token")
	if token == "" {
		return "", fmt.Errorf("%w: --token or SPOTIFY_ACCESS_TOKEN is required", shared.ErrMissingArgument)
	}
	return token, nil
}

// Top prints the user's top tracks or artists in the requested format.
func (r *Runner) Top(ctx context.Context, cmd *cli.Command) error {
	token, err := requireToken(cmd)
	if err != nil {
		return err
	}

	kind := cmd.String("type")
	timeRange := cmd.String("range")
	limit := cmd.Int("limit")
	format := formatter.Format(cmd.String("format"))
	outputFile := cmd.String("output")

	r.logger.Debug("collecting top items", "type", kind, "range", timeRange, "limit", limit)

	items, err := r.collector.CollectTop(ctx, kind, timeRange, limit, token)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Top %s (%s)", kind, timeRange)

	if outputFile == "" && (format == formatter.FormatText || format == "") {
		r.writePlain("%s\n", styles.Title(title))
		for i, item := range items {
			r.writePlain("%2d. %s\n", i+1, formatter.Line(item))
		}
		return nil
	}

	data, err := formatter.Render(format, title, items)
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		r.logger.Info("top items written", "file", outputFile, "items", len(items))
		return r.writePlain("%s\n", styles.OK(fmt.Sprintf("%d items written to %s", len(items), outputFile)))
	}

	return r.writePlain("%s", data)
}

// Playlist collects the user's top tracks and replaces the named playlist with them.
func (r *Runner) Playlist(ctx context.Context, cmd *cli.Command) error {
	token, err := requireToken(cmd)
	if err != nil {
		return err
	}

	timeRange := cmd.String("range")
	userID := cmp.Or(cmd.String("user"), r.config.Spotify.UserID)

	if userID == "" {
		return fmt.Errorf("%w: --user or spotify.user_id is required", shared.ErrMissingArgument)
	}

	items, err := r.collector.CollectTop(ctx, string(services.KindTracks), timeRange, tasks.SnapshotLimit, token)
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := r.printProgress(progressCh)

	result, err := r.engine.Upsert(ctx, tasks.UpsertRequest{
		AccessToken:  token,
		PlaylistName: cmd.String("name"),
		UserID:       userID,
		Description:  cmd.String("description"),
		Public:       cmd.Bool("public"),
		TrackURIs:    services.TrackURIs(items),
	}, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("%s", styles.OK(result.Message))
	r.writePlain("Tracks: %d (%s)\n", len(items), timeRange)
	return nil
}

// Snapshot exports every kind and time range to blob storage and reports the outcome of each.
func (r *Runner) Snapshot(ctx context.Context, cmd *cli.Command) error {
	token, err := requireToken(cmd)
	if err != nil {
		return err
	}

	store, err := r.snapshotStore()
	if err != nil {
		return err
	}

	workers := cmp.Or(cmd.Int("workers"), r.config.Workers.Count)
	runner := tasks.NewSnapshotRunner(r.collector, repositories.NewSnapshotExporter(store, r.logger))

	progressCh := make(chan tasks.ProgressUpdate, len(tasks.AllTopSnapshots()))
	done := r.printProgress(progressCh)

	results := runner.ExportAll(ctx, token, workers, progressCh)
	close(progressCh)
	<-done

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}

	r.writePlain("\n")
	r.writePlainHeader("Snapshot Complete")
	r.writePlain("Exported: %d/%d\n", len(results)-len(errs), len(results))

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d exports failed: %w", len(errs), len(results), errors.Join(errs...))
	}
	return nil
}
