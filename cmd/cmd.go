// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/topsync/internal/formatter"
	"github.com/desertthunder/topsync/internal/services"
	"github.com/desertthunder/topsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

var styles = formatter.Styles

func tokenFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "token",
		Aliases: []string{"t"},
		Usage:   "Spotify access token (see 'topsync auth')",
		Sources: cli.EnvVars("SPOTIFY_ACCESS_TOKEN"),
	}
}

func rangeFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "range",
		Aliases: []string{"r"},
		Usage:   "Time range: short_term, medium_term or long_term",
		Value:   string(services.ShortTerm),
	}
}

// serveCommand runs the HTTP service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP service",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config and PORT)",
			},
		},
		Action: r.Serve,
	}
}

// authCommand runs a local OAuth round trip
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with Spotify in the browser and print the access token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "scopes",
				Usage: "Space or comma separated scopes (default: all scopes topsync needs)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the full token as JSON",
			},
		},
		Action: r.Auth,
	}
}

// topCommand prints the user's top items
func topCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "top",
		Usage: "Show top tracks or artists",
		Flags: []cli.Flag{
			tokenFlag(),
			&cli.StringFlag{
				Name:  "type",
				Usage: "Item type: tracks or artists",
				Value: string(services.KindTracks),
			},
			rangeFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Number of items (1-50)",
				Value:   services.MaxTopLimit,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, csv or markdown",
				Value:   string(formatter.FormatText),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.Top,
	}
}

// playlistCommand rebuilds a playlist from top tracks
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Replace a playlist with your top tracks",
		Flags: []cli.Flag{
			tokenFlag(),
			rangeFlag(),
			&cli.StringFlag{
				Name:  "name",
				Usage: "Playlist name; an existing playlist with this exact name is replaced",
				Value: tasks.GeneratedPlaylistName,
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Playlist description",
				Value: tasks.GeneratedPlaylistDescription,
			},
			&cli.StringFlag{
				Name:  "user",
				Usage: "Owner user id (default: spotify.user_id from config)",
			},
			&cli.BoolFlag{
				Name:  "public",
				Usage: "Make the playlist public",
			},
		},
		Action: r.Playlist,
	}
}

// snapshotCommand writes every top items snapshot
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Export top tracks and artists for every time range to blob storage",
		Flags: []cli.Flag{
			tokenFlag(),
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent exports (default: workers.count from config)",
			},
		},
		Action: r.Snapshot,
	}
}

// setupCommand writes a starter configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml from the built-in template",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
