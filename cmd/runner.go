package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/topsync/internal/repositories"
	"github.com/desertthunder/topsync/internal/services"
	"github.com/desertthunder/topsync/internal/shared"
	"github.com/desertthunder/topsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// authFlow builds authorize URLs and exchanges codes. Implemented by [services.Authenticator].
type authFlow interface {
	AuthURL(clientID, scopes, state string) string
	services.TokenExchanger
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	connector   services.Connector
	auth        authFlow
	store       repositories.BlobStore
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	openBrowser func(url string) error
	collector   *services.Collector
	engine      *tasks.PlaylistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Nil collaborators are built from Config.
type RunnerOpts struct {
	Config      *shared.Config
	Connector   services.Connector
	Auth        authFlow
	Store       repositories.BlobStore
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	OpenBrowser func(url string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.Connector == nil {
		opts.Connector = services.NewSpotifyConnector(opts.Config.Spotify.APIURL, opts.HTTPClient)
	}
	if opts.Auth == nil {
		opts.Auth = services.NewAuthenticator(opts.Config.Spotify)
	}

	return &Runner{
		config:      opts.Config,
		connector:   opts.Connector,
		auth:        opts.Auth,
		store:       opts.Store,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: opts.OpenBrowser,
		collector:   services.NewCollector(opts.Connector),
		engine:      tasks.NewPlaylistEngine(opts.Connector),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, authCommand, topCommand, playlistCommand, snapshotCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// snapshotStore returns the injected store or opens the one named by the storage config.
func (r *Runner) snapshotStore() (repositories.BlobStore, error) {
	if r.store != nil {
		return r.store, nil
	}

	store, err := repositories.NewStore(r.config.Storage)
	if err != nil {
		return nil, err
	}

	if r.config.Storage.ConnectionString == "" && r.config.Storage.Driver != "memory" {
		r.logger.Warn("blob storage connection string not set, snapshot exports will fail")
	}

	r.store = store
	return store, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// printProgress drains progress until it is closed and signals on the returned channel when done.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", styles.Progress(update.Phase.String(), update.Message))
		}
	}()
	return done
}
