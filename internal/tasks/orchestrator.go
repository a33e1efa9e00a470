package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/topsync/internal/repositories"
	"github.com/desertthunder/topsync/internal/services"
	"github.com/desertthunder/topsync/internal/shared"
)

const (
	GeneratedPlaylistName        = "My Top Tracks Playlist"
	GeneratedPlaylistDescription = "Generated playlist based on your top tracks"
)

// CallbackResult is returned to the caller once the token exchange and any synchronous work succeed.
type CallbackResult struct {
	AccessToken     string `json:"access_token"`
	ActionPerformed string `json:"action_performed"`
}

// Submitter accepts background jobs. Implemented by [Pool].
type Submitter interface {
	Submit(job Job) bool
}

// Orchestrator completes the authorization-code flow and dispatches the requested action.
type Orchestrator struct {
	auth      services.TokenExchanger
	collector TopCollector
	engine    *PlaylistEngine
	exporter  Exporter
	snapshots *SnapshotRunner
	pool      Submitter
	userID    string
	logger    *log.Logger
}

// OrchestratorDeps groups the collaborators of an [Orchestrator].
type OrchestratorDeps struct {
	Auth      services.TokenExchanger
	Collector TopCollector
	Engine    *PlaylistEngine
	Exporter  Exporter
	Pool      Submitter
	UserID    string // owner of generated playlists
	Logger    *log.Logger
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Orchestrator{
		auth:      deps.Auth,
		collector: deps.Collector,
		engine:    deps.Engine,
		exporter:  deps.Exporter,
		snapshots: NewSnapshotRunner(deps.Collector, deps.Exporter),
		pool:      deps.Pool,
		userID:    deps.UserID,
		logger:    shared.WithLogger(logger, "component", "callback"),
	}
}

// HandleCallback exchanges code for a token and runs the work named by rawAction.
//
// update-data queues one export per kind and time range and returns without waiting for them. A create-playlist
// action rebuilds the generated playlist synchronously; its failures match [shared.ErrPlaylistCreate].
func (o *Orchestrator) HandleCallback(ctx context.Context, code, rawAction string) (*CallbackResult, error) {
	if code == "" {
		return nil, shared.ErrAuthFailed
	}
	if rawAction == "" {
		return nil, shared.ErrActionMissing
	}

	token, err := o.auth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	action := ParseAction(rawAction)

	if action.UpdateData {
		o.queueExports(token.AccessToken)
	}

	if action.CreatePlaylist != nil {
		if err := o.createPlaylist(ctx, token.AccessToken, *action.CreatePlaylist); err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrPlaylistCreate, err)
		}
	}

	return &CallbackResult{AccessToken: token.AccessToken, ActionPerformed: action.Raw}, nil
}

func (o *Orchestrator) queueExports(accessToken string) {
	for _, job := range o.snapshots.Jobs(accessToken) {
		o.pool.Submit(job)
	}
}

func (o *Orchestrator) createPlaylist(ctx context.Context, accessToken string, tr services.TimeRange) error {
	items, err := o.collector.CollectTop(ctx, string(services.KindTracks), string(tr), SnapshotLimit, accessToken)
	if err != nil {
		return err
	}

	result, err := o.engine.Upsert(ctx, UpsertRequest{
		AccessToken:  accessToken,
		PlaylistName: GeneratedPlaylistName,
		UserID:       o.userID,
		Description:  GeneratedPlaylistDescription,
		TrackURIs:    services.TrackURIs(items),
	}, nil)
	if err != nil {
		return err
	}

	o.logger.Info("playlist generated", "id", result.PlaylistID, "time_range", tr, "tracks", len(items))

	return o.exporter.Export(ctx, repositories.PlaylistSnapshot{PlaylistID: result.PlaylistID}, repositories.PlaylistBlobName)
}
