// package tasks implements the playlist and snapshot workflows that run on top of the Spotify service.
//
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/topsync/internal/services"
	"github.com/desertthunder/topsync/internal/shared"
)

// TopCollector fetches normalized top items. Implemented by [services.Collector].
type TopCollector interface {
	CollectTop(ctx context.Context, kind, timeRange string, limit int, accessToken string) ([]services.TopItem, error)
}

// Exporter writes a JSON snapshot. Implemented by repositories.SnapshotExporter.
type Exporter interface {
	Export(ctx context.Context, payload any, blobName string) error
}

// PlaylistEngine runs playlist mutations against the service bound to each request's token.
type PlaylistEngine struct {
	connector services.Connector
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided connector.
func NewPlaylistEngine(connector services.Connector) *PlaylistEngine {
	return &PlaylistEngine{connector: connector}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}

// remoteErr makes sure err matches [shared.ErrRemoteAPI] without wrapping it twice.
func remoteErr(op string, err error) error {
	if errors.Is(err, shared.ErrRemoteAPI) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrRemoteAPI, op, err)
}
