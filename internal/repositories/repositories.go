// package repositories writes JSON snapshots to blob storage.
package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/topsync/internal/shared"
)

const (
	// Container is the logical container every snapshot is written to.
	Container = "spotify"
	// ContentTypeJSON is stored as the blob content type of every snapshot.
	ContentTypeJSON = "application/json"
	// PlaylistBlobName holds the id of the most recently generated playlist.
	PlaylistBlobName = "playlist_id.json"
)

// BlobStore writes a named blob into a container, replacing any existing blob with the same name.
type BlobStore interface {
	Upload(ctx context.Context, container, name string, data []byte, contentType string) error
}

// PlaylistSnapshot is the payload written to [PlaylistBlobName].
type PlaylistSnapshot struct {
	PlaylistID string `json:"playlist_id"`
}

// TopBlobName returns the snapshot name for a top items export, e.g. top_tracks_short_term.json.
func TopBlobName(kind, timeRange string) string {
	return fmt.Sprintf("top_%s_%s.json", kind, timeRange)
}

// SnapshotExporter serializes payloads and writes them to a [BlobStore].
type SnapshotExporter struct {
	store  BlobStore
	logger *log.Logger
}

// NewSnapshotExporter creates an exporter backed by store.
func NewSnapshotExporter(store BlobStore, logger *log.Logger) *SnapshotExporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SnapshotExporter{store: store, logger: shared.WithLogger(logger, "component", "exporter")}
}

// Export writes payload as two-space indented JSON to blobName in [Container].
//
// Existing blobs are overwritten without a version check. Every failure matches [shared.ErrStorage].
func (e *SnapshotExporter) Export(ctx context.Context, payload any, blobName string) error {
	if strings.TrimSpace(blobName) == "" {
		return fmt.Errorf("%w: blob name required", shared.ErrStorage)
	}

	data, err := shared.MarshalJSON(payload, true)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	if err := e.store.Upload(ctx, Container, blobName, data, ContentTypeJSON); err != nil {
		return fmt.Errorf("%w: upload %s/%s: %v", shared.ErrStorage, Container, blobName, err)
	}

	e.logger.Debug("snapshot exported", "blob", blobName, "bytes", len(data))
	return nil
}

// NewStore selects a [BlobStore] from the storage configuration.
//
// The memory driver keeps blobs in process. The azure driver requires a connection string; without one the returned
// store fails every write so that only export flows are degraded.
func NewStore(cfg shared.StorageConfig) (BlobStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		return NewMemoryStore(), nil
	case "", "azure":
		if cfg.ConnectionString == "" {
			return unconfiguredStore{}, nil
		}
		return NewAzureStore(cfg.ConnectionString)
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

// unconfiguredStore stands in when no storage credentials are available.
type unconfiguredStore struct{}

func (unconfiguredStore) Upload(context.Context, string, string, []byte, string) error {
	return fmt.Errorf("%w: no storage connection string configured", shared.ErrMissingCredentials)
}
