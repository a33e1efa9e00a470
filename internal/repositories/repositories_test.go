package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/topsync/internal/shared"
)

type failingStore struct{}

func (failingStore) Upload(context.Context, string, string, []byte, string) error {
	return errors.New("connection reset")
}

func TestSnapshotExporter(t *testing.T) {
	ctx := context.Background()

	t.Run("Export", func(t *testing.T) {
		t.Run("round trip", func(t *testing.T) {
			store := NewMemoryStore()
			exporter := NewSnapshotExporter(store, shared.NewLogger(io.Discard))

			payload := []map[string]any{
				{"artist_name": "A", "artist_url": "u", "artist_followers": float64(5), "artist_img": "i"},
				{"artist_name": "B", "artist_url": "v", "artist_followers": float64(0), "artist_img": "j"},
			}

			if err := exporter.Export(ctx, payload, TopBlobName("artists", "long_term")); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			blob, ok := store.Get(Container, "top_artists_long_term.json")
			if !ok {
				t.Fatalf("blob not written, have %v", store.Names())
			}
			if blob.ContentType != "application/json" {
				t.Errorf("content type = %s, want application/json", blob.ContentType)
			}

			var got []map[string]any
			if err := json.Unmarshal(blob.Data, &got); err != nil {
				t.Fatalf("written payload is not JSON: %v", err)
			}
			if len(got) != 2 || got[0]["artist_name"] != "A" || got[1]["artist_followers"] != float64(0) {
				t.Errorf("round trip mismatch: %v", got)
			}
		})

		t.Run("deterministic indented bytes", func(t *testing.T) {
			store := NewMemoryStore()
			exporter := NewSnapshotExporter(store, shared.NewLogger(io.Discard))

			payload := PlaylistSnapshot{PlaylistID: "abc123"}
			if err := exporter.Export(ctx, payload, PlaylistBlobName); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			blob, _ := store.Get(Container, PlaylistBlobName)
			want := "{\n  \"playlist_id\": \"abc123\"\n}"
			if string(blob.Data) != want {
				t.Errorf("payload = %q, want %q", blob.Data, want)
			}
		})

		t.Run("blind overwrite", func(t *testing.T) {
			store := NewMemoryStore()
			exporter := NewSnapshotExporter(store, shared.NewLogger(io.Discard))

			_ = exporter.Export(ctx, PlaylistSnapshot{PlaylistID: "first"}, PlaylistBlobName)
			if err := exporter.Export(ctx, PlaylistSnapshot{PlaylistID: "second"}, PlaylistBlobName); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			blob, _ := store.Get(Container, PlaylistBlobName)
			if !strings.Contains(string(blob.Data), "second") {
				t.Errorf("expected overwritten payload, got %s", blob.Data)
			}
			if n := len(store.Names()); n != 1 {
				t.Errorf("expected 1 blob, got %d", n)
			}
		})

		t.Run("store failure", func(t *testing.T) {
			exporter := NewSnapshotExporter(failingStore{}, shared.NewLogger(io.Discard))

			err := exporter.Export(ctx, PlaylistSnapshot{}, PlaylistBlobName)
			if !errors.Is(err, shared.ErrStorage) {
				t.Errorf("expected ErrStorage, got %v", err)
			}
		})

		t.Run("unserializable payload", func(t *testing.T) {
			exporter := NewSnapshotExporter(NewMemoryStore(), shared.NewLogger(io.Discard))

			err := exporter.Export(ctx, map[string]any{"ch": make(chan int)}, PlaylistBlobName)
			if !errors.Is(err, shared.ErrStorage) {
				t.Errorf("expected ErrStorage, got %v", err)
			}
		})

		t.Run("empty blob name", func(t *testing.T) {
			exporter := NewSnapshotExporter(NewMemoryStore(), shared.NewLogger(io.Discard))

			if err := exporter.Export(ctx, PlaylistSnapshot{}, " "); !errors.Is(err, shared.ErrStorage) {
				t.Errorf("expected ErrStorage, got %v", err)
			}
		})
	})
}

func TestTopBlobName(t *testing.T) {
	if got := TopBlobName("tracks", "medium_term"); got != "top_tracks_medium_term.json" {
		t.Errorf("TopBlobName() = %s", got)
	}
}

func TestNewStore(t *testing.T) {
	t.Run("memory driver", func(t *testing.T) {
		store, err := NewStore(shared.StorageConfig{Driver: "memory"})
		if err != nil {
			t.Fatalf("NewStore() error = %v", err)
		}
		if _, ok := store.(*MemoryStore); !ok {
			t.Errorf("expected *MemoryStore, got %T", store)
		}
	})

	t.Run("azure without connection string", func(t *testing.T) {
		store, err := NewStore(shared.StorageConfig{Driver: "azure"})
		if err != nil {
			t.Fatalf("NewStore() error = %v", err)
		}

		exporter := NewSnapshotExporter(store, shared.NewLogger(io.Discard))
		err = exporter.Export(context.Background(), PlaylistSnapshot{}, PlaylistBlobName)
		if !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		if _, err := NewStore(shared.StorageConfig{Driver: "s3"}); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("malformed connection string", func(t *testing.T) {
		if _, err := NewStore(shared.StorageConfig{Driver: "azure", ConnectionString: "not-a-connection-string"}); err == nil {
			t.Error("expected error for malformed connection string")
		}
	})
}

func TestAzureStore(t *testing.T) {
	var (
		hits        atomic.Int32
		path        atomic.Value
		contentType atomic.Value
		body        atomic.Value
	)

	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		path.Store(r.URL.Path)
		contentType.Store(r.Header.Get("x-ms-blob-content-type"))

		data, _ := io.ReadAll(r.Body)
		body.Store(string(data))

		w.WriteHeader(http.StatusCreated)
	}))
	defer svr.Close()

	conn := "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=c2VjcmV0LWtleQ==;BlobEndpoint=" +
		svr.URL + "/devstoreaccount1;"

	store, err := NewAzureStore(conn)
	if err != nil {
		t.Fatalf("NewAzureStore() error = %v", err)
	}

	exporter := NewSnapshotExporter(store, shared.NewLogger(io.Discard))
	if err := exporter.Export(context.Background(), PlaylistSnapshot{PlaylistID: "p1"}, PlaylistBlobName); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if hits.Load() != 1 {
		t.Errorf("expected 1 upload request, got %d", hits.Load())
	}
	if got := path.Load().(string); !strings.HasSuffix(got, "/spotify/playlist_id.json") {
		t.Errorf("upload path = %s", got)
	}
	if got := contentType.Load().(string); got != "application/json" {
		t.Errorf("blob content type = %s", got)
	}
	if got := body.Load().(string); got != "{\n  \"playlist_id\": \"p1\"\n}" {
		t.Errorf("uploaded body = %q", got)
	}
}
