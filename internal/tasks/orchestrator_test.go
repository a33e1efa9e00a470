package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/topsync/internal/repositories"
	"github.com/desertthunder/topsync/internal/services"
	"github.com/desertthunder/topsync/internal/shared"
	tu "github.com/desertthunder/topsync/internal/testing"
	"github.com/zmb3/spotify/v2"
)

// recordingSubmitter keeps jobs instead of running them.
type recordingSubmitter struct {
	mu   sync.Mutex
	jobs []Job
}

func (s *recordingSubmitter) Submit(job Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return true
}

type orchestratorFixture struct {
	svc       *tu.MockService
	exchanger *tu.MockExchanger
	store     *repositories.MemoryStore
	submitter *recordingSubmitter
	orch      *Orchestrator
}

func newOrchestratorFixture(t *testing.T, userID string) *orchestratorFixture {
	t.Helper()

	svc := &tu.MockService{
		Tracks:  []spotify.FullTrack{tu.Track(1), tu.Track(2)},
		Artists: []spotify.FullArtist{tu.Artist(1)},
		NewID:   "generated",
	}
	connector := tu.NewMockConnector(svc)
	store := repositories.NewMemoryStore()
	logger := shared.NewLogger(io.Discard)

	f := &orchestratorFixture{
		svc:       svc,
		exchanger: &tu.MockExchanger{Token: "access"},
		store:     store,
		submitter: &recordingSubmitter{},
	}
	f.orch = NewOrchestrator(OrchestratorDeps{
		Auth:      f.exchanger,
		Collector: services.NewCollector(connector),
		Engine:    NewPlaylistEngine(connector),
		Exporter:  repositories.NewSnapshotExporter(store, logger),
		Pool:      f.submitter,
		UserID:    userID,
		Logger:    logger,
	})
	return f
}

func TestOrchestrator_HandleCallback_Errors(t *testing.T) {
	t.Run("missing code", func(t *testing.T) {
		f := newOrchestratorFixture(t, "user-1")

		_, err := f.orch.HandleCallback(context.Background(), "", "update-data")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if len(f.exchanger.Codes) != 0 {
			t.Error("exchange should not run without a code")
		}
	})

	t.Run("missing action", func(t *testing.T) {
		f := newOrchestratorFixture(t, "user-1")

		_, err := f.orch.HandleCallback(context.Background(), "code", "")
		if !errors.Is(err, shared.ErrActionMissing) {
			t.Errorf("expected ErrActionMissing, got %v", err)
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		f := newOrchestratorFixture(t, "user-1")
		f.exchanger.Err = shared.ErrTokenExchange

		_, err := f.orch.HandleCallback(context.Background(), "code", "update-data")
		if !errors.Is(err, shared.ErrTokenExchange) {
			t.Errorf("expected ErrTokenExchange, got %v", err)
		}
		if len(f.submitter.jobs) != 0 {
			t.Error("no exports should be queued after a failed exchange")
		}
	})
}

func TestOrchestrator_HandleCallback_UpdateData(t *testing.T) {
	f := newOrchestratorFixture(t, "user-1")

	result, err := f.orch.HandleCallback(context.Background(), "code", "update-data")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}
	if result.AccessToken != "access" || result.ActionPerformed != "update-data" {
		t.Errorf("unexpected result %+v", result)
	}

	if n := len(f.svc.Calls()); n != 0 {
		t.Errorf("exports should not run before the response, saw %d calls", n)
	}

	names := make([]string, 0, len(f.submitter.jobs))
	for _, job := range f.submitter.jobs {
		names = append(names, job.Name)
	}
	slices.Sort(names)

	want := []string{
		"top_artists_long_term.json", "top_artists_medium_term.json", "top_artists_short_term.json",
		"top_tracks_long_term.json", "top_tracks_medium_term.json", "top_tracks_short_term.json",
	}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("queued jobs = %v, want %v", names, want)
	}

	for _, job := range f.submitter.jobs {
		if err := job.Run(context.Background()); err != nil {
			t.Errorf("job %s error = %v", job.Name, err)
		}
	}

	if stored := f.store.Names(); len(stored) != 6 {
		t.Errorf("expected 6 snapshots, got %v", stored)
	}

	blob, ok := f.store.Get(repositories.Container, "top_tracks_short_term.json")
	if !ok {
		t.Fatal("missing top_tracks_short_term.json")
	}
	var items []map[string]any
	if err := json.Unmarshal(blob.Data, &items); err != nil {
		t.Fatalf("snapshot is not JSON: %v", err)
	}
	if len(items) != 2 || items[0]["song_uri"] != "spotify:track:1" {
		t.Errorf("unexpected snapshot %v", items)
	}
}

func TestOrchestrator_HandleCallback_CreatePlaylist(t *testing.T) {
	t.Run("generates playlist and records id", func(t *testing.T) {
		f := newOrchestratorFixture(t, "user-1")

		result, err := f.orch.HandleCallback(context.Background(), "code", "create-playlist-long_term")
		if err != nil {
			t.Fatalf("HandleCallback() error = %v", err)
		}
		if result.ActionPerformed != "create-playlist-long_term" {
			t.Errorf("ActionPerformed = %s", result.ActionPerformed)
		}
		if len(f.submitter.jobs) != 0 {
			t.Error("create-playlist should not queue exports")
		}

		want := []string{"TopTracks", "UserPlaylists", "CreatePlaylist", "ReplacePlaylistItems"}
		if got := f.svc.Methods(); !reflect.DeepEqual(got, want) {
			t.Fatalf("calls = %v, want %v", got, want)
		}

		calls := f.svc.Calls()
		if got := calls[0].Args; got[0] != services.LongTerm || got[1] != 50 {
			t.Errorf("TopTracks args = %v", got)
		}
		if got := calls[2].Args; !reflect.DeepEqual(got, []any{"user-1", GeneratedPlaylistName, GeneratedPlaylistDescription, false}) {
			t.Errorf("CreatePlaylist args = %v", got)
		}
		if got := calls[3].Args[1]; !reflect.DeepEqual(got, []string{"spotify:track:1", "spotify:track:2"}) {
			t.Errorf("track uris = %v", got)
		}

		blob, ok := f.store.Get(repositories.Container, repositories.PlaylistBlobName)
		if !ok {
			t.Fatal("playlist_id.json not written")
		}
		if string(blob.Data) != "{\n  \"playlist_id\": \"generated\"\n}" {
			t.Errorf("playlist snapshot = %q", blob.Data)
		}
	})

	t.Run("upsert failure", func(t *testing.T) {
		f := newOrchestratorFixture(t, "user-1")
		f.svc.Errs = map[string]error{"CreatePlaylist": errors.New("forbidden")}

		_, err := f.orch.HandleCallback(context.Background(), "code", "create-playlist-short_term")
		if !errors.Is(err, shared.ErrPlaylistCreate) || !errors.Is(err, shared.ErrRemoteAPI) {
			t.Errorf("expected ErrPlaylistCreate wrapping ErrRemoteAPI, got %v", err)
		}
		if _, ok := f.store.Get(repositories.Container, repositories.PlaylistBlobName); ok {
			t.Error("no playlist id should be recorded after a failure")
		}
	})

	t.Run("invalid time range", func(t *testing.T) {
		f := newOrchestratorFixture(t, "user-1")

		_, err := f.orch.HandleCallback(context.Background(), "code", "create-playlist-forever")
		if !errors.Is(err, shared.ErrPlaylistCreate) {
			t.Errorf("expected ErrPlaylistCreate, got %v", err)
		}
		if n := len(f.svc.Calls()); n != 0 {
			t.Errorf("expected no remote calls, got %d", n)
		}
	})

	t.Run("snapshot failure", func(t *testing.T) {
		f := newOrchestratorFixture(t, "user-1")
		f.orch.exporter = repositories.NewSnapshotExporter(tu.FailingStore{}, shared.NewLogger(io.Discard))

		_, err := f.orch.HandleCallback(context.Background(), "code", "create-playlist-short_term")
		if !errors.Is(err, shared.ErrPlaylistCreate) || !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrPlaylistCreate wrapping ErrStorage, got %v", err)
		}
		if f.svc.Count("ReplacePlaylistItems") != 1 {
			t.Error("playlist should be populated before the id is recorded")
		}
	})

	t.Run("missing default user", func(t *testing.T) {
		f := newOrchestratorFixture(t, "")

		_, err := f.orch.HandleCallback(context.Background(), "code", "create-playlist-short_term")
		if !errors.Is(err, shared.ErrPlaylistCreate) || !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrPlaylistCreate wrapping a validation error, got %v", err)
		}
	})
}

func TestOrchestrator_HandleCallback_UnknownAction(t *testing.T) {
	f := newOrchestratorFixture(t, "user-1")

	result, err := f.orch.HandleCallback(context.Background(), "code", "dance")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}
	if result.ActionPerformed != "dance" {
		t.Errorf("ActionPerformed = %s", result.ActionPerformed)
	}
	if len(f.submitter.jobs) != 0 || len(f.svc.Calls()) != 0 {
		t.Error("unknown actions should not dispatch any work")
	}
}

func TestSnapshotRunner_ExportAll(t *testing.T) {
	t.Run("writes every snapshot", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks:  []spotify.FullTrack{tu.Track(1)},
			Artists: []spotify.FullArtist{tu.Artist(1), tu.Artist(2)},
		}
		store := repositories.NewMemoryStore()
		runner := NewSnapshotRunner(
			services.NewCollector(tu.NewMockConnector(svc)),
			repositories.NewSnapshotExporter(store, shared.NewLogger(io.Discard)),
		)

		progress := make(chan ProgressUpdate, 10)
		results := runner.ExportAll(context.Background(), "token", 3, progress)
		close(progress)

		if len(results) != 6 {
			t.Fatalf("expected 6 results, got %d", len(results))
		}
		for i, s := range AllTopSnapshots() {
			r := results[i]
			if r.Snapshot != s || r.Err != nil {
				t.Errorf("result %d = %+v", i, r)
			}
		}
		if len(store.Names()) != 6 {
			t.Errorf("stored %v", store.Names())
		}

		var updates int
		for range progress {
			updates++
		}
		if updates != 6 {
			t.Errorf("expected 6 progress updates, got %d", updates)
		}
	})

	t.Run("failures are isolated", func(t *testing.T) {
		svc := &tu.MockService{
			Tracks: []spotify.FullTrack{tu.Track(1)},
			Errs:   map[string]error{"TopArtists": errors.New("rate limited")},
		}
		store := repositories.NewMemoryStore()
		runner := NewSnapshotRunner(
			services.NewCollector(tu.NewMockConnector(svc)),
			repositories.NewSnapshotExporter(store, shared.NewLogger(io.Discard)),
		)

		results := runner.ExportAll(context.Background(), "token", 2, nil)

		var failed int
		for _, r := range results {
			if r.Err != nil {
				failed++
				if r.Snapshot.Kind != services.KindArtists {
					t.Errorf("unexpected failure for %s", r.Snapshot.BlobName())
				}
			}
		}
		if failed != 3 {
			t.Errorf("expected 3 failures, got %d", failed)
		}
		if len(store.Names()) != 3 {
			t.Errorf("expected 3 stored snapshots, got %v", store.Names())
		}
	})
}
