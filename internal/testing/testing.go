// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/topsync/internal/services"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// Call records one invocation of a [MockService] method.
type Call struct {
	Method string
	Args   []any
}

// MockService is a test double for [services.Service] that records every call.
//
// Errors are keyed by method name, e.g. Errs["CreatePlaylist"].
type MockService struct {
	Playlists []services.PlaylistDescriptor
	Tracks    []spotify.FullTrack
	Artists   []spotify.FullArtist
	NewID     string
	Errs      map[string]error

	mu    sync.Mutex
	calls []Call
}

func (m *MockService) record(method string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Method: method, Args: args})
	return m.Errs[method]
}

// Calls returns a copy of the recorded calls in order.
func (m *MockService) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// Methods returns the names of the recorded calls in order.
func (m *MockService) Methods() []string {
	calls := m.Calls()
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Method
	}
	return names
}

// Count returns how many times method was called.
func (m *MockService) Count(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *MockService) UserPlaylists(ctx context.Context, userID string, limit int) ([]services.PlaylistDescriptor, error) {
	if err := m.record("UserPlaylists", userID, limit); err != nil {
		return nil, err
	}
	return m.Playlists, nil
}

func (m *MockService) UnfollowPlaylist(ctx context.Context, playlistID string) error {
	return m.record("UnfollowPlaylist", playlistID)
}

func (m *MockService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (string, error) {
	if err := m.record("CreatePlaylist", userID, name, description, public); err != nil {
		return "", err
	}
	if m.NewID == "" {
		return "new-playlist", nil
	}
	return m.NewID, nil
}

func (m *MockService) ReplacePlaylistItems(ctx context.Context, playlistID string, uris []string) error {
	return m.record("ReplacePlaylistItems", playlistID, slices.Clone(uris))
}

func (m *MockService) TopTracks(ctx context.Context, timeRange services.TimeRange, limit int) ([]spotify.FullTrack, error) {
	if err := m.record("TopTracks", timeRange, limit); err != nil {
		return nil, err
	}
	return m.Tracks, nil
}

func (m *MockService) TopArtists(ctx context.Context, timeRange services.TimeRange, limit int) ([]spotify.FullArtist, error) {
	if err := m.record("TopArtists", timeRange, limit); err != nil {
		return nil, err
	}
	return m.Artists, nil
}

// MockConnector hands out the same [MockService] for every token and remembers the tokens it saw.
type MockConnector struct {
	Service *MockService

	mu     sync.Mutex
	tokens []string
}

func NewMockConnector(svc *MockService) *MockConnector {
	return &MockConnector{Service: svc}
}

func (c *MockConnector) Connect(_ context.Context, accessToken string) services.Service {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tokens = append(c.tokens, accessToken)
	return c.Service
}

// Tokens returns the access tokens passed to Connect.
func (c *MockConnector) Tokens() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.tokens)
}

// MockExchanger implements services.TokenExchanger with a fixed outcome.
type MockExchanger struct {
	Token string
	Err   error
	Codes []string
}

func (e *MockExchanger) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	e.Codes = append(e.Codes, code)
	if e.Err != nil {
		return nil, e.Err
	}
	return &oauth2.Token{AccessToken: e.Token, TokenType: "Bearer"}, nil
}

// FailingStore rejects every upload.
type FailingStore struct{}

func (FailingStore) Upload(context.Context, string, string, []byte, string) error {
	return errors.New("storage unavailable")
}

// Track builds a top track fixture with one album image and artist.
func Track(n int) spotify.FullTrack {
	var t spotify.FullTrack
	t.URI = spotify.URI(fmt.Sprintf("spotify:track:%d", n))
	t.Album.Name = fmt.Sprintf("Album %d", n)
	t.Album.Artists = []spotify.SimpleArtist{{Name: fmt.Sprintf("Artist %d", n)}}
	t.Album.ExternalURLs = map[string]string{"spotify": fmt.Sprintf("https://open.spotify.com/album/%d", n)}
	t.Album.Images = []spotify.Image{{URL: fmt.Sprintf("https://i.scdn.co/image/%d", n)}}
	return t
}

// Artist builds a top artist fixture with one image.
func Artist(n int) spotify.FullArtist {
	var a spotify.FullArtist
	a.Name = fmt.Sprintf("Artist %d", n)
	a.ExternalURLs = map[string]string{"spotify": fmt.Sprintf("https://open.spotify.com/artist/%d", n)}
	a.Followers.Count = spotify.Numeric(n * 100)
	a.Images = []spotify.Image{{URL: fmt.Sprintf("https://i.scdn.co/image/a%d", n)}}
	return a
}

// MockRoundTripper answers every request with a fixed response or error.
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// FWriter is an io.Writer that always fails.
type FWriter struct{}

func (FWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}
