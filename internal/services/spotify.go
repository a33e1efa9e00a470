// Spotify Web API implementation of [Service]
//
// Requests go through github.com/zmb3/spotify/v2; the bearer token is attached by an [oauth2] transport.
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/topsync/internal/shared"
	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

const spotifyBaseURL = "https://api.spotify.com/v1/"

// SpotifyConnector creates token-bound [SpotifyService] values. The zero value talks to the public Spotify API.
type SpotifyConnector struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyConnector creates a connector for the API rooted at baseURL using client as the underlying transport.
//
// An empty baseURL selects the public Spotify API and a nil client selects [http.DefaultClient].
func NewSpotifyConnector(baseURL string, client *http.Client) *SpotifyConnector {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &SpotifyConnector{baseURL: baseURL, httpClient: client}
}

// Connect returns a [Service] that authenticates every request with accessToken.
func (c *SpotifyConnector) Connect(ctx context.Context, accessToken string) Service {
	baseURL := c.baseURL
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(ctx, src)

	return &SpotifyService{
		client: spotify.New(httpClient, spotify.WithBaseURL(baseURL)),
	}
}

// SpotifyService implements [Service] for a single access token.
type SpotifyService struct {
	client *spotify.Client
}

// UserPlaylists retrieves one page of a user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, userID string, limit int) ([]PlaylistDescriptor, error) {
	page, err := s.client.GetPlaylistsForUser(ctx, userID, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: list playlists for %s: %v", shared.ErrRemoteAPI, userID, err)
	}

	// Unavailable playlists come back as null entries and decode to zero values.
	present := lo.Filter(page.Playlists, func(p spotify.SimplePlaylist, _ int) bool {
		return p.ID != ""
	})

	return lo.Map(present, func(p spotify.SimplePlaylist, _ int) PlaylistDescriptor {
		return PlaylistDescriptor{ID: string(p.ID), Name: p.Name}
	}), nil
}

// UnfollowPlaylist removes the current user as a follower of the playlist, which is how Spotify deletes playlists.
func (s *SpotifyService) UnfollowPlaylist(ctx context.Context, playlistID string) error {
	if err := s.client.UnfollowPlaylist(ctx, spotify.ID(playlistID)); err != nil {
		return fmt.Errorf("%w: unfollow playlist %s: %v", shared.ErrRemoteAPI, playlistID, err)
	}
	return nil
}

// CreatePlaylist creates a new, non-collaborative playlist.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (string, error) {
	playlist, err := s.client.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return "", fmt.Errorf("%w: create playlist %q: %v", shared.ErrRemoteAPI, name, err)
	}
	return string(playlist.ID), nil
}

// ReplacePlaylistItems overwrites the playlist's items with uris.
func (s *SpotifyService) ReplacePlaylistItems(ctx context.Context, playlistID string, uris []string) error {
	items := make([]spotify.URI, 0, len(uris))
	for _, uri := range uris {
		items = append(items, spotify.URI(uri))
	}

	if _, err := s.client.ReplacePlaylistItems(ctx, spotify.ID(playlistID), items...); err != nil {
		return fmt.Errorf("%w: set items of playlist %s: %v", shared.ErrRemoteAPI, playlistID, err)
	}
	return nil
}

// TopTracks retrieves the current user's top tracks.
func (s *SpotifyService) TopTracks(ctx context.Context, timeRange TimeRange, limit int) ([]spotify.FullTrack, error) {
	page, err := s.client.CurrentUsersTopTracks(ctx, spotify.Timerange(spotify.Range(timeRange)), spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: top tracks (%s): %v", shared.ErrRemoteAPI, timeRange, err)
	}
	return page.Tracks, nil
}

// TopArtists retrieves the current user's top artists.
func (s *SpotifyService) TopArtists(ctx context.Context, timeRange TimeRange, limit int) ([]spotify.FullArtist, error) {
	page, err := s.client.CurrentUsersTopArtists(ctx, spotify.Timerange(spotify.Range(timeRange)), spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: top artists (%s): %v", shared.ErrRemoteAPI, timeRange, err)
	}
	return page.Artists, nil
}
