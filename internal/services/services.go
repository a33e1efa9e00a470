// package services defines interface Service for interacting with the Spotify Web API
package services

import (
	"context"

	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
)

// Service defines the remote music API calls the playlist and top-items workflows depend on.
//
// Every implementation is bound to a single access token; see [Connector].
type Service interface {
	// UserPlaylists returns a single page (at most limit items) of the user's playlists.
	// Null slots in the remote page are dropped.
	UserPlaylists(ctx context.Context, userID string, limit int) ([]PlaylistDescriptor, error)

	// UnfollowPlaylist removes the caller's association with a playlist.
	UnfollowPlaylist(ctx context.Context, playlistID string) error

	// CreatePlaylist creates an empty playlist for userID and returns its id.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (string, error)

	// ReplacePlaylistItems sets the playlist's items to uris in a single call, preserving order.
	ReplacePlaylistItems(ctx context.Context, playlistID string, uris []string) error

	// TopTracks returns the user's top tracks for a time range in ranking order.
	TopTracks(ctx context.Context, timeRange TimeRange, limit int) ([]spotify.FullTrack, error)

	// TopArtists returns the user's top artists for a time range in ranking order.
	TopArtists(ctx context.Context, timeRange TimeRange, limit int) ([]spotify.FullArtist, error)
}

// Connector binds a [Service] to a caller-supplied access token.
type Connector interface {
	Connect(ctx context.Context, accessToken string) Service
}

// PlaylistDescriptor is the minimal view of an existing playlist used for name matching.
type PlaylistDescriptor struct {
	ID   string `json:"playlist_id"`
	Name string `json:"playlist_name"`
}

// Kind selects which top items to fetch.
type Kind string

const (
	KindTracks  Kind = "tracks"
	KindArtists Kind = "artists"
)

// Kinds lists every supported [Kind] in export order.
var Kinds = []Kind{KindTracks, KindArtists}

// TimeRange is one of the sampling windows used by the remote top-items ranking.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// TimeRanges lists every supported [TimeRange] from shortest to longest.
var TimeRanges = []TimeRange{ShortTerm, MediumTerm, LongTerm}

// ParseKind validates a raw kind string.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindTracks, KindArtists:
		return k, true
	default:
		return "", false
	}
}

// ParseTimeRange validates a raw time range string.
func ParseTimeRange(s string) (TimeRange, bool) {
	switch tr := TimeRange(s); tr {
	case ShortTerm, MediumTerm, LongTerm:
		return tr, true
	default:
		return "", false
	}
}

// TopItem is a normalized top track or top artist.
type TopItem interface {
	topItem()
}

// TopTrack is the normalized shape of a top track. Names and images come from the containing album.
type TopTrack struct {
	SongName   string `json:"song_name"`
	ArtistName string `json:"artist_name"`
	SongURL    string `json:"song_url"`
	SongURI    string `json:"song_uri"`
	SongImg    string `json:"song_img"`
}

// TopArtist is the normalized shape of a top artist.
type TopArtist struct {
	ArtistName      string `json:"artist_name"`
	ArtistURL       string `json:"artist_url"`
	ArtistFollowers int    `json:"artist_followers"`
	ArtistImg       string `json:"artist_img"`
}

func (TopTrack) topItem()  {}
func (TopArtist) topItem() {}

// TrackURIs returns the song URIs of the tracks among items, in order.
func TrackURIs(items []TopItem) []string {
	return lo.FilterMap(items, func(item TopItem, _ int) (string, bool) {
		t, ok := item.(TopTrack)
		return t.SongURI, ok
	})
}
