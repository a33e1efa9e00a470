package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/topsync/internal/shared"
	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
)

// MaxTopLimit is the largest page the top items endpoint serves.
const MaxTopLimit = 50

// Collector fetches a user's top tracks or artists and reshapes them into [TopItem] values.
type Collector struct {
	connector Connector
}

// NewCollector creates a [Collector] that binds a [Service] per call through connector.
func NewCollector(connector Connector) *Collector {
	return &Collector{connector: connector}
}

// ValidateTopQuery checks the raw parameters of a top items request, in the order access token, kind,
// time range and limit, and returns the parsed kind and time range.
//
// The limit must lie in 1..[MaxTopLimit], the range the Spotify top items endpoint accepts; a limit the remote API
// would reject is reported here as a [shared.ValidationError] instead of a remote failure.
func ValidateTopQuery(kind, timeRange string, limit int, accessToken string) (Kind, TimeRange, error) {
	if accessToken == "" {
		return "", "", shared.MissingParam("access_token")
	}

	k, ok := ParseKind(kind)
	if !ok {
		return "", "", shared.InvalidParam("type", "Expected 'tracks' or 'artists'.")
	}

	tr, ok := ParseTimeRange(timeRange)
	if !ok {
		return "", "", shared.InvalidParam("time_range", "Expected 'short_term', 'medium_term', or 'long_term'.")
	}

	switch {
	case limit > MaxTopLimit:
		return "", "", shared.InvalidParam("limit", "Value cannot exceed %d.", MaxTopLimit)
	case limit < 1:
		return "", "", shared.InvalidParam("limit", "Value must be at least 1.")
	}

	return k, tr, nil
}

// CollectTop returns the user's top items of kind for timeRange in ranking order.
//
// Invalid parameters are rejected before any request is made. An empty remote page yields an empty, non-nil slice.
func (c *Collector) CollectTop(ctx context.Context, kind, timeRange string, limit int, accessToken string) ([]TopItem, error) {
	k, tr, err := ValidateTopQuery(kind, timeRange, limit, accessToken)
	if err != nil {
		return nil, err
	}

	svc := c.connector.Connect(ctx, accessToken)

	switch k {
	case KindArtists:
		artists, err := svc.TopArtists(ctx, tr, limit)
		if err != nil {
			return nil, err
		}
		return transform(artists, artistItem)
	default:
		tracks, err := svc.TopTracks(ctx, tr, limit)
		if err != nil {
			return nil, err
		}
		return transform(tracks, trackItem)
	}
}

func transform[T any](in []T, fn func(T) (TopItem, error)) ([]TopItem, error) {
	items := make([]TopItem, 0, len(in))
	for i, v := range in {
		item, err := fn(v)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// trackItem names a track after its album and uses the album's first artist and image.
func trackItem(t spotify.FullTrack) (TopItem, error) {
	img, ok := lo.First(t.Album.Images)
	if !ok {
		return nil, fmt.Errorf("%w: album %q of track %s has no images", shared.ErrRemoteAPI, t.Album.Name, t.URI)
	}

	artist, _ := lo.First(t.Album.Artists)

	return TopTrack{
		SongName:   t.Album.Name,
		ArtistName: artist.Name,
		SongURL:    t.Album.ExternalURLs["spotify"],
		SongURI:    string(t.URI),
		SongImg:    img.URL,
	}, nil
}

func artistItem(a spotify.FullArtist) (TopItem, error) {
	img, ok := lo.First(a.Images)
	if !ok {
		return nil, fmt.Errorf("%w: artist %q has no images", shared.ErrRemoteAPI, a.Name)
	}

	return TopArtist{
		ArtistName:      a.Name,
		ArtistURL:       a.ExternalURLs["spotify"],
		ArtistFollowers: int(a.Followers.Count),
		ArtistImg:       img.URL,
	}, nil
}
