package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/topsync/internal/services"
	"github.com/desertthunder/topsync/internal/shared"
	"github.com/samber/lo"
)

// PlaylistPageLimit caps the page of existing playlists searched for a name match.
//
// Playlists past the first page are never matched, so an upsert for one of them creates a duplicate.
const PlaylistPageLimit = 50

// UpsertRequest describes the playlist to (re)create.
type UpsertRequest struct {
	AccessToken  string
	PlaylistName string
	UserID       string
	Description  string
	Public       bool
	TrackURIs    []string // order preserved, duplicates allowed
}

// UpsertResult contains the id of the newly created playlist.
type UpsertResult struct {
	PlaylistID string `json:"new_playlist_id"`
	Message    string `json:"message"`
}

// Validate reports the first missing required field as a [shared.ValidationError].
func (r UpsertRequest) Validate() error {
	switch {
	case r.AccessToken == "":
		return shared.MissingParam("access_token")
	case r.PlaylistName == "":
		return shared.MissingParam("playlist_name")
	case r.UserID == "":
		return shared.MissingParam("user_id")
	default:
		return nil
	}
}

// Upsert replaces the user's playlist named req.PlaylistName with a new one holding req.TrackURIs.
//
// The first page of the user's playlists is searched for an exact, case-sensitive name match; the first match is
// unfollowed before the new playlist is created and populated in a single call. A failure after the unfollow leaves
// the user without the playlist; nothing is rolled back.
func (e *PlaylistEngine) Upsert(ctx context.Context, req UpsertRequest, progress chan<- ProgressUpdate) (*UpsertResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	svc := e.connector.Connect(ctx, req.AccessToken)

	sendProgress(progress, fetchPlaylistsUpdate(req.UserID))
	playlists, err := svc.UserPlaylists(ctx, req.UserID, PlaylistPageLimit)
	if err != nil {
		return nil, remoteErr("fetch playlists", err)
	}

	existing, found := lo.Find(playlists, func(p services.PlaylistDescriptor) bool {
		return p.Name == req.PlaylistName
	})
	if found {
		sendProgress(progress, deletePlaylistUpdate(existing.ID))
		if err := svc.UnfollowPlaylist(ctx, existing.ID); err != nil {
			return nil, remoteErr("delete playlist", err)
		}
	}

	sendProgress(progress, createPlaylistUpdate(req.PlaylistName))
	id, err := svc.CreatePlaylist(ctx, req.UserID, req.PlaylistName, req.Description, req.Public)
	if err != nil {
		return nil, remoteErr("create playlist", err)
	}

	uris := req.TrackURIs
	if uris == nil {
		uris = []string{}
	}

	sendProgress(progress, addTracksUpdate(id, len(uris)))
	if err := svc.ReplacePlaylistItems(ctx, id, uris); err != nil {
		return nil, remoteErr("add tracks", err)
	}

	return &UpsertResult{
		PlaylistID: id,
		Message:    fmt.Sprintf("Playlist %s created for user %s, with id %s", req.PlaylistName, req.UserID, id),
	}, nil
}
