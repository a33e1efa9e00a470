package tasks

import (
	"strings"

	"github.com/desertthunder/topsync/internal/services"
)

const (
	updateDataAction     = "update-data"
	createPlaylistAction = "create-playlist"
)

// Action is the parsed form of the state value echoed back by the authorization callback.
//
// Both parts are evaluated independently; an action may request neither.
type Action struct {
	Raw            string
	UpdateData     bool
	CreatePlaylist *services.TimeRange // nil unless a playlist should be generated
}

// ParseAction recognizes update-data (exact match) and create-playlist-<time_range> (substring match). The time
// range is the last dash separated token and is validated when the playlist is built.
func ParseAction(raw string) Action {
	a := Action{Raw: raw, UpdateData: raw == updateDataAction}

	if strings.Contains(raw, createPlaylistAction) {
		tokens := strings.Split(raw, "-")
		tr := services.TimeRange(tokens[len(tokens)-1])
		a.CreatePlaylist = &tr
	}
	return a
}

// DefaultAction is used when a login request does not name one.
func DefaultAction() string {
	return updateDataAction
}

// CreatePlaylistAction builds the state value requesting a playlist for tr.
func CreatePlaylistAction(tr services.TimeRange) string {
	return createPlaylistAction + "-" + string(tr)
}
