package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylists Phase = iota
	DeletePlaylist
	CreatePlaylist
	AddTracks
	ExportSnapshot
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylists:
		return "fetch_playlists"
	case DeletePlaylist:
		return "delete_playlist"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	case ExportSnapshot:
		return "export_snapshot"
	default:
		return ""
	}
}

func fetchPlaylistsUpdate(userID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlists for %s...", userID),
	}
}

func deletePlaylistUpdate(existing string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeletePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Removing existing playlist (ID: %s)...", existing),
		Data:    existing,
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %s...", name),
	}
}

func addTracksUpdate(id string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    count,
		Total:   count,
		Message: fmt.Sprintf("Adding %d tracks to %s...", count, id),
		Data:    id,
	}
}

func exportCompletedUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSnapshot,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSnapshot,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
