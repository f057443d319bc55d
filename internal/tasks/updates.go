package tasks

import (
	"fmt"

	"github.com/mwojcik/artistmix/internal/models"
)

// ProgressUpdate represents a progress event during a playlist build.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Build phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Build phase enumeration
type Phase int

const (
	ResolveUser Phase = iota
	CreateContainer
	ResolveArtists
	FetchTracks
	UploadCover
	AttachTracks
	Complete
)

func (p Phase) String() string {
	switch p {
	case ResolveUser:
		return "resolve_user"
	case CreateContainer:
		return "create_container"
	case ResolveArtists:
		return "resolve_artists"
	case FetchTracks:
		return "fetch_tracks"
	case UploadCover:
		return "upload_cover"
	case AttachTracks:
		return "attach_tracks"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func resolveUserUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveUser,
		Step:    step,
		Total:   total,
		Message: "Resolving current user...",
	}
}

func userResolvedUpdate(step, total int, user *models.CurrentUser) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveUser,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Building playlist for %s", user.DisplayName),
		Data:    user,
	}
}

func createContainerUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateContainer,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func containerCreatedUpdate(step, total int, pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateContainer,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func resolveArtistUpdate(step, total int, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching for %s...", step, total, query),
	}
}

func artistResolvedUpdate(step, total int, artist *models.Artist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Found %s", step, total, artist.Name),
		Data:    artist,
	}
}

func fetchTracksUpdate(step, total int, artistName string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching top tracks for %s...", step, total, artistName),
	}
}

func uploadCoverUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadCover,
		Step:    step,
		Total:   total,
		Message: "Uploading cover image...",
	}
}

func attachTracksUpdate(step, total, trackCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AttachTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Attaching %d tracks...", trackCount),
	}
}

func completeUpdate(pl *models.Playlist, trackCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Done: %s (%d tracks)", pl.Name, trackCount),
		Data:    pl,
	}
}
