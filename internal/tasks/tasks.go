// package tasks implements the playlist build workflow.
//
// The core abstraction is PlaylistBuilder, which composes Spotify API calls
// into the end-to-end creation sequence: resolve the current user, create the
// playlist container, resolve artists, collect top tracks, upload the cover,
// and attach tracks. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwojcik/artistmix/internal/models"
	"github.com/mwojcik/artistmix/internal/shared"
)

const (
	maxNameLength        = 30
	maxDescriptionLength = 200
)

// SpotifyAPI defines the Spotify operations the builder composes.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type SpotifyAPI interface {
	Me(ctx context.Context, sessionID string) (*models.CurrentUser, error)
	SearchArtist(ctx context.Context, sessionID, query string) (*models.Artist, error)
	ArtistTopTracks(ctx context.Context, sessionID, artistID string) ([]string, error)
	CreatePlaylist(ctx context.Context, sessionID, userID, name, description string, public bool) (*models.Playlist, error)
	AddTracks(ctx context.Context, sessionID, playlistID, trackURIs string) error
	UploadImage(ctx context.Context, sessionID, playlistID string, image []byte) error
	MyPlaylists(ctx context.Context, sessionID string) ([]models.Playlist, error)
}

// Authenticator reports whether a session holds usable credentials,
// refreshing them first if needed.
type Authenticator interface {
	IsAuthenticated(ctx context.Context, sessionID string) bool
}

// BuildRequest carries the user's input for a playlist build.
type BuildRequest struct {
	Name        string   // Playlist name, required
	Description string   // Optional description
	Public      bool     // Playlist visibility
	Artists     []string // Ordered artist search queries
	Image       []byte   // Optional raw cover image bytes
}

// Validate checks field presence and length limits.
func (r *BuildRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}
	if len(r.Name) > maxNameLength {
		return fmt.Errorf("%w: playlist name exceeds %d characters", shared.ErrInvalidInput, maxNameLength)
	}
	if len(r.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", shared.ErrInvalidInput, maxDescriptionLength)
	}
	return nil
}

// BuildResult contains all data from a completed (or aborted) build.
type BuildResult struct {
	User          *models.CurrentUser // Owner of the new playlist
	Playlist      *models.Playlist    // Created playlist, nil if creation never ran
	Artists       []models.Artist     // Resolved artists in input order
	TrackCount    int                 // Number of track URIs attached
	CoverUploaded bool                // Whether a cover image was set
}

// PlaylistBuilder implements the playlist creation workflow.
// Contains dependencies on the Spotify client and the token lifecycle.
type PlaylistBuilder struct {
	spotify SpotifyAPI
	auth    Authenticator
}

// NewPlaylistBuilder creates a new PlaylistBuilder with the provided dependencies.
func NewPlaylistBuilder(spotify SpotifyAPI, auth Authenticator) *PlaylistBuilder {
	return &PlaylistBuilder{
		spotify: spotify,
		auth:    auth,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (b *PlaylistBuilder) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// CurrentUser resolves the profile behind a session. An unauthenticated
// session yields (nil, nil): absence, not an error. Callers must branch
// on the nil user before depending on it.
func (b *PlaylistBuilder) CurrentUser(ctx context.Context, sessionID string) (*models.CurrentUser, error) {
	if b.spotify == nil || b.auth == nil {
		return nil, fmt.Errorf("%w: Spotify client not initialized", shared.ErrServiceUnavailable)
	}
	if !b.auth.IsAuthenticated(ctx, sessionID) {
		return nil, nil
	}
	return b.spotify.Me(ctx, sessionID)
}

// UserPlaylists lists the session user's playlists.
func (b *PlaylistBuilder) UserPlaylists(ctx context.Context, sessionID string) ([]models.Playlist, error) {
	if b.spotify == nil || b.auth == nil {
		return nil, fmt.Errorf("%w: Spotify client not initialized", shared.ErrServiceUnavailable)
	}
	if !b.auth.IsAuthenticated(ctx, sessionID) {
		return nil, fmt.Errorf("%w: no active session", shared.ErrNotAuthenticated)
	}
	return b.spotify.MyPlaylists(ctx, sessionID)
}

// Build runs the full creation workflow for one playlist.
//
// Steps run strictly in sequence: each later step needs an earlier step's
// output (the playlist id, the resolved artist ids). A failed step aborts
// the remainder and returns the partial result alongside the error; nothing
// already created on the remote side is rolled back.
func (b *PlaylistBuilder) Build(ctx context.Context, sessionID string, req BuildRequest, progress chan<- ProgressUpdate) (*BuildResult, error) {
	if b.spotify == nil || b.auth == nil {
		return nil, fmt.Errorf("%w: Spotify client not initialized", shared.ErrServiceUnavailable)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &BuildResult{}

	b.sendProgress(progress, resolveUserUpdate(1, 1))

	user, err := b.CurrentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no active session", shared.ErrNotAuthenticated)
	}
	result.User = user
	b.sendProgress(progress, userResolvedUpdate(1, 1, user))

	b.sendProgress(progress, createContainerUpdate(1, 1, req.Name))
	playlist, err := b.spotify.CreatePlaylist(ctx, sessionID, user.ID, req.Name, req.Description, req.Public)
	if err != nil {
		return result, err
	}
	result.Playlist = playlist
	b.sendProgress(progress, containerCreatedUpdate(1, 1, playlist))

	total := len(req.Artists)
	artists := make([]models.Artist, 0, total)
	for i, query := range req.Artists {
		b.sendProgress(progress, resolveArtistUpdate(i+1, total, query))

		artist, err := b.spotify.SearchArtist(ctx, sessionID, query)
		if err != nil {
			return result, err
		}

		artists = append(artists, *artist)
		b.sendProgress(progress, artistResolvedUpdate(i+1, total, artist))
	}
	result.Artists = artists

	var uris []string
	for i, artist := range artists {
		b.sendProgress(progress, fetchTracksUpdate(i+1, total, artist.Name))

		tracks, err := b.spotify.ArtistTopTracks(ctx, sessionID, artist.ID)
		if err != nil {
			return result, err
		}
		uris = append(uris, tracks...)
	}

	if len(req.Image) > 0 {
		b.sendProgress(progress, uploadCoverUpdate(1, 1))
		if err := b.spotify.UploadImage(ctx, sessionID, playlist.ID, req.Image); err != nil {
			return result, err
		}
		result.CoverUploaded = true
	}

	b.sendProgress(progress, attachTracksUpdate(1, 1, len(uris)))
	if err := b.spotify.AddTracks(ctx, sessionID, playlist.ID, strings.Join(uris, ",")); err != nil {
		return result, err
	}
	result.TrackCount = len(uris)

	b.sendProgress(progress, completeUpdate(playlist, len(uris)))
	return result, nil
}
