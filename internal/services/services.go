// package services mediates all communication with the Spotify Web API
package services

import (
	"github.com/mwojcik/artistmix/internal/models"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// spotifyScopes are the OAuth scopes requested during authorization.
var spotifyScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"playlist-read-private",
	"playlist-modify-private",
	"playlist-modify-public",
	"ugc-image-upload",
	"playlist-read-collaborative",
}

// CredentialStore defines the persistence operations the token lifecycle and
// request executor need. Implemented by repositories.CredentialRepository.
type CredentialStore interface {
	// Get retrieves the credential for a session, nil when absent.
	Get(sessionID string) (*models.Credential, error)

	// Upsert inserts or updates the credential for its session id.
	Upsert(credential *models.Credential) error

	// Delete removes the credential for a session; absent is not an error.
	Delete(sessionID string) error
}
