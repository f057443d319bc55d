// Token lifecycle management for per-session Spotify credentials.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mwojcik/artistmix/internal/models"
	"github.com/mwojcik/artistmix/internal/shared"
	"golang.org/x/oauth2"
)

// TokenManager checks expiry, refreshes access tokens against the Spotify
// token endpoint, and keeps the [CredentialStore] current. It is the single
// writer of credential records.
type TokenManager struct {
	store  CredentialStore
	config *oauth2.Config
	logger *log.Logger
	now    func() time.Time
}

// NewTokenManager creates a TokenManager with the given store and OAuth2 credentials.
//
// credentials must carry client_id and client_secret; redirect_uri falls back
// to a localhost callback when unset.
func NewTokenManager(store CredentialStore, credentials map[string]string, logger *log.Logger) (*TokenManager, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/spotify/redirect"
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &TokenManager{
		store:  store,
		config: config,
		logger: logger,
		now:    time.Now,
	}, nil
}

// AuthURL returns the Spotify authorize URL carrying scope, response_type=code,
// redirect_uri, and client_id.
func (m *TokenManager) AuthURL(state string) string {
	return m.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens and stores them for the session.
func (m *TokenManager) Exchange(ctx context.Context, sessionID, code string) error {
	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: code exchange: %v", shared.ErrAuthFailed, err)
	}

	if err := m.upsertToken(sessionID, token, token.RefreshToken); err != nil {
		return err
	}

	m.logger.Info("session authorized", "session", sessionID)
	return nil
}

// IsAuthenticated reports whether a credential exists for the session.
//
// When the stored access token has expired this triggers exactly one
// synchronous refresh before returning. The return value is true whenever a
// record exists, regardless of the refresh outcome; a failed refresh is
// logged and surfaces later as an authorization error from the API.
func (m *TokenManager) IsAuthenticated(ctx context.Context, sessionID string) bool {
	credential, err := m.store.Get(sessionID)
	if err != nil {
		m.logger.Error("failed to load credential", "session", sessionID, "error", err)
		return false
	}
	if credential == nil {
		return false
	}

	if credential.Expired(m.now()) {
		if err := m.Refresh(ctx, sessionID); err != nil {
			m.logger.Warn("token refresh failed", "session", sessionID, "error", err)
		}
	}

	return true
}

// Refresh renews the session's access token using the refresh_token grant.
//
// The stored refresh token is preserved unchanged; Spotify does not rotate it
// on this grant type.
func (m *TokenManager) Refresh(ctx context.Context, sessionID string) error {
	credential, err := m.store.Get(sessionID)
	if err != nil {
		return fmt.Errorf("failed to load credential: %w", err)
	}
	if credential == nil {
		return fmt.Errorf("%w: %s", shared.ErrNoCredential, sessionID)
	}

	refreshToken := credential.RefreshToken()
	if refreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	source := m.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	return m.upsertToken(sessionID, token, refreshToken)
}

// Upsert is the single merge point for credential writes.
//
// expiresIn is the relative lifetime in seconds returned by the token
// endpoint; the stored expiry is absolute.
func (m *TokenManager) Upsert(sessionID, accessToken, tokenType string, expiresIn int, refreshToken string) error {
	expiresAt := m.now().Add(time.Duration(expiresIn) * time.Second)
	credential := models.NewCredential(sessionID, accessToken, tokenType, refreshToken, expiresAt)
	if err := m.store.Upsert(credential); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Logout deletes the session's credential. Idempotent.
func (m *TokenManager) Logout(sessionID string) error {
	if err := m.store.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	m.logger.Info("session logged out", "session", sessionID)
	return nil
}

// upsertToken stores an oauth2 token under the session, keeping the supplied
// refresh token rather than whatever the response carried.
func (m *TokenManager) upsertToken(sessionID string, token *oauth2.Token, refreshToken string) error {
	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = m.now().Add(time.Hour)
	}

	credential := models.NewCredential(sessionID, token.AccessToken, token.Type(), refreshToken, expiresAt)
	if err := m.store.Upsert(credential); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}
