package models

import (
	"fmt"
	"time"
)

// Credential is the per-session OAuth token record used to authorize Spotify API calls.
//
// At most one Credential exists per session identifier. It is created on the
// first successful authorization callback, updated in place on every token
// refresh or re-authentication, and deleted on logout.
type Credential struct {
	sessionID    string
	accessToken  string
	refreshToken string
	tokenType    string
	expiresAt    time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

var _ Model = (*Credential)(nil)

// NewCredential creates a Credential for the given session with an absolute expiry.
func NewCredential(sessionID, accessToken, tokenType, refreshToken string, expiresAt time.Time) *Credential {
	now := time.Now()
	return &Credential{
		sessionID:    sessionID,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		tokenType:    tokenType,
		expiresAt:    expiresAt,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (c *Credential) ID() string           { return c.sessionID }
func (c *Credential) SessionID() string    { return c.sessionID }
func (c *Credential) AccessToken() string  { return c.accessToken }
func (c *Credential) RefreshToken() string { return c.refreshToken }
func (c *Credential) TokenType() string    { return c.tokenType }
func (c *Credential) ExpiresAt() time.Time { return c.expiresAt }
func (c *Credential) CreatedAt() time.Time { return c.createdAt }
func (c *Credential) UpdatedAt() time.Time { return c.updatedAt }

func (c *Credential) SetAccessToken(token string)  { c.accessToken = token }
func (c *Credential) SetRefreshToken(token string) { c.refreshToken = token }
func (c *Credential) SetTokenType(tt string)       { c.tokenType = tt }
func (c *Credential) SetExpiresAt(t time.Time)     { c.expiresAt = t }
func (c *Credential) SetCreatedAt(t time.Time)     { c.createdAt = t }
func (c *Credential) SetUpdatedAt(t time.Time)     { c.updatedAt = t }

// Expired reports whether the access token is invalid at the given instant.
func (c *Credential) Expired(now time.Time) bool {
	return !c.expiresAt.After(now)
}

// Validate checks that the credential carries everything an API call needs.
func (c *Credential) Validate() error {
	if c.sessionID == "" {
		return fmt.Errorf("credential missing session id")
	}
	if c.accessToken == "" {
		return fmt.Errorf("credential missing access token")
	}
	if c.tokenType == "" {
		return fmt.Errorf("credential missing token type")
	}
	if c.expiresAt.IsZero() {
		return fmt.Errorf("credential missing expiry")
	}
	return nil
}
