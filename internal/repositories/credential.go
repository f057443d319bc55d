package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mwojcik/artistmix/internal/models"
)

// CredentialRepository implements [models.Repository] for [models.Credential] persistence.
type CredentialRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Credential] = (*CredentialRepository)(nil)

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Upsert inserts the credential or updates the existing row for its session id in place.
//
// This is the single merge point for all credential writes: the authorization
// callback and token refresh both land here. created_at is preserved on update.
func (r *CredentialRepository) Upsert(credential *models.Credential) error {
	if err := credential.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	credential.SetUpdatedAt(now)

	query := `
		INSERT INTO credentials (session_id, access_token, refresh_token, token_type, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		credential.SessionID(),
		credential.AccessToken(),
		credential.RefreshToken(),
		credential.TokenType(),
		credential.ExpiresAt(),
		credential.CreatedAt(),
		credential.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}

	return nil
}

// Get retrieves the credential for a session id.
//
// Returns (nil, nil) when no credential exists for the session.
func (r *CredentialRepository) Get(sessionID string) (*models.Credential, error) {
	query := `
		SELECT session_id, access_token, refresh_token, token_type, expires_at, created_at, updated_at
		FROM credentials
		WHERE session_id = ?
	`

	var (
		id           string
		accessToken  string
		refreshToken string
		tokenType    string
		expiresAt    time.Time
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := r.db.QueryRow(query, sessionID).Scan(&id, &accessToken, &refreshToken, &tokenType, &expiresAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}

	credential := models.NewCredential(id, accessToken, tokenType, refreshToken, expiresAt)
	credential.SetCreatedAt(createdAt)
	credential.SetUpdatedAt(updatedAt)

	return credential, nil
}

// Delete removes the credential for a session id.
//
// Idempotent: deleting a session with no credential is not an error.
func (r *CredentialRepository) Delete(sessionID string) error {
	if _, err := r.db.Exec("DELETE FROM credentials WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// List retrieves all credentials matching the given criteria.
func (r *CredentialRepository) List(criteria map[string]any) ([]*models.Credential, error) {
	query := `
		SELECT session_id, access_token, refresh_token, token_type, expires_at, created_at, updated_at
		FROM credentials
	`

	args := []any{}

	if before, ok := criteria["expires_before"].(time.Time); ok {
		query += " WHERE expires_at < ?"
		args = append(args, before)
	}

	query += " ORDER BY created_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	var credentials []*models.Credential
	for rows.Next() {
		var (
			id           string
			accessToken  string
			refreshToken string
			tokenType    string
			expiresAt    time.Time
			createdAt    time.Time
			updatedAt    time.Time
		)

		if err := rows.Scan(&id, &accessToken, &refreshToken, &tokenType, &expiresAt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}

		credential := models.NewCredential(id, accessToken, tokenType, refreshToken, expiresAt)
		credential.SetCreatedAt(createdAt)
		credential.SetUpdatedAt(updatedAt)
		credentials = append(credentials, credential)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return credentials, nil
}
