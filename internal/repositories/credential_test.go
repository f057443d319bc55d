package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mwojcik/artistmix/internal/models"
	"github.com/mwojcik/artistmix/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func countCredentials(t *testing.T, db *sql.DB, sessionID string) int {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM credentials WHERE session_id = ?", sessionID).Scan(&count); err != nil {
		t.Fatalf("failed to count credentials: %v", err)
	}
	return count
}

func TestCredentialRepository(t *testing.T) {
	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	t.Run("Upsert Creates", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		credential := models.NewCredential("session-1", "access", "Bearer", "refresh", expiry)

		if err := repo.Upsert(credential); err != nil {
			t.Fatalf("failed to upsert credential: %v", err)
		}

		if got := countCredentials(t, db, "session-1"); got != 1 {
			t.Errorf("expected 1 credential row, got %d", got)
		}
	})

	t.Run("Upsert Updates In Place", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		credential := models.NewCredential("session-1", "access", "Bearer", "refresh", expiry)
		if err := repo.Upsert(credential); err != nil {
			t.Fatalf("failed to upsert credential: %v", err)
		}

		for i := 0; i < 5; i++ {
			updated := models.NewCredential("session-1", "newer-access", "Bearer", "refresh", expiry.Add(time.Hour))
			if err := repo.Upsert(updated); err != nil {
				t.Fatalf("failed to upsert credential: %v", err)
			}
		}

		if got := countCredentials(t, db, "session-1"); got != 1 {
			t.Errorf("expected exactly 1 credential row after repeated upserts, got %d", got)
		}

		retrieved, err := repo.Get("session-1")
		if err != nil {
			t.Fatalf("failed to get credential: %v", err)
		}
		if retrieved == nil {
			t.Fatal("expected credential to exist")
		}
		if retrieved.AccessToken() != "newer-access" {
			t.Errorf("expected updated access token, got %s", retrieved.AccessToken())
		}
		if retrieved.RefreshToken() != "refresh" {
			t.Errorf("expected refresh token preserved, got %s", retrieved.RefreshToken())
		}
	})

	t.Run("Upsert Validates", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		credential := models.NewCredential("session-1", "", "Bearer", "refresh", expiry)

		if err := repo.Upsert(credential); err == nil {
			t.Error("expected validation error for missing access token")
		}
	})

	t.Run("Get Missing Returns Nil", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)

		credential, err := repo.Get("no-such-session")
		if err != nil {
			t.Fatalf("expected no error for missing credential, got %v", err)
		}
		if credential != nil {
			t.Error("expected nil credential for missing session")
		}
	})

	t.Run("Get Roundtrip", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		credential := models.NewCredential("session-1", "access", "Bearer", "refresh", expiry)
		if err := repo.Upsert(credential); err != nil {
			t.Fatalf("failed to upsert credential: %v", err)
		}

		retrieved, err := repo.Get("session-1")
		if err != nil {
			t.Fatalf("failed to get credential: %v", err)
		}
		if retrieved == nil {
			t.Fatal("expected credential to exist")
		}
		if retrieved.SessionID() != "session-1" {
			t.Errorf("expected session id 'session-1', got %s", retrieved.SessionID())
		}
		if retrieved.TokenType() != "Bearer" {
			t.Errorf("expected token type 'Bearer', got %s", retrieved.TokenType())
		}
		if !retrieved.ExpiresAt().Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, retrieved.ExpiresAt())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		credential := models.NewCredential("session-1", "access", "Bearer", "refresh", expiry)
		if err := repo.Upsert(credential); err != nil {
			t.Fatalf("failed to upsert credential: %v", err)
		}

		if err := repo.Delete("session-1"); err != nil {
			t.Fatalf("failed to delete credential: %v", err)
		}

		if got := countCredentials(t, db, "session-1"); got != 0 {
			t.Errorf("expected 0 credential rows after delete, got %d", got)
		}
	})

	t.Run("Delete Is Idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)

		if err := repo.Delete("never-existed"); err != nil {
			t.Errorf("expected no error deleting absent credential, got %v", err)
		}
	})

	t.Run("List By Expiry", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		stale := models.NewCredential("stale", "access", "Bearer", "refresh", time.Now().Add(-time.Hour))
		fresh := models.NewCredential("fresh", "access", "Bearer", "refresh", time.Now().Add(time.Hour))

		for _, c := range []*models.Credential{stale, fresh} {
			if err := repo.Upsert(c); err != nil {
				t.Fatalf("failed to upsert credential: %v", err)
			}
		}

		expired, err := repo.List(map[string]any{"expires_before": time.Now()})
		if err != nil {
			t.Fatalf("failed to list credentials: %v", err)
		}
		if len(expired) != 1 || expired[0].SessionID() != "stale" {
			t.Errorf("expected only the stale credential, got %d entries", len(expired))
		}
	})
}
