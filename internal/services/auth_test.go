package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mwojcik/artistmix/internal/models"
	tu "github.com/mwojcik/artistmix/internal/testing"
)

func testCredentials() map[string]string {
	return map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
		"redirect_uri":  "http://localhost:9999/spotify/redirect",
	}
}

func newTestManager(t *testing.T, store CredentialStore) *TokenManager {
	t.Helper()
	mgr, err := NewTokenManager(store, testCredentials(), nil)
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}
	return mgr
}

// tokenEndpoint spins up a fake token endpoint and returns it with a request counter.
func tokenEndpoint(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost {
			t.Errorf("expected POST to token endpoint, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestNewTokenManager(t *testing.T) {
	t.Run("With Valid Credentials", func(t *testing.T) {
		mgr := newTestManager(t, tu.NewMemStore())
		if mgr == nil {
			t.Fatal("expected manager to be created")
		}
	})

	t.Run("Missing Client ID", func(t *testing.T) {
		_, err := NewTokenManager(tu.NewMemStore(), map[string]string{"client_secret": "s"}, nil)
		if err == nil {
			t.Error("expected error for missing client_id")
		}
	})

	t.Run("Missing Client Secret", func(t *testing.T) {
		_, err := NewTokenManager(tu.NewMemStore(), map[string]string{"client_id": "c"}, nil)
		if err == nil {
			t.Error("expected error for missing client_secret")
		}
	})

	t.Run("Default Redirect URI", func(t *testing.T) {
		mgr, err := NewTokenManager(tu.NewMemStore(), map[string]string{
			"client_id":     "c",
			"client_secret": "s",
		}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if mgr.config.RedirectURL == "" {
			t.Error("expected default redirect URI to be set")
		}
	})
}

func TestAuthURL(t *testing.T) {
	mgr := newTestManager(t, tu.NewMemStore())

	authURL := mgr.AuthURL("test_state")
	for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "response_type=code"} {
		if !strings.Contains(authURL, want) {
			t.Errorf("auth URL should contain %q, got %s", want, authURL)
		}
	}
}

func TestIsAuthenticated(t *testing.T) {
	ctx := context.Background()

	t.Run("No Credential", func(t *testing.T) {
		mgr := newTestManager(t, tu.NewMemStore())

		if mgr.IsAuthenticated(ctx, "unknown-session") {
			t.Error("expected false for session with no credential")
		}
	})

	t.Run("Valid Token Skips Refresh", func(t *testing.T) {
		server, calls := tokenEndpoint(t, http.StatusOK, `{"access_token":"new","token_type":"Bearer","expires_in":3600}`)

		store := tu.NewMemStore()
		store.Put(models.NewCredential("s1", "access", "Bearer", "refresh", time.Now().Add(time.Hour)))

		mgr := newTestManager(t, store)
		mgr.config.Endpoint.TokenURL = server.URL

		if !mgr.IsAuthenticated(ctx, "s1") {
			t.Error("expected true for fresh credential")
		}
		if *calls != 0 {
			t.Errorf("expected no refresh calls, got %d", *calls)
		}
	})

	t.Run("Expired Token Triggers One Refresh", func(t *testing.T) {
		server, calls := tokenEndpoint(t, http.StatusOK, `{"access_token":"refreshed","token_type":"Bearer","expires_in":3600}`)

		store := tu.NewMemStore()
		store.Put(models.NewCredential("s1", "stale", "Bearer", "original-refresh", time.Now().Add(-time.Hour)))

		mgr := newTestManager(t, store)
		mgr.config.Endpoint.TokenURL = server.URL

		if !mgr.IsAuthenticated(ctx, "s1") {
			t.Error("expected true for existing credential")
		}
		if *calls != 1 {
			t.Errorf("expected exactly one refresh call, got %d", *calls)
		}

		credential, _ := store.Get("s1")
		if credential.AccessToken() != "refreshed" {
			t.Errorf("expected refreshed access token, got %s", credential.AccessToken())
		}
		if credential.RefreshToken() != "original-refresh" {
			t.Errorf("expected refresh token preserved, got %s", credential.RefreshToken())
		}
		if credential.Expired(time.Now()) {
			t.Error("expected refreshed credential to be valid")
		}
	})

	t.Run("Failed Refresh Still Returns True", func(t *testing.T) {
		server, calls := tokenEndpoint(t, http.StatusInternalServerError, `{"error":"server_error"}`)

		store := tu.NewMemStore()
		store.Put(models.NewCredential("s1", "stale", "Bearer", "refresh", time.Now().Add(-time.Hour)))

		mgr := newTestManager(t, store)
		mgr.config.Endpoint.TokenURL = server.URL

		if !mgr.IsAuthenticated(ctx, "s1") {
			t.Error("expected true even when refresh fails")
		}
		if *calls != 1 {
			t.Errorf("expected one refresh attempt, got %d", *calls)
		}

		credential, _ := store.Get("s1")
		if credential.AccessToken() != "stale" {
			t.Errorf("expected stale token untouched after failed refresh, got %s", credential.AccessToken())
		}
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("No Credential", func(t *testing.T) {
		mgr := newTestManager(t, tu.NewMemStore())

		if err := mgr.Refresh(ctx, "missing"); err == nil {
			t.Error("expected error refreshing a session with no credential")
		}
	})

	t.Run("Missing Refresh Token", func(t *testing.T) {
		store := tu.NewMemStore()
		credential := models.NewCredential("s1", "access", "Bearer", "placeholder", time.Now().Add(-time.Hour))
		credential.SetRefreshToken("")
		store.Put(credential)

		mgr := newTestManager(t, store)
		if err := mgr.Refresh(ctx, "s1"); err == nil {
			t.Error("expected error for credential without refresh token")
		}
	})
}

func TestUpsert(t *testing.T) {
	store := tu.NewMemStore()
	mgr := newTestManager(t, store)

	before := time.Now()
	if err := mgr.Upsert("s1", "access", "Bearer", 3600, "refresh"); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	credential, _ := store.Get("s1")
	if credential == nil {
		t.Fatal("expected credential to be stored")
	}

	want := before.Add(time.Hour)
	if diff := credential.ExpiresAt().Sub(want); diff < -time.Second || diff > time.Second {
		t.Errorf("expected expiry near %v, got %v", want, credential.ExpiresAt())
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	store := tu.NewMemStore()
	store.Put(models.NewCredential("s1", "access", "Bearer", "refresh", time.Now().Add(time.Hour)))

	mgr := newTestManager(t, store)

	if err := mgr.Logout("s1"); err != nil {
		t.Fatalf("failed to logout: %v", err)
	}
	if mgr.IsAuthenticated(ctx, "s1") {
		t.Error("expected false after logout")
	}

	// logout of an absent session is not an error
	if err := mgr.Logout("s1"); err != nil {
		t.Errorf("expected idempotent logout, got %v", err)
	}
}

func TestExchange(t *testing.T) {
	ctx := context.Background()
	server, calls := tokenEndpoint(t, http.StatusOK, `{"access_token":"granted","token_type":"Bearer","refresh_token":"granted-refresh","expires_in":3600}`)

	store := tu.NewMemStore()
	mgr := newTestManager(t, store)
	mgr.config.Endpoint.TokenURL = server.URL

	if err := mgr.Exchange(ctx, "s1", "auth-code"); err != nil {
		t.Fatalf("failed to exchange code: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected one token endpoint call, got %d", *calls)
	}

	credential, _ := store.Get("s1")
	if credential == nil {
		t.Fatal("expected credential to be stored after exchange")
	}
	if credential.AccessToken() != "granted" {
		t.Errorf("expected granted access token, got %s", credential.AccessToken())
	}
	if credential.RefreshToken() != "granted-refresh" {
		t.Errorf("expected refresh token from exchange, got %s", credential.RefreshToken())
	}
}
