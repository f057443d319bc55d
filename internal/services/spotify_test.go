package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mwojcik/artistmix/internal/models"
	"github.com/mwojcik/artistmix/internal/shared"
	tu "github.com/mwojcik/artistmix/internal/testing"
)

func seededStore() *tu.MemStore {
	store := tu.NewMemStore()
	store.Put(models.NewCredential("s1", "test_access_token", "Bearer", "refresh", time.Now().Add(time.Hour)))
	return store
}

func TestSpotifyClient(t *testing.T) {
	ctx := context.Background()

	t.Run("New Defaults", func(t *testing.T) {
		client := NewSpotifyClient(seededStore(), "", nil)

		if client.baseURL != spotifyBaseURL {
			t.Errorf("expected default base URL, got %s", client.baseURL)
		}
		if client.httpClient != http.DefaultClient {
			t.Error("expected http.DefaultClient to be used")
		}
	})

	t.Run("Trailing Slash Trimmed", func(t *testing.T) {
		client := NewSpotifyClient(seededStore(), "http://example.com/v1/", nil)
		if client.baseURL != "http://example.com/v1" {
			t.Errorf("expected trimmed base URL, got %s", client.baseURL)
		}
	})

	t.Run("Execute", func(t *testing.T) {
		t.Run("Sets Auth Headers", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer test_access_token" {
					t.Errorf("expected bearer header, got %q", got)
				}
				if got := r.Header.Get("Content-Type"); got != "application/json" {
					t.Errorf("expected JSON content type, got %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"ok": "true"})
			}))
			defer server.Close()

			client := NewSpotifyClient(seededStore(), server.URL, nil)
			raw, err := client.Execute(ctx, "s1", http.MethodGet, "/me", nil, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !json.Valid(raw) {
				t.Error("expected valid JSON payload")
			}
		})

		t.Run("Missing Credential Is Precondition Violation", func(t *testing.T) {
			client := NewSpotifyClient(tu.NewMemStore(), "http://example.invalid", nil)

			_, err := client.Execute(ctx, "no-session", http.MethodGet, "/me", nil, nil)
			if !errors.Is(err, shared.ErrNoCredential) {
				t.Errorf("expected ErrNoCredential, got %v", err)
			}
		})

		t.Run("Unsupported Method", func(t *testing.T) {
			client := NewSpotifyClient(seededStore(), "http://example.invalid", nil)

			_, err := client.Execute(ctx, "s1", http.MethodDelete, "/me", nil, nil)
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("Non-JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>gateway error</html>"))
			}))
			defer server.Close()

			client := NewSpotifyClient(seededStore(), server.URL, nil)
			_, err := client.Execute(ctx, "s1", http.MethodGet, "/me", nil, nil)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest for non-JSON body, got %v", err)
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			httpClient := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			client := NewSpotifyClient(seededStore(), "http://example.invalid", httpClient)

			_, err := client.Execute(ctx, "s1", http.MethodGet, "/me", nil, nil)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest for transport failure, got %v", err)
			}
		})

		t.Run("Body Read Failure", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}}
			httpClient := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
			client := NewSpotifyClient(seededStore(), "http://example.invalid", httpClient)

			_, err := client.Execute(ctx, "s1", http.MethodGet, "/me", nil, nil)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest for body read failure, got %v", err)
			}
		})
	})

	t.Run("Me", func(t *testing.T) {
		t.Run("With Image", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/me" {
					t.Errorf("expected path '/me', got %s", r.URL.Path)
				}
				w.Write([]byte(`{
					"id": "user1",
					"display_name": "Listener",
					"external_urls": {"spotify": "https://open.spotify.com/user/user1"},
					"images": [{"url": "https://img.example/u.jpg", "height": 64, "width": 64}]
				}`))
			}))
			defer server.Close()

			client := NewSpotifyClient(seededStore(), server.URL, nil)
			user, err := client.Me(ctx, "s1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if user.DisplayName != "Listener" {
				t.Errorf("expected display name 'Listener', got %s", user.DisplayName)
			}
			if user.ImageURL != "https://img.example/u.jpg" {
				t.Errorf("expected image URL, got %s", user.ImageURL)
			}
		})

		t.Run("Empty Images Omitted", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{
					"id": "user1",
					"display_name": "Listener",
					"external_urls": {"spotify": "https://open.spotify.com/user/user1"},
					"images": []
				}`))
			}))
			defer server.Close()

			client := NewSpotifyClient(seededStore(), server.URL, nil)
			user, err := client.Me(ctx, "s1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			encoded, err := json.Marshal(user)
			if err != nil {
				t.Fatalf("failed to marshal user: %v", err)
			}
			if strings.Contains(string(encoded), "image_url") {
				t.Errorf("expected image_url key to be omitted, got %s", encoded)
			}
		})
	})

	t.Run("SearchArtist", func(t *testing.T) {
		t.Run("First Match", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("type") != "artist" || q.Get("limit") != "1" {
					t.Errorf("expected type=artist&limit=1, got %s", r.URL.RawQuery)
				}
				w.Write([]byte(`{"artists": {"items": [{
					"id": "a1",
					"name": "Artist One",
					"external_urls": {"spotify": "https://open.spotify.com/artist/a1"},
					"images": []
				}]}}`))
			}))
			defer server.Close()

			client := NewSpotifyClient(seededStore(), server.URL, nil)
			artist, err := client.SearchArtist(ctx, "s1", "artist one")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if artist.ID != "a1" {
				t.Errorf("expected artist id 'a1', got %s", artist.ID)
			}
			if artist.ImageURL != "" {
				t.Errorf("expected empty image URL for artist without images, got %s", artist.ImageURL)
			}
		})

		t.Run("Zero Results", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"artists": {"items": []}}`))
			}))
			defer server.Close()

			client := NewSpotifyClient(seededStore(), server.URL, nil)
			_, err := client.SearchArtist(ctx, "s1", "nonexistent_xyz")
			if !errors.Is(err, shared.ErrArtistNotFound) {
				t.Errorf("expected ErrArtistNotFound, got %v", err)
			}
		})
	})

	t.Run("ArtistTopTracks", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/artists/a1/top-tracks" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("market") != "US" {
				t.Errorf("expected market=US, got %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"tracks": [{"uri": "spotify:track:t1"}, {"uri": "spotify:track:t2"}]}`))
		}))
		defer server.Close()

		client := NewSpotifyClient(seededStore(), server.URL, nil)
		uris, err := client.ArtistTopTracks(ctx, "s1", "a1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(uris) != 2 || uris[0] != "spotify:track:t1" || uris[1] != "spotify:track:t2" {
			t.Errorf("unexpected uris %v", uris)
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/users/user1/playlists" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}

			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if len(body) != 3 {
				t.Errorf("expected exactly name, description, public in body, got %v", body)
			}
			if body["name"] != "Mix" || body["public"] != false {
				t.Errorf("unexpected body %v", body)
			}

			w.Write([]byte(`{"id": "pl1", "name": "Mix", "external_urls": {"spotify": "https://open.spotify.com/playlist/pl1"}, "images": []}`))
		}))
		defer server.Close()

		client := NewSpotifyClient(seededStore(), server.URL, nil)
		playlist, err := client.CreatePlaylist(ctx, "s1", "user1", "Mix", "a mix", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if playlist.ID != "pl1" {
			t.Errorf("expected playlist id 'pl1', got %s", playlist.ID)
		}
	})

	t.Run("AddTracks", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/playlists/pl1/tracks" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("uris"); got != "t1,t2" {
				t.Errorf("expected uris query param 't1,t2', got %q", got)
			}
			w.Write([]byte(`{"snapshot_id": "snap"}`))
		}))
		defer server.Close()

		client := NewSpotifyClient(seededStore(), server.URL, nil)
		if err := client.AddTracks(ctx, "s1", "pl1", "t1,t2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("UploadImage", func(t *testing.T) {
		image := []byte{0xFF, 0xD8, 0xFF, 0xE0}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("expected PUT, got %s", r.Method)
			}
			if r.URL.Path != "/playlists/pl1/images" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Content-Type"); got != "image/jpeg" {
				t.Errorf("expected image/jpeg content type, got %q", got)
			}

			body := make([]byte, r.ContentLength)
			r.Body.Read(body)
			if string(body) != base64.StdEncoding.EncodeToString(image) {
				t.Error("expected base64-encoded image body")
			}

			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		client := NewSpotifyClient(seededStore(), server.URL, nil)
		if err := client.UploadImage(ctx, "s1", "pl1", image); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("MyPlaylists", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/playlists" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("limit"); got != "20" {
				t.Errorf("expected limit=20, got %q", got)
			}
			w.Write([]byte(`{"items": [
				{"id": "pl1", "name": "First", "external_urls": {"spotify": "u1"}, "images": [{"url": "img1"}]},
				{"id": "pl2", "name": "Second", "external_urls": {"spotify": "u2"}, "images": []}
			]}`))
		}))
		defer server.Close()

		client := NewSpotifyClient(seededStore(), server.URL, nil)
		playlists, err := client.MyPlaylists(ctx, "s1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}
		if playlists[0].ImageURL != "img1" {
			t.Errorf("expected first playlist image, got %s", playlists[0].ImageURL)
		}

		encoded, _ := json.Marshal(playlists[1])
		if strings.Contains(string(encoded), "image_url") {
			t.Errorf("expected image_url omitted for playlist without images, got %s", encoded)
		}
	})
}
