// Authenticated request execution against the Spotify Web API.
//
// Endpoint shapes based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mwojcik/artistmix/internal/models"
	"github.com/mwojcik/artistmix/internal/shared"
	"golang.org/x/time/rate"
)

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID           string         `json:"id"`
	DisplayName  string         `json:"display_name"`
	ExternalURLs externalURLs   `json:"external_urls"`
	Images       []SpotifyImage `json:"images"`
}

// Reshape converts the profile payload into a [models.CurrentUser].
//
// ImageURL stays unset when the payload carries no images; the field is
// omitted from JSON output rather than emitted empty.
func (u SpotifyUser) Reshape() *models.CurrentUser {
	user := &models.CurrentUser{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		ExternalURL: u.ExternalURLs.Spotify,
	}
	if len(u.Images) > 0 {
		user.ImageURL = u.Images[0].URL
	}
	return user
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	ExternalURLs externalURLs   `json:"external_urls"`
	Images       []SpotifyImage `json:"images"`
}

// Reshape converts the artist payload into a [models.Artist].
func (a SpotifyArtist) Reshape() models.Artist {
	artist := models.Artist{
		ID:          a.ID,
		Name:        a.Name,
		ExternalURL: a.ExternalURLs.Spotify,
	}
	if len(a.Images) > 0 {
		artist.ImageURL = a.Images[0].URL
	}
	return artist
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	ExternalURLs externalURLs   `json:"external_urls"`
	Images       []SpotifyImage `json:"images"`
}

// Reshape converts the playlist payload into a [models.Playlist].
func (p SpotifyPlaylist) Reshape() models.Playlist {
	playlist := models.Playlist{
		ID:          p.ID,
		Name:        p.Name,
		ExternalURL: p.ExternalURLs.Spotify,
	}
	if len(p.Images) > 0 {
		playlist.ImageURL = p.Images[0].URL
	}
	return playlist
}

type searchArtistsResponse struct {
	Artists struct {
		Items []SpotifyArtist `json:"items"`
	} `json:"artists"`
}

type topTracksResponse struct {
	Tracks []struct {
		URI string `json:"uri"`
	} `json:"tracks"`
}

type paginatedPlaylists struct {
	Items []SpotifyPlaylist `json:"items"`
}

// SpotifyClient executes authenticated HTTP requests against the Spotify Web API.
//
// Requests are single-shot: no retry, no backoff, no timeout beyond the
// transport default. Outbound calls pass through a [rate.Limiter].
type SpotifyClient struct {
	store      CredentialStore
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyClient creates a client reading bearer tokens from the given store.
//
// baseURL defaults to the public Spotify API, client to [http.DefaultClient].
func NewSpotifyClient(store CredentialStore, baseURL string, client *http.Client) *SpotifyClient {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &SpotifyClient{
		store:      store,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(10), 3),
	}
}

// Execute performs one authenticated request and returns the raw JSON payload.
//
// The session must already hold a credential; executing without one is a
// precondition violation and returns [shared.ErrNoCredential]. Transport
// failures and non-JSON bodies collapse into [shared.ErrAPIRequest]. The
// response status is deliberately not inspected: an error payload from
// Spotify parses as JSON and flows back to the caller like any other body.
func (c *SpotifyClient) Execute(ctx context.Context, sessionID, method, endpoint string, body []byte, params url.Values) (json.RawMessage, error) {
	raw, _, err := c.do(ctx, sessionID, method, endpoint, body, params, "application/json")
	if err != nil {
		return nil, err
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: non-JSON response from %s", shared.ErrAPIRequest, endpoint)
	}

	return json.RawMessage(raw), nil
}

// do issues the HTTP call shared by Execute and UploadImage.
func (c *SpotifyClient) do(ctx context.Context, sessionID, method, endpoint string, body []byte, params url.Values, contentType string) ([]byte, int, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut:
	default:
		return nil, 0, fmt.Errorf("%w: unsupported method %s", shared.ErrInvalidArgument, method)
	}

	credential, err := c.store.Get(sessionID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load credential: %w", err)
	}
	if credential == nil {
		return nil, 0, fmt.Errorf("%w: %s", shared.ErrNoCredential, sessionID)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	apiURL := c.baseURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+credential.AccessToken())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	return raw, resp.StatusCode, nil
}

// Me retrieves the session's authenticated user profile.
func (c *SpotifyClient) Me(ctx context.Context, sessionID string) (*models.CurrentUser, error) {
	raw, err := c.Execute(ctx, sessionID, http.MethodGet, "/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var user SpotifyUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("%w: failed to decode profile: %v", shared.ErrAPIRequest, err)
	}

	return user.Reshape(), nil
}

// SearchArtist resolves a query string to its single best artist match.
//
// Zero search results is a distinct, reportable condition:
// [shared.ErrArtistNotFound].
func (c *SpotifyClient) SearchArtist(ctx context.Context, sessionID, query string) (*models.Artist, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "artist")
	params.Set("limit", "1")

	raw, err := c.Execute(ctx, sessionID, http.MethodGet, "/search", nil, params)
	if err != nil {
		return nil, err
	}

	var response searchArtistsResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to decode search results: %v", shared.ErrAPIRequest, err)
	}

	if len(response.Artists.Items) == 0 {
		return nil, fmt.Errorf("%w: %q", shared.ErrArtistNotFound, query)
	}

	artist := response.Artists.Items[0].Reshape()
	return &artist, nil
}

// ArtistTopTracks fetches the artist's top tracks in market US and returns
// the track URIs in the order the service listed them.
func (c *SpotifyClient) ArtistTopTracks(ctx context.Context, sessionID, artistID string) ([]string, error) {
	params := url.Values{}
	params.Set("market", "US")

	endpoint := fmt.Sprintf("/artists/%s/top-tracks", artistID)
	raw, err := c.Execute(ctx, sessionID, http.MethodGet, endpoint, nil, params)
	if err != nil {
		return nil, err
	}

	var response topTracksResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to decode top tracks: %v", shared.ErrAPIRequest, err)
	}

	uris := make([]string, 0, len(response.Tracks))
	for _, track := range response.Tracks {
		uris = append(uris, track.URI)
	}

	return uris, nil
}

// CreatePlaylist creates an empty playlist for the given user.
//
// The request body carries exactly name, description, and public.
func (c *SpotifyClient) CreatePlaylist(ctx context.Context, sessionID, userID, name, description string, public bool) (*models.Playlist, error) {
	body, err := json.Marshal(map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal playlist body: %w", err)
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", userID)
	raw, err := c.Execute(ctx, sessionID, http.MethodPost, endpoint, body, nil)
	if err != nil {
		return nil, err
	}

	var response SpotifyPlaylist
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to decode playlist: %v", shared.ErrAPIRequest, err)
	}

	playlist := response.Reshape()
	return &playlist, nil
}

// AddTracks attaches the comma-joined track URI sequence to the playlist via
// the uris query parameter.
func (c *SpotifyClient) AddTracks(ctx context.Context, sessionID, playlistID, trackURIs string) error {
	params := url.Values{}
	params.Set("uris", trackURIs)

	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	if _, err := c.Execute(ctx, sessionID, http.MethodPost, endpoint, nil, params); err != nil {
		return err
	}
	return nil
}

// UploadImage PUTs a base64-encoded JPEG as the playlist cover.
//
// The payload is the bare base64 body, not JSON, per the service convention.
func (c *SpotifyClient) UploadImage(ctx context.Context, sessionID, playlistID string, image []byte) error {
	encoded := base64.StdEncoding.EncodeToString(image)
	endpoint := fmt.Sprintf("/playlists/%s/images", playlistID)

	raw, status, err := c.do(ctx, sessionID, http.MethodPut, endpoint, []byte(encoded), nil, "image/jpeg")
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: image upload status %d: %s", shared.ErrAPIRequest, status, string(raw))
	}
	return nil
}

// MyPlaylists lists the session user's playlists, first page of 20.
func (c *SpotifyClient) MyPlaylists(ctx context.Context, sessionID string) ([]models.Playlist, error) {
	params := url.Values{}
	params.Set("limit", "20")

	raw, err := c.Execute(ctx, sessionID, http.MethodGet, "/me/playlists", nil, params)
	if err != nil {
		return nil, err
	}

	var response paginatedPlaylists
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to decode playlists: %v", shared.ErrAPIRequest, err)
	}

	playlists := make([]models.Playlist, 0, len(response.Items))
	for _, item := range response.Items {
		playlists = append(playlists, item.Reshape())
	}

	return playlists, nil
}
