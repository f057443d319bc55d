package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mwojcik/artistmix/internal/models"
	"github.com/mwojcik/artistmix/internal/shared"
	"github.com/mwojcik/artistmix/internal/tasks"
)

// stateCookie holds the OAuth state between the redirect out and the callback.
const stateCookie = "artistmix_oauth_state"

// Upload cap for cover images (JPEG, pre-encoding).
const maxImageBytes = 256 << 10

// Builder runs playlist workflows on behalf of a session.
type Builder interface {
	CurrentUser(ctx context.Context, sessionID string) (*models.CurrentUser, error)
	UserPlaylists(ctx context.Context, sessionID string) ([]models.Playlist, error)
	Build(ctx context.Context, sessionID string, req tasks.BuildRequest, progress chan<- tasks.ProgressUpdate) (*tasks.BuildResult, error)
}

// TokenFlow covers the authorization operations the web handlers delegate.
type TokenFlow interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, sessionID, code string) error
	Logout(sessionID string) error
}

// AppHandler serves the playlist builder's web routes.
// Implements the Handler interface for registration with a Router.
type AppHandler struct {
	builder Builder
	tokens  TokenFlow
	logger  *log.Logger
	mux     *http.ServeMux
}

// NewAppHandler creates an AppHandler wired to the given collaborators.
func NewAppHandler(builder Builder, tokens TokenFlow, logger *log.Logger) *AppHandler {
	h := &AppHandler{
		builder: builder,
		tokens:  tokens,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /spotify/get-auth-url", h.authRedirect)
	mux.HandleFunc("GET /spotify/redirect", h.callback)
	mux.HandleFunc("POST /create", h.create)
	mux.HandleFunc("GET /logout", h.logout)
	h.mux = mux

	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *AppHandler) Routes() []string {
	return []string{"/", "/spotify/get-auth-url", "/spotify/redirect", "/create", "/logout"}
}

func (h *AppHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type homePage struct {
	User      *models.CurrentUser `json:"user"`
	Playlists []models.Playlist   `json:"playlists,omitempty"`
}

// home reports the session's user and, when authenticated, their playlists.
// An unauthenticated session renders a null user, not an error.
func (h *AppHandler) home(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(r)

	user, err := h.builder.CurrentUser(r.Context(), sessionID)
	if err != nil {
		h.renderError(w, err)
		return
	}

	page := homePage{User: user}
	if user != nil {
		playlists, err := h.builder.UserPlaylists(r.Context(), sessionID)
		if err != nil {
			h.renderError(w, err)
			return
		}
		page.Playlists = playlists
	}

	renderJSON(w, http.StatusOK, page)
}

// authRedirect sends the browser to the authorization endpoint, leaving a
// state cookie behind for the callback to verify.
func (h *AppHandler) authRedirect(w http.ResponseWriter, r *http.Request) {
	state, err := shared.GenerateState()
	if err != nil {
		h.renderError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   300,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.tokens.AuthURL(state), http.StatusFound)
}

// callback completes the authorization code flow for a browser session.
func (h *AppHandler) callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		renderJSON(w, http.StatusBadRequest, errorBody{Error: "invalid state parameter"})
		return
	}

	// State is single-use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		renderJSON(w, http.StatusBadRequest, errorBody{Error: "authorization was denied"})
		return
	}

	if err := h.tokens.Exchange(r.Context(), SessionID(r), code); err != nil {
		h.renderError(w, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// create runs the playlist build from a multipart form submission.
//
// Fields: name, description, public ("on"/"true"), artists (repeated field
// or one comma-separated value), image (optional file part).
func (h *AppHandler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		renderJSON(w, http.StatusBadRequest, errorBody{Error: "malformed form submission"})
		return
	}

	req := tasks.BuildRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Public:      r.FormValue("public") == "on" || r.FormValue("public") == "true",
		Artists:     artistQueries(r.Form["artists"]),
	}

	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()
		image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
		if err != nil {
			renderJSON(w, http.StatusBadRequest, errorBody{Error: "unreadable image upload"})
			return
		}
		req.Image = image
	}

	result, err := h.builder.Build(r.Context(), SessionID(r), req, nil)
	if err != nil {
		h.renderError(w, err)
		return
	}

	renderJSON(w, http.StatusCreated, result)
}

// logout discards the session's credentials.
func (h *AppHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.tokens.Logout(SessionID(r)); err != nil {
		h.renderError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// artistQueries normalizes the artists form field: repeated fields pass
// through, a single comma-separated value is split, blanks are dropped.
func artistQueries(values []string) []string {
	if len(values) == 1 && strings.Contains(values[0], ",") {
		values = strings.Split(values[0], ",")
	}

	queries := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			queries = append(queries, trimmed)
		}
	}
	return queries
}

type errorBody struct {
	Error string `json:"error"`
}

// renderError maps domain failures to status codes and a JSON error body.
func (h *AppHandler) renderError(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", "error", err)

	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		renderJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, shared.ErrNotAuthenticated):
		renderJSON(w, http.StatusUnauthorized, errorBody{Error: "not authenticated"})
	case errors.Is(err, shared.ErrArtistNotFound):
		renderJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, shared.ErrAPIRequest):
		renderJSON(w, http.StatusBadGateway, errorBody{Error: "Issue with request"})
	default:
		renderJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
