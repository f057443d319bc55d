package server

import (
	"context"
	"net/http"

	"github.com/mwojcik/artistmix/internal/shared"
)

// SessionCookie names the cookie carrying the session identifier.
const SessionCookie = "artistmix_session"

type contextKey string

const sessionKey contextKey = "session_id"

// WithSession returns middleware that assigns every request a session
// identifier. An existing cookie is reused; otherwise a new identifier is
// generated and set. The identifier is available downstream via [SessionID].
func WithSession() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				sessionID = cookie.Value
			} else {
				sessionID = shared.GenerateID()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID extracts the session identifier assigned by [WithSession].
// Returns an empty string when the middleware did not run.
func SessionID(r *http.Request) string {
	if id, ok := r.Context().Value(sessionKey).(string); ok {
		return id
	}
	return ""
}
