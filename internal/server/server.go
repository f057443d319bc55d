// package server contains routing, middleware & handlers for the playlist builder web service
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the playlist builder service.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                // Use adds middleware to the router's middleware stack
	Handle(pattern string, handler http.Handler) // Handle registers a handler for a method-qualified pattern
	Handler(handler Handler)                     // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// LogRequests returns middleware that logs each request's method, path,
// and handling duration.
func LogRequests(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start),
			)
		})
	}
}
