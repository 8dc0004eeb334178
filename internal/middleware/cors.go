// Package middleware provides the HTTP middleware of the trip-storage API:
// CORS, request body limits, request logging, and bearer authentication.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers for browser
// clients of the trip API. Each entry in allowedOrigins must be a full origin
// (scheme + host, no trailing slash); an empty list allows none.
// Credentials are not allowed: the API authenticates with a bearer header,
// never cookies.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           600,
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}
