package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kendala/planner/internal/auth"
)

// TokenVerifier checks a bearer token and returns its claims.
// *auth.Verifier satisfies it.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// NewAuthHandler returns a middleware that requires an
// "Authorization: Bearer <token>" header carrying a token v accepts.
// The owner id from the token is stored with auth.WithUserID; requests
// without a valid token get a 401 JSON error and never reach next.
func NewAuthHandler(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "bearer token required")
				return
			}

			claims, err := v.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}

			noteOwner(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// writeError writes the API's {"error":{"code","message"}} body.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
