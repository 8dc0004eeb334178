package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kendala/planner/internal/domain"
)

// ErrorDetail is the machine-readable code plus human-readable message of
// an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// notFound writes a 404. The caller supplies the message because the handler
// is the layer that knows what was being looked up.
func notFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, "not_found", message)
}

// invalid writes a 422 for a domain validation failure or a malformed body.
func invalid(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, "validation_error", message)
}

// badRequest writes a 400 for a parameter that could not be bound.
func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "bad_request", message)
}

func unauthenticated(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
}

// serviceError maps an error returned by a service to a response.
// Unknown errors are logged and reported as a bare 500.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		notFound(w, what+" not found")
	case errors.Is(err, domain.ErrValidation):
		invalid(w, unwrapMessage(err))
	default:
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part of a wrapped validation error.
// e.g. "service.TripService.Save: validation error: title is required" → "title is required"
// A position prefix such as "itinerary[2]: " that precedes the sentinel is kept.
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	const sentinel = "validation error: "
	i := strings.Index(msg, sentinel)
	if i < 0 {
		return msg
	}
	detail := msg[i+len(sentinel):]

	// Keep any "itinerary[n]: " context between the op prefix and the sentinel.
	head := msg[:i]
	if j := strings.LastIndex(head, "itinerary["); j >= 0 {
		return head[j:] + detail
	}
	return detail
}
