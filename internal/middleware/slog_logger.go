package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// requestInfo is filled in by inner middleware so the logger, which runs
// outermost, can report it after the request completes.
type requestInfo struct {
	owner uuid.UUID
}

type requestInfoKey struct{}

// noteOwner records the authenticated owner for the request log line.
func noteOwner(ctx context.Context, owner uuid.UUID) {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		info.owner = owner
	}
}

// NewSlogLogger returns a middleware that logs each request as one structured
// line via log: method, path, status, bytes written, duration, request ID,
// and the authenticated owner when there is one. 5xx responses log at error
// level, everything else at info.
//
// Wire it after chimiddleware.RequestID so the request ID is available.
func NewSlogLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// WrapResponseWriter intercepts WriteHeader so we can read the
			// status code after the downstream handler has run.
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			info := &requestInfo{}

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			}
			if info.owner != uuid.Nil {
				attrs = append(attrs, "owner_id", info.owner.String())
			}
			log.Log(r.Context(), level, "request", attrs...)
		})
	}
}
