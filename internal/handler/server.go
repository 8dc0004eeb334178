// Package handler implements the HTTP handlers for the trip-storage API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, export.go) but share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kendala/planner/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Save(ctx context.Context, owner uuid.UUID, trip domain.Trip) (domain.Trip, error)
	Get(ctx context.Context, owner, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, owner uuid.UUID, p domain.PaginationParams) ([]domain.TripSummary, int64, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

// ExportServicer defines the export operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context, owner uuid.UUID) ([]domain.ExportRow, error)
}

// Server holds the dependencies of every API handler.
type Server struct {
	trips  TripServicer
	export ExportServicer
	log    *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger discards handler diagnostics.
func NewServer(trips TripServicer, export ExportServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{trips: trips, export: export, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes returns the API router. authn guards every trip route; it must
// store the owner id with auth.WithUserID. /healthz and /openapi.yaml are
// public.
func (s *Server) Routes(authn func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.Get("/trips", s.ListTrips)
		r.Post("/trips", s.CreateTrip)
		r.Get("/trips/{id}", s.GetTrip)
		r.Put("/trips/{id}", s.PutTrip)
		r.Delete("/trips/{id}", s.DeleteTrip)
		r.Get("/export", s.GetExport)
	})

	return r
}
