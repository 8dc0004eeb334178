package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/kendala/planner/internal/auth"
	"github.com/kendala/planner/internal/domain"
)

// ItemBody is the wire form of an itinerary item.
type ItemBody struct {
	ID       uuid.UUID       `json:"id"`
	Day      int             `json:"day"`
	Time     string          `json:"time"`
	Activity string          `json:"activity"`
	Type     domain.ItemType `json:"type"`
	Cost     float64         `json:"cost"`
	Location string          `json:"location"`
	Notes    string          `json:"notes,omitempty"`
	Image    string          `json:"image,omitempty"`
}

// TripRequest is the body of POST /trips and PUT /trips/{id}.
// Item order is the manual order and is preserved.
type TripRequest struct {
	Title       string     `json:"title"`
	Destination string     `json:"destination"`
	DayCount    int        `json:"day_count"`
	Itinerary   []ItemBody `json:"itinerary"`
}

// TripResponse is a fully hydrated trip.
type TripResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Destination string     `json:"destination"`
	DayCount    int        `json:"day_count"`
	Itinerary   []ItemBody `json:"itinerary"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TripSummaryResponse is one entry of GET /trips.
type TripSummaryResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	DayCount    int       `json:"day_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TripListResponse is the body of GET /trips.
type TripListResponse struct {
	Data       []TripSummaryResponse `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

// CreateTrip handles POST /trips. The server assigns the id.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		unauthenticated(w)
		return
	}
	trip, ok := decodeTrip(w, r)
	if !ok {
		return
	}

	created, err := s.trips.Save(r.Context(), owner, trip)
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		unauthenticated(w)
		return
	}

	var page, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		badRequest(w, "invalid page parameter")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		badRequest(w, "invalid limit parameter")
		return
	}
	params := domain.NewPaginationParams(page, limit)

	trips, total, err := s.trips.ListPaged(r.Context(), owner, params)
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}

	data := make([]TripSummaryResponse, len(trips))
	for i, t := range trips {
		data[i] = TripSummaryResponse(t)
	}
	writeJSON(w, http.StatusOK, TripListResponse{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		unauthenticated(w)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.Get(r.Context(), owner, id)
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// PutTrip handles PUT /trips/{id}: the trip is stored under the path id,
// created if it does not exist yet.
func (s *Server) PutTrip(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		unauthenticated(w)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	trip, ok := decodeTrip(w, r)
	if !ok {
		return
	}
	trip.ID = id

	saved, err := s.trips.Save(r.Context(), owner, trip)
	if err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(saved))
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		unauthenticated(w)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), owner, id); err != nil {
		s.serviceError(w, r, err, "trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- binding and mapping helpers --------------------------------------------

// pathID binds the {id} path parameter, writing a 400 when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badRequest(w, "invalid trip id")
		return uuid.Nil, false
	}
	return id, true
}

// decodeTrip reads a TripRequest body. Oversized bodies get a 413, anything
// else unreadable a 422.
func decodeTrip(w http.ResponseWriter, r *http.Request) (domain.Trip, bool) {
	var body TripRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return domain.Trip{}, false
		}
		invalid(w, "request body must be a trip JSON object")
		return domain.Trip{}, false
	}
	return requestToTrip(body), true
}

// requestToTrip converts a TripRequest into a domain.Trip without an id.
func requestToTrip(body TripRequest) domain.Trip {
	items := make([]domain.Item, len(body.Itinerary))
	for i, it := range body.Itinerary {
		items[i] = domain.Item(it)
	}
	return domain.Trip{
		Title:       body.Title,
		Destination: body.Destination,
		DayCount:    body.DayCount,
		Itinerary:   items,
	}
}

// tripToResponse converts a domain.Trip into its wire form.
func tripToResponse(t domain.Trip) TripResponse {
	items := make([]ItemBody, len(t.Itinerary))
	for i, it := range t.Itinerary {
		items[i] = ItemBody(it)
	}
	return TripResponse{
		ID:          t.ID,
		Title:       t.Title,
		Destination: t.Destination,
		DayCount:    t.DayCount,
		Itinerary:   items,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
