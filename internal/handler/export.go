package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/oapi-codegen/runtime"

	"github.com/kendala/planner/internal/auth"
	"github.com/kendala/planner/internal/domain"
	"github.com/kendala/planner/internal/itinerary"
)

// ExportRowResponse is one row of the JSON export.
type ExportRowResponse struct {
	TripID      string  `json:"trip_id"`
	TripTitle   string  `json:"trip_title"`
	Destination string  `json:"destination"`
	Day         int     `json:"day,omitempty"`
	Position    int     `json:"position,omitempty"`
	Time        string  `json:"time,omitempty"`
	Activity    string  `json:"activity,omitempty"`
	Type        string  `json:"type,omitempty"`
	Cost        float64 `json:"cost"`
	Location    string  `json:"location,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// GetExport handles GET /export: a flat table of every item of every trip
// the caller owns. ?format=csv returns CSV; the default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		unauthenticated(w)
		return
	}

	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		badRequest(w, "invalid format parameter")
		return
	}
	wantCSV := format != nil && *format == "csv"
	if format != nil && !wantCSV && *format != "json" {
		badRequest(w, "format must be csv or json")
		return
	}

	rows, err := s.export.Export(r.Context(), owner)
	if err != nil {
		s.serviceError(w, r, err, "export")
		return
	}

	if wantCSV {
		var buf bytes.Buffer
		if err := itinerary.WriteCSV(&buf, rows); err != nil {
			s.serviceError(w, r, err, "export")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="itineraries.csv"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
		return
	}

	out := make([]ExportRowResponse, len(rows))
	for i, row := range rows {
		out[i] = exportRowToResponse(row)
	}
	writeJSON(w, http.StatusOK, out)
}

func exportRowToResponse(r domain.ExportRow) ExportRowResponse {
	return ExportRowResponse(r)
}
