package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendala/planner/internal/client"
	"github.com/kendala/planner/internal/domain"
)

const token = "session-token"

// newServer starts an httptest server that rejects requests lacking the
// expected bearer header before handing them to h.
func newServer(t *testing.T, h http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": map[string]string{"code": "unauthenticated", "message": "authentication required"},
			})
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return client.New(srv.URL + "/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSaveTrip_PostsNewTrip(t *testing.T) {
	assigned := uuid.New()
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/trips", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "id")
		assert.Equal(t, "Shymkent", body["title"])
		assert.Equal(t, []any{}, body["itinerary"])

		writeJSON(w, http.StatusCreated, map[string]any{"id": assigned, "title": "Shymkent", "day_count": 1})
	})

	id, err := c.SaveTrip(context.Background(), token, domain.Trip{Title: "Shymkent", DayCount: 1})

	require.NoError(t, err)
	assert.Equal(t, assigned, id)
}

func TestSaveTrip_PutsExistingTrip(t *testing.T) {
	existing := uuid.New()
	item := domain.Item{ID: uuid.New(), Day: 1, Time: "08:00", Activity: "Breakfast", Type: domain.ItemFood, Cost: 4, Location: "Hotel"}
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/trips/"+existing.String(), r.URL.Path)

		var body struct {
			Itinerary []domain.Item `json:"itinerary"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []domain.Item{item}, body.Itinerary)

		writeJSON(w, http.StatusOK, map[string]any{"id": existing})
	})

	id, err := c.SaveTrip(context.Background(), token, domain.Trip{
		ID: existing, Title: "Aktau", DayCount: 1, Itinerary: []domain.Item{item},
	})

	require.NoError(t, err)
	assert.Equal(t, existing, id)
}

func TestGetTrip(t *testing.T) {
	id := uuid.New()
	updated := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/trips/"+id.String(), r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"id": id, "title": "Burabay", "destination": "Akmola", "day_count": 2,
			"itinerary": []map[string]any{
				{"id": uuid.New(), "day": 2, "time": "10:00", "activity": "Boat", "type": "activity", "cost": 12, "location": "Lake"},
			},
			"created_at": updated, "updated_at": updated,
		})
	})

	trip, err := c.GetTrip(context.Background(), token, id)

	require.NoError(t, err)
	assert.Equal(t, id, trip.ID)
	assert.Equal(t, 2, trip.DayCount)
	require.Len(t, trip.Itinerary, 1)
	assert.Equal(t, 12.0, trip.Itinerary[0].Cost)
	assert.True(t, updated.Equal(trip.UpdatedAt))
}

func TestListTrips_WalksPages(t *testing.T) {
	all := make([]domain.TripSummary, 5)
	for i := range all {
		all[i] = domain.TripSummary{ID: uuid.New(), Title: fmt.Sprintf("trip %d", i), DayCount: 1}
	}

	var pages []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		pages = append(pages, page)

		start := min((page-1)*limit, len(all))
		end := min(start+limit, len(all))
		writeJSON(w, http.StatusOK, map[string]any{
			"data":       all[start:end],
			"pagination": map[string]int{"page": page, "limit": limit, "total": len(all)},
		})
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithPageSize(2, 10))
	got, err := c.ListTrips(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, pages)
	require.Len(t, got, 5)
	assert.Equal(t, all[4].ID, got[4].ID)
}

func TestListTrips_EmptyIsNonNil(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}, "pagination": map[string]int{"page": 1, "limit": 100, "total": 0}})
	})

	got, err := c.ListTrips(context.Background(), token)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDeleteTrip(t *testing.T) {
	id := uuid.New()
	var called bool
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/trips/"+id.String(), r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteTrip(context.Background(), token, id))
	assert.True(t, called)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusUnprocessableEntity, domain.ErrValidation},
		{http.StatusInternalServerError, domain.ErrRemote},
		{http.StatusBadGateway, domain.ErrRemote},
		{http.StatusRequestEntityTooLarge, domain.ErrRemote},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, map[string]any{"error": map[string]string{"code": "x", "message": "day 4 outside 1..3"}})
			})

			_, err := c.GetTrip(context.Background(), token, uuid.New())

			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "day 4 outside 1..3")
		})
	}
}

func TestRejectedToken_IsUnauthenticated(t *testing.T) {
	c := newServer(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be reached")
	})

	err := c.DeleteTrip(context.Background(), "stale-token", uuid.New())

	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
}

func TestEmptyToken_NoRequest(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls++ }))
	defer srv.Close()

	_, err := client.New(srv.URL).ListTrips(context.Background(), "")

	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Zero(t, calls)
}

func TestTransportFailure_IsRemote(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := client.New(url).GetTrip(context.Background(), token, uuid.New())

	require.ErrorIs(t, err, domain.ErrRemote)
}

func TestTimeout_IsRemote(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { <-release }))
	defer srv.Close()
	defer close(release)

	c := client.New(srv.URL, client.WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	_, err := c.GetTrip(context.Background(), token, uuid.New())

	require.ErrorIs(t, err, domain.ErrRemote)
}
