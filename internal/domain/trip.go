// Package domain contains the core data types for the Kendala trip planner.
// This package depends only on uuid and is imported by every other internal
// package (itinerary, client, repo, service, handler, cli).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a named, day-bucketed collection of itinerary items.
// ID is uuid.Nil until the trip has been saved to remote storage for the
// first time; the storage service assigns it.
type Trip struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	DayCount    int       `json:"day_count"`
	Itinerary   []Item    `json:"itinerary"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// TripSummary is the list view of a saved trip. It never carries items.
type TripSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	DayCount    int       `json:"day_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summary returns the list view of t.
func (t Trip) Summary() TripSummary {
	return TripSummary{
		ID:          t.ID,
		Title:       t.Title,
		Destination: t.Destination,
		DayCount:    t.DayCount,
		UpdatedAt:   t.UpdatedAt,
	}
}
