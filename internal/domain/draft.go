package domain

import "github.com/google/uuid"

// Draft is a serialisable snapshot of the itinerary store's working copy.
// It is what the local cache persists between CLI invocations.
type Draft struct {
	ActiveTripID uuid.UUID     `json:"active_trip_id"`
	Title        string        `json:"title"`
	Destination  string        `json:"destination"`
	DayCount     int           `json:"day_count"`
	SelectedDay  int           `json:"selected_day"`
	Itinerary    []Item        `json:"itinerary"`
	SavedTrips   []TripSummary `json:"saved_trips"`

	// SavedHash is the structural hash of the trip as last loaded or saved.
	// Zero means the working copy has never been synced.
	SavedHash uint64 `json:"saved_hash,omitempty"`
}
