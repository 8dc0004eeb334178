package itinerary

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/kendala/planner/internal/domain"
)

// NormalizeInput trims the free-text fields of in, defaults an empty Type to
// activity, and validates the result. Rules:
//   - Activity and Location must be non-blank.
//   - Time must be a valid "HH:MM"; it is rewritten zero-padded.
//   - Type must be one of domain.ItemTypes.
//   - Cost must be a finite, non-negative number.
//
// Returns the normalized input, or a wrapped domain.ErrValidation.
func NormalizeInput(in domain.ActivityInput) (domain.ActivityInput, error) {
	in.Activity = strings.TrimSpace(in.Activity)
	in.Location = strings.TrimSpace(in.Location)
	in.Time = strings.TrimSpace(in.Time)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Image = strings.TrimSpace(in.Image)
	if in.Type == "" {
		in.Type = domain.ItemActivity
	}

	if in.Activity == "" {
		return in, fmt.Errorf("%w: activity is required", domain.ErrValidation)
	}
	if in.Location == "" {
		return in, fmt.Errorf("%w: location is required", domain.ErrValidation)
	}
	minutes, err := domain.ParseClock(in.Time)
	if err != nil {
		return in, err
	}
	in.Time = domain.FormatClock(minutes)
	if !in.Type.Valid() {
		return in, fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, in.Type)
	}
	if math.IsNaN(in.Cost) || math.IsInf(in.Cost, 0) {
		return in, fmt.Errorf("%w: cost must be a number", domain.ErrValidation)
	}
	if in.Cost < 0 {
		return in, fmt.Errorf("%w: cost must not be negative", domain.ErrValidation)
	}
	return in, nil
}

// ValidateTrip enforces the rules a trip must satisfy before it is stored:
//   - Title must be non-blank.
//   - DayCount must be at least 1.
//   - Every item has a non-nil id, unique within the trip.
//   - Every item's Day is within 1..DayCount.
//   - Every item passes NormalizeInput.
func ValidateTrip(trip domain.Trip) error {
	_, err := NormalizeTrip(trip)
	return err
}

// NormalizeTrip validates trip as ValidateTrip does and returns a copy with
// its text fields trimmed and every item normalized.
func NormalizeTrip(trip domain.Trip) (domain.Trip, error) {
	trip.Title = strings.TrimSpace(trip.Title)
	trip.Destination = strings.TrimSpace(trip.Destination)
	if trip.Title == "" {
		return trip, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if trip.DayCount < 1 {
		return trip, fmt.Errorf("%w: day_count must be at least 1", domain.ErrValidation)
	}

	items := make([]domain.Item, len(trip.Itinerary))
	seen := make(map[uuid.UUID]bool, len(trip.Itinerary))
	for i, it := range trip.Itinerary {
		if it.ID == uuid.Nil {
			return trip, fmt.Errorf("%w: itinerary[%d]: id is required", domain.ErrValidation, i)
		}
		if seen[it.ID] {
			return trip, fmt.Errorf("%w: itinerary[%d]: duplicate id %s", domain.ErrValidation, i, it.ID)
		}
		seen[it.ID] = true

		if it.Day < 1 || it.Day > trip.DayCount {
			return trip, fmt.Errorf("%w: itinerary[%d]: day %d outside 1..%d", domain.ErrValidation, i, it.Day, trip.DayCount)
		}
		in, err := NormalizeInput(inputOf(it))
		if err != nil {
			return trip, fmt.Errorf("itinerary[%d]: %w", i, err)
		}
		items[i] = it.Apply(in)
	}
	trip.Itinerary = items
	return trip, nil
}

func inputOf(it domain.Item) domain.ActivityInput {
	return domain.ActivityInput{
		Time:     it.Time,
		Activity: it.Activity,
		Type:     it.Type,
		Cost:     it.Cost,
		Location: it.Location,
		Notes:    it.Notes,
		Image:    it.Image,
	}
}
