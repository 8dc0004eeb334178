// Package service contains the business logic for the trip-storage API.
// Services validate inputs, enforce ownership, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kendala/planner/internal/domain"
	"github.com/kendala/planner/internal/itinerary"
	"github.com/kendala/planner/internal/repo"
)

// TripService implements business logic for trip operations. Every method
// takes the authenticated owner; trips of other owners are invisible.
type TripService struct {
	repo repo.TripRepo
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo) *TripService {
	return &TripService{repo: r}
}

// Save validates trip and persists it for owner. A trip without an id is
// created and receives a new one; a trip with an id is written under that id,
// inserted if it does not exist yet.
func (s *TripService) Save(ctx context.Context, owner uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	trip, err := itinerary.NormalizeTrip(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Save: %w", err)
	}

	var saved domain.Trip
	if trip.ID == uuid.Nil {
		saved, err = s.repo.Create(ctx, owner, trip)
	} else {
		saved, err = s.repo.Upsert(ctx, owner, trip)
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Save: %w", err)
	}
	return saved, nil
}

// Get returns a fully hydrated trip.
func (s *TripService) Get(ctx context.Context, owner, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.repo.GetByID(ctx, owner, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return trip, nil
}

// ListPaged returns one page of summaries, most recently updated first, and
// the owner's total trip count. The slice is never nil.
func (s *TripService) ListPaged(ctx context.Context, owner uuid.UUID, p domain.PaginationParams) ([]domain.TripSummary, int64, error) {
	trips, total, err := s.repo.ListPaged(ctx, owner, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.TripSummary{}
	}
	return trips, total, nil
}

// Delete removes a trip.
func (s *TripService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}
