package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kendala/planner/internal/domain"
	"github.com/kendala/planner/internal/itinerary"
	"github.com/kendala/planner/internal/repo"
)

// ExportService assembles a flat export of an owner's trips and items.
type ExportService struct {
	trips repo.TripRepo
}

// NewExportService constructs an ExportService backed by the trip repo.
func NewExportService(trips repo.TripRepo) *ExportService {
	return &ExportService{trips: trips}
}

// Export returns one ExportRow per item across all of owner's trips, trips
// most recently updated first. Trips with no items contribute one row with
// empty item fields.
func (s *ExportService) Export(ctx context.Context, owner uuid.UUID) ([]domain.ExportRow, error) {
	trips, err := s.trips.ListAll(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := []domain.ExportRow{}
	for _, t := range trips {
		rows = append(rows, itinerary.ExportRows(t)...)
	}
	return rows, nil
}
