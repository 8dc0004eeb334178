package itinerary

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"

	"github.com/kendala/planner/internal/domain"
)

// ExportRows flattens trip into one ExportRow per item, grouped by day
// ascending and in persisted order within each day.
// A trip with no items contributes one row with empty item fields.
func ExportRows(trip domain.Trip) []domain.ExportRow {
	base := domain.ExportRow{
		TripTitle:   trip.Title,
		Destination: trip.Destination,
	}
	if trip.ID != uuid.Nil {
		base.TripID = trip.ID.String()
	}

	if len(trip.Itinerary) == 0 {
		return []domain.ExportRow{base}
	}

	rows := make([]domain.ExportRow, 0, len(trip.Itinerary))
	for _, day := range Days(trip.Itinerary) {
		for i, it := range DayItems(trip.Itinerary, day) {
			row := base
			row.Day = it.Day
			row.Position = i + 1
			row.Time = it.Time
			row.Activity = it.Activity
			row.Type = string(it.Type)
			row.Cost = it.Cost
			row.Location = it.Location
			row.Notes = it.Notes
			rows = append(rows, row)
		}
	}
	return rows
}

// CSVHeader is the first record written by WriteCSV.
var CSVHeader = []string{
	"trip_id", "trip_title", "destination",
	"day", "position", "time", "activity", "type", "cost", "location", "notes",
}

// WriteCSV encodes rows as CSV with a CSVHeader first line.
// Day and position are left empty on the placeholder row of an empty trip.
func WriteCSV(w io.Writer, rows []domain.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("itinerary.WriteCSV: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(csvRecord(r)); err != nil {
			return fmt.Errorf("itinerary.WriteCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("itinerary.WriteCSV: %w", err)
	}
	return nil
}

func csvRecord(r domain.ExportRow) []string {
	rec := []string{r.TripID, r.TripTitle, r.Destination, "", "", r.Time, r.Activity, r.Type, "", r.Location, r.Notes}
	if r.Day > 0 {
		rec[3] = strconv.Itoa(r.Day)
		rec[4] = strconv.Itoa(r.Position)
		rec[8] = strconv.FormatFloat(r.Cost, 'f', 2, 64)
	}
	return rec
}
