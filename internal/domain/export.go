package domain

// ExportRow is a single row in the flat itinerary export.
// One row per item, with trip fields repeated for every item. A trip with no
// items yields one row with zero values for all item fields.
type ExportRow struct {
	// Trip fields, repeated for every item.
	TripID      string
	TripTitle   string
	Destination string

	// Item fields, zero values when the trip has no items.
	Day      int
	Position int // 1-based position within the day, in persisted order
	Time     string
	Activity string
	Type     string
	Cost     float64
	Location string
	Notes    string
}
