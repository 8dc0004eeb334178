package domain

import "github.com/google/uuid"

// ItemType labels an itinerary item for display grouping. It carries no
// behaviour beyond the label.
type ItemType string

const (
	ItemTravel   ItemType = "travel"
	ItemStay     ItemType = "stay"
	ItemActivity ItemType = "activity"
	ItemFood     ItemType = "food"
)

// ItemTypes lists every valid ItemType in display order.
var ItemTypes = []ItemType{ItemTravel, ItemStay, ItemActivity, ItemFood}

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTravel, ItemStay, ItemActivity, ItemFood:
		return true
	}
	return false
}

// Item is a single scheduled event within a trip.
// Day is 1-indexed. Time is a 24h "15:04" wall-clock string and is only the
// default sort key; the persisted order within a day is the slice order.
type Item struct {
	ID       uuid.UUID `json:"id"`
	Day      int       `json:"day"`
	Time     string    `json:"time"`
	Activity string    `json:"activity"`
	Type     ItemType  `json:"type"`
	Cost     float64   `json:"cost"`
	Location string    `json:"location"`
	Notes    string    `json:"notes,omitempty"`
	Image    string    `json:"image,omitempty"`
}

// ActivityInput carries the user-editable fields of an Item.
// It is used by add and edit; ID and Day are never taken from it.
type ActivityInput struct {
	Time     string   `json:"time"`
	Activity string   `json:"activity"`
	Type     ItemType `json:"type"`
	Cost     float64  `json:"cost"`
	Location string   `json:"location"`
	Notes    string   `json:"notes,omitempty"`
	Image    string   `json:"image,omitempty"`
}

// Apply copies the mutable fields of in onto it, preserving ID and Day.
func (it Item) Apply(in ActivityInput) Item {
	it.Time = in.Time
	it.Activity = in.Activity
	it.Type = in.Type
	it.Cost = in.Cost
	it.Location = in.Location
	it.Notes = in.Notes
	it.Image = in.Image
	return it
}
