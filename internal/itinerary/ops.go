// Package itinerary owns the trip planner's itinerary logic: day buckets,
// manual reordering, cost aggregation, validation, auto-generation, and the
// single-document Store that syncs the active trip with remote storage.
//
// The functions in this file are pure. They never mutate their input slice;
// every result is a fresh slice the caller may keep.
package itinerary

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/kendala/planner/internal/domain"
)

// TotalCost returns the sum of Cost over every item, across all days.
func TotalCost(items []domain.Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Cost
	}
	return total
}

// DayCost returns the sum of Cost over the items on day.
func DayCost(items []domain.Item, day int) float64 {
	var total float64
	for _, it := range items {
		if it.Day == day {
			total += it.Cost
		}
	}
	return total
}

// DayItems returns the items on day in persisted order, which is the order
// the last reorder produced.
func DayItems(items []domain.Item, day int) []domain.Item {
	out := []domain.Item{}
	for _, it := range items {
		if it.Day == day {
			out = append(out, it)
		}
	}
	return out
}

// SortedDayItems returns the items on day stable-sorted by Time ascending.
// This is the default view for a day that has not been reordered by hand.
// Items with an unparseable time sort after all valid ones.
func SortedDayItems(items []domain.Item, day int) []domain.Item {
	out := DayItems(items, day)
	slices.SortStableFunc(out, func(a, b domain.Item) int {
		return clockKey(a.Time) - clockKey(b.Time)
	})
	return out
}

func clockKey(s string) int {
	m, err := domain.ParseClock(s)
	if err != nil {
		return 24 * 60
	}
	return m
}

// ReorderDay returns a copy of items where the subsequence belonging to day
// follows orderedIDs. Items on other days keep their slots and relative order.
//
// orderedIDs must be a permutation of the ids currently on day; anything else
// (missing, extra, or repeated ids) is rejected with domain.ErrValidation.
func ReorderDay(items []domain.Item, day int, orderedIDs []uuid.UUID) ([]domain.Item, error) {
	current := DayItems(items, day)
	if len(current) != len(orderedIDs) {
		return nil, fmt.Errorf("%w: day %d has %d items, got %d ids", domain.ErrValidation, day, len(current), len(orderedIDs))
	}

	byID := make(map[uuid.UUID]domain.Item, len(current))
	for _, it := range current {
		byID[it.ID] = it
	}

	reordered := make([]domain.Item, 0, len(orderedIDs))
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		it, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: item %s is not on day %d", domain.ErrValidation, id, day)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: item %s listed twice", domain.ErrValidation, id)
		}
		seen[id] = true
		reordered = append(reordered, it)
	}

	// Write the new day order back into the slots the day already occupies.
	out := make([]domain.Item, len(items))
	next := 0
	for i, it := range items {
		if it.Day == day {
			out[i] = reordered[next]
			next++
			continue
		}
		out[i] = it
	}
	return out, nil
}

// Move returns a copy of items with the item id moved to position toIndex
// within its day. toIndex is clamped to the day's bounds.
// Returns domain.ErrNotFound if id is not in items.
func Move(items []domain.Item, id uuid.UUID, toIndex int) ([]domain.Item, error) {
	idx := slices.IndexFunc(items, func(it domain.Item) bool { return it.ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("itinerary.Move: %w", domain.ErrNotFound)
	}
	day := items[idx].Day

	ids := []uuid.UUID{}
	for _, it := range DayItems(items, day) {
		if it.ID != id {
			ids = append(ids, it.ID)
		}
	}
	toIndex = max(0, min(toIndex, len(ids)))
	ids = slices.Insert(ids, toIndex, id)

	return ReorderDay(items, day, ids)
}

// Remove returns a copy of items without the item id, and whether it was found.
func Remove(items []domain.Item, id uuid.UUID) ([]domain.Item, bool) {
	out := make([]domain.Item, 0, len(items))
	found := false
	for _, it := range items {
		if it.ID == id {
			found = true
			continue
		}
		out = append(out, it)
	}
	return out, found
}

// Edit returns a copy of items with the mutable fields of item id replaced
// by in, and whether it was found. ID and Day are preserved.
func Edit(items []domain.Item, id uuid.UUID, in domain.ActivityInput) ([]domain.Item, bool) {
	out := slices.Clone(items)
	for i, it := range out {
		if it.ID == id {
			out[i] = it.Apply(in)
			return out, true
		}
	}
	return out, false
}

// Days returns the distinct day numbers present in items, ascending.
func Days(items []domain.Item) []int {
	days := []int{}
	for _, it := range items {
		if !slices.Contains(days, it.Day) {
			days = append(days, it.Day)
		}
	}
	slices.Sort(days)
	return days
}
