package itinerary

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kendala/planner/internal/domain"
)

// Defaults applied by Generate when the request leaves a field empty.
const (
	DefaultDayStart    = "09:00"
	DefaultDayEnd      = "21:00"
	DefaultGapMin      = 30
	DefaultDurationMin = 60
)

// Suggestion is a candidate activity for auto-generation.
type Suggestion struct {
	Activity    string          `json:"activity"`
	Location    string          `json:"location"`
	Type        domain.ItemType `json:"type,omitempty"`
	Cost        float64         `json:"cost,omitempty"`
	DurationMin int             `json:"duration_min,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Image       string          `json:"image,omitempty"`
}

// GenerateRequest describes the itinerary to lay out.
type GenerateRequest struct {
	Days        int          `json:"days"`
	DayStart    string       `json:"day_start,omitempty"`
	DayEnd      string       `json:"day_end,omitempty"`
	GapMin      int          `json:"gap_min,omitempty"`
	Suggestions []Suggestion `json:"suggestions"`
}

// GenerateResult is the laid-out itinerary plus anything that did not fit.
type GenerateResult struct {
	Items    []domain.Item
	Unplaced []Suggestion
	DaysUsed int
}

// Generate lays suggestions out across req.Days days, in the order given.
// Each day is filled from DayStart; an activity is placed at the day's cursor
// if it ends by DayEnd, otherwise the next day is opened. The cursor advances
// by the activity's duration plus GapMin. Suggestions that fit no remaining
// day are returned in Unplaced.
//
// newID supplies item ids; pass nil to use uuid.New.
func Generate(req GenerateRequest, newID func() uuid.UUID) (GenerateResult, error) {
	if newID == nil {
		newID = uuid.New
	}
	if req.Days < 1 {
		return GenerateResult{}, fmt.Errorf("%w: days must be at least 1", domain.ErrValidation)
	}
	if req.DayStart == "" {
		req.DayStart = DefaultDayStart
	}
	if req.DayEnd == "" {
		req.DayEnd = DefaultDayEnd
	}
	if req.GapMin <= 0 {
		req.GapMin = DefaultGapMin
	}

	start, err := domain.ParseClock(req.DayStart)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("day_start: %w", err)
	}
	end, err := domain.ParseClock(req.DayEnd)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("day_end: %w", err)
	}
	if end <= start {
		return GenerateResult{}, fmt.Errorf("%w: day_end must be after day_start", domain.ErrValidation)
	}

	res := GenerateResult{Items: []domain.Item{}}
	day, cursor := 1, start

	for _, s := range req.Suggestions {
		in, err := NormalizeInput(domain.ActivityInput{
			Time:     domain.FormatClock(start),
			Activity: s.Activity,
			Type:     s.Type,
			Cost:     s.Cost,
			Location: s.Location,
			Notes:    s.Notes,
			Image:    s.Image,
		})
		if err != nil {
			return GenerateResult{}, fmt.Errorf("suggestion %q: %w", s.Activity, err)
		}

		dur := s.DurationMin
		if dur <= 0 {
			dur = DefaultDurationMin
		}
		if dur > end-start {
			res.Unplaced = append(res.Unplaced, s)
			continue
		}

		if cursor+dur > end {
			if day == req.Days {
				res.Unplaced = append(res.Unplaced, s)
				continue
			}
			day++
			cursor = start
		}

		in.Time = domain.FormatClock(cursor)
		res.Items = append(res.Items, domain.Item{ID: newID(), Day: day}.Apply(in))
		res.DaysUsed = day
		cursor += dur + req.GapMin
	}

	return res, nil
}
