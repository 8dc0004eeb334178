package itinerary_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendala/planner/internal/domain"
	"github.com/kendala/planner/internal/itinerary"
)

func TestGenerate_FillsDaysInOrder(t *testing.T) {
	req := itinerary.GenerateRequest{
		Days:     2,
		DayStart: "09:00",
		DayEnd:   "12:00",
		GapMin:   30,
		Suggestions: []itinerary.Suggestion{
			{Activity: "A", Location: "L", DurationMin: 60},  // 09:00-10:00
			{Activity: "B", Location: "L", DurationMin: 60},  // 10:30-11:30
			{Activity: "C", Location: "L", DurationMin: 60},  // day 2 09:00
			{Activity: "D", Location: "L", DurationMin: 120}, // day 2 10:30 would end 12:30; no room
		},
	}

	res, err := itinerary.Generate(req, nil)

	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, 1, res.Items[0].Day)
	assert.Equal(t, "09:00", res.Items[0].Time)
	assert.Equal(t, 1, res.Items[1].Day)
	assert.Equal(t, "10:30", res.Items[1].Time)
	assert.Equal(t, 2, res.Items[2].Day)
	assert.Equal(t, "09:00", res.Items[2].Time)
	assert.Equal(t, 2, res.DaysUsed)
	require.Len(t, res.Unplaced, 1)
	assert.Equal(t, "D", res.Unplaced[0].Activity)
}

func TestGenerate_DefaultsAndIDs(t *testing.T) {
	next := 0
	fixed := []uuid.UUID{uuid.New(), uuid.New()}
	newID := func() uuid.UUID {
		id := fixed[next]
		next++
		return id
	}

	res, err := itinerary.Generate(itinerary.GenerateRequest{
		Days: 1,
		Suggestions: []itinerary.Suggestion{
			{Activity: "Coffee", Location: "Cafe", Type: domain.ItemFood, Cost: 3},
			{Activity: "Museum", Location: "Center"},
		},
	}, newID)

	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, fixed, ids(res.Items))
	assert.Equal(t, itinerary.DefaultDayStart, res.Items[0].Time)
	assert.Equal(t, "10:30", res.Items[1].Time)
	assert.Equal(t, domain.ItemFood, res.Items[0].Type)
	assert.Equal(t, domain.ItemActivity, res.Items[1].Type)
}

func TestGenerate_TooLongForAnyDay(t *testing.T) {
	res, err := itinerary.Generate(itinerary.GenerateRequest{
		Days:        3,
		DayStart:    "10:00",
		DayEnd:      "11:00",
		Suggestions: []itinerary.Suggestion{{Activity: "Trek", Location: "Tian Shan", DurationMin: 600}},
	}, nil)

	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Len(t, res.Unplaced, 1)
	assert.Zero(t, res.DaysUsed)
}

func TestGenerate_Errors(t *testing.T) {
	tests := map[string]itinerary.GenerateRequest{
		"no days":            {Days: 0},
		"bad start":          {Days: 1, DayStart: "nine"},
		"end before start":   {Days: 1, DayStart: "18:00", DayEnd: "08:00"},
		"invalid suggestion": {Days: 1, Suggestions: []itinerary.Suggestion{{Activity: "", Location: "x"}}},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := itinerary.Generate(req, nil)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
