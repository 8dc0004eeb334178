package itinerary_test

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendala/planner/internal/domain"
	"github.com/kendala/planner/internal/itinerary"
)

func TestNormalizeInput(t *testing.T) {
	tests := []struct {
		name    string
		in      domain.ActivityInput
		wantErr bool
	}{
		{name: "valid", in: domain.ActivityInput{Time: "09:00", Activity: "Walk", Location: "Park", Type: domain.ItemActivity}},
		{name: "empty type defaults", in: domain.ActivityInput{Time: "09:00", Activity: "Walk", Location: "Park"}},
		{name: "blank activity", in: domain.ActivityInput{Time: "09:00", Activity: " ", Location: "Park"}, wantErr: true},
		{name: "blank location", in: domain.ActivityInput{Time: "09:00", Activity: "Walk", Location: "\t"}, wantErr: true},
		{name: "bad time", in: domain.ActivityInput{Time: "25:00", Activity: "Walk", Location: "Park"}, wantErr: true},
		{name: "empty time", in: domain.ActivityInput{Activity: "Walk", Location: "Park"}, wantErr: true},
		{name: "bad type", in: domain.ActivityInput{Time: "09:00", Activity: "Walk", Location: "Park", Type: "nap"}, wantErr: true},
		{name: "negative cost", in: domain.ActivityInput{Time: "09:00", Activity: "Walk", Location: "Park", Cost: -0.01}, wantErr: true},
		{name: "NaN cost", in: domain.ActivityInput{Time: "09:00", Activity: "Walk", Location: "Park", Cost: math.NaN()}, wantErr: true},
		{name: "infinite cost", in: domain.ActivityInput{Time: "09:00", Activity: "Walk", Location: "Park", Cost: math.Inf(1)}, wantErr: true},
		{name: "negative infinite cost", in: domain.ActivityInput{Time: "09:00", Activity: "Walk", Location: "Park", Cost: math.Inf(-1)}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := itinerary.NormalizeInput(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Type.Valid())
		})
	}
}

func TestNormalizeInput_PadsTime(t *testing.T) {
	got, err := itinerary.NormalizeInput(domain.ActivityInput{Time: "9:05", Activity: "Walk", Location: "Park"})
	require.NoError(t, err)
	assert.Equal(t, "09:05", got.Time)
}

func TestValidateTrip(t *testing.T) {
	valid := func() domain.Trip {
		return domain.Trip{
			Title:    "Silk Road",
			DayCount: 2,
			Itinerary: []domain.Item{
				{ID: uuid.New(), Day: 1, Time: "09:00", Activity: "Walk", Location: "Bukhara", Type: domain.ItemActivity},
				{ID: uuid.New(), Day: 2, Time: "10:00", Activity: "Train", Location: "Samarkand", Type: domain.ItemTravel, Cost: 12},
			},
		}
	}
	require.NoError(t, itinerary.ValidateTrip(valid()))

	tests := map[string]func(*domain.Trip){
		"blank title":    func(tr *domain.Trip) { tr.Title = "  " },
		"zero days":      func(tr *domain.Trip) { tr.DayCount = 0 },
		"nil item id":    func(tr *domain.Trip) { tr.Itinerary[0].ID = uuid.Nil },
		"duplicate id":   func(tr *domain.Trip) { tr.Itinerary[1].ID = tr.Itinerary[0].ID },
		"day too large":  func(tr *domain.Trip) { tr.Itinerary[1].Day = 3 },
		"day zero":       func(tr *domain.Trip) { tr.Itinerary[0].Day = 0 },
		"invalid item":   func(tr *domain.Trip) { tr.Itinerary[0].Location = "" },
		"negative price": func(tr *domain.Trip) { tr.Itinerary[1].Cost = -5 },
		"NaN price":      func(tr *domain.Trip) { tr.Itinerary[1].Cost = math.NaN() },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			trip := valid()
			mutate(&trip)
			assert.ErrorIs(t, itinerary.ValidateTrip(trip), domain.ErrValidation)
		})
	}
}

func TestNormalizeTrip_TrimsAndDefaults(t *testing.T) {
	id := uuid.New()
	got, err := itinerary.NormalizeTrip(domain.Trip{
		Title:       "  Silk Road ",
		Destination: " Uzbekistan",
		DayCount:    1,
		Itinerary:   []domain.Item{{ID: id, Day: 1, Time: "09:00", Activity: " Walk ", Location: "Khiva"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Silk Road", got.Title)
	assert.Equal(t, "Uzbekistan", got.Destination)
	require.Len(t, got.Itinerary, 1)
	assert.Equal(t, id, got.Itinerary[0].ID)
	assert.Equal(t, "Walk", got.Itinerary[0].Activity)
	assert.Equal(t, domain.ItemActivity, got.Itinerary[0].Type)
}
