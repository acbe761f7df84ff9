package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// MockGeocoder is a mock implementation of the geocode Service interface
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, query string, proximity *types.GeoPoint) (*types.GeoPoint, error) {
	args := m.Called(ctx, query, proximity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GeoPoint), args.Error(1)
}

func TestEnrichLocationsFillsOnlyMissingOnes(t *testing.T) {
	located := item("Located")
	located.Location = &types.GeoPoint{Latitude: 38.7, Longitude: -9.1}
	missing := item("Missing")

	store := NewStore(testLogger())
	store.SetTrip(&types.Trip{
		Destination: "Lisbon",
		Days:        []types.Day{{Date: date("2025-06-01"), Items: []types.ItineraryItem{located, missing}}},
	})
	store.ClearChangedItems()
	store.MarkSaved()

	geo := new(MockGeocoder)
	point := &types.GeoPoint{Latitude: 38.71, Longitude: -9.13, Address: "Rua X"}
	geo.On("Geocode", mock.Anything, "Missing, Lisbon", located.Location).Return(point, nil).Once()

	enriched := EnrichLocations(context.Background(), store, geo, testLogger())

	assert.Equal(t, 1, enriched)
	trip := store.Trip()
	assert.Equal(t, point, trip.Days[0].Items[1].Location)
	geo.AssertExpectations(t)
}

func TestEnrichLocationsDoesNotHighlightOrEnterHistory(t *testing.T) {
	store := NewStore(testLogger())
	store.SetTrip(&types.Trip{
		Destination: "Lisbon",
		Days:        []types.Day{{Date: date("2025-06-01"), Items: []types.ItineraryItem{item("Castle")}}},
	})
	store.ClearChangedItems()

	geo := new(MockGeocoder)
	geo.On("Geocode", mock.Anything, mock.Anything, mock.Anything).
		Return(&types.GeoPoint{Latitude: 1, Longitude: 2}, nil)

	EnrichLocations(context.Background(), store, geo, testLogger())

	assert.Empty(t, store.ChangedItems())
	assert.False(t, store.CanUndo())
}

func TestEnrichLocationsSkipsFailedLookups(t *testing.T) {
	store := NewStore(testLogger())
	store.SetTrip(&types.Trip{
		Destination: "Lisbon",
		Days: []types.Day{{Date: date("2025-06-01"), Items: []types.ItineraryItem{
			item("Unfindable"), item("Findable"),
		}}},
	})

	geo := new(MockGeocoder)
	geo.On("Geocode", mock.Anything, "Unfindable, Lisbon", mock.Anything).
		Return(nil, errors.New("no results")).Once()
	point := &types.GeoPoint{Latitude: 38.7, Longitude: -9.1}
	geo.On("Geocode", mock.Anything, "Findable, Lisbon", mock.Anything).Return(point, nil).Once()

	enriched := EnrichLocations(context.Background(), store, geo, testLogger())

	assert.Equal(t, 1, enriched)
	trip := store.Trip()
	assert.Nil(t, trip.Days[0].Items[0].Location)
	assert.Equal(t, point, trip.Days[0].Items[1].Location)
}

func TestEnrichLocationsStopsOnCancelledContext(t *testing.T) {
	store := NewStore(testLogger())
	store.SetTrip(&types.Trip{
		Destination: "Lisbon",
		Days:        []types.Day{{Date: date("2025-06-01"), Items: []types.ItineraryItem{item("Castle")}}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	geo := new(MockGeocoder)
	enriched := EnrichLocations(ctx, store, geo, testLogger())

	assert.Equal(t, 0, enriched)
	geo.AssertNotCalled(t, "Geocode")
}
