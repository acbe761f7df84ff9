package planner

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func datedTrip(dates ...string) *types.Trip {
	trip := &types.Trip{ID: uuid.New(), Destination: "Lisbon"}
	for _, d := range dates {
		trip.Days = append(trip.Days, types.Day{Date: date(d), Location: "Lisbon", Items: []types.ItineraryItem{item("stop " + d)}})
	}
	if len(dates) > 0 {
		start := date(dates[0])
		end := date(dates[len(dates)-1])
		trip.StartDate = &start
		trip.EndDate = &end
	}
	return trip
}

func storeWith(t *testing.T, trip *types.Trip) *Store {
	t.Helper()
	s := NewStore(testLogger())
	s.SetTrip(trip)
	s.MarkSaved()
	s.ClearChangedItems()
	return s
}

func TestMergeFlightPrependsToMatchingDay(t *testing.T) {
	s := storeWith(t, datedTrip("2025-06-01", "2025-06-02"))

	idx := s.MergeFlightBooking(types.FlightBooking{
		Origin:      "LIS",
		Destination: "MAD",
		DepartDate:  date("2025-06-02"),
	})

	assert.Equal(t, 1, idx)
	got := s.Trip()
	require.Len(t, got.Days, 2)
	assert.Equal(t, "Flight: LIS → MAD", got.Days[1].Items[0].Title, "flight goes first in the day")
	assert.Len(t, got.Days[1].Items, 2)
}

func TestMergeFlightChronologicalInsertion(t *testing.T) {
	s := storeWith(t, datedTrip("2025-06-01", "2025-06-03", "2025-06-05"))

	idx := s.MergeFlightBooking(types.FlightBooking{
		Origin:      "LIS",
		Destination: "MAD",
		DepartDate:  date("2025-06-02"),
	})

	assert.Equal(t, 1, idx)
	got := s.Trip()
	require.Len(t, got.Days, 4)
	assert.True(t, types.SameCalendarDay(got.Days[1].Date, date("2025-06-02")))
	assert.True(t, types.SameCalendarDay(got.Days[2].Date, date("2025-06-03")))
}

func TestMergeFlightAppendsWhenLatest(t *testing.T) {
	s := storeWith(t, datedTrip("2025-06-01", "2025-06-03"))

	idx := s.MergeFlightBooking(types.FlightBooking{
		Origin:      "MAD",
		Destination: "LIS",
		DepartDate:  date("2025-06-09"),
	})

	got := s.Trip()
	assert.Equal(t, 2, idx)
	require.Len(t, got.Days, 3)
	assert.True(t, types.SameCalendarDay(got.Days[2].Date, date("2025-06-09")))
	require.NotNil(t, got.EndDate)
	assert.True(t, types.SameCalendarDay(*got.EndDate, date("2025-06-09")))
}

func TestMergeFlightBoundsMonotonicity(t *testing.T) {
	s := storeWith(t, datedTrip("2025-06-01", "2025-06-10"))

	s.MergeFlightBooking(types.FlightBooking{
		Origin:      "JFK",
		Destination: "LIS",
		DepartDate:  date("2025-05-28"),
	})

	got := s.Trip()
	require.NotNil(t, got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.True(t, types.SameCalendarDay(*got.StartDate, date("2025-05-28")), "start extends backwards")
	assert.True(t, types.SameCalendarDay(*got.EndDate, date("2025-06-10")), "end never shrinks")
}

func TestMergeFlightIntoEmptyTrip(t *testing.T) {
	s := storeWith(t, &types.Trip{ID: uuid.New(), Destination: "Lisbon"})

	idx := s.MergeFlightBooking(types.FlightBooking{
		Origin:      "JFK",
		Destination: "LIS",
		DepartDate:  date("2025-06-01"),
	})

	got := s.Trip()
	assert.Equal(t, 0, idx)
	require.Len(t, got.Days, 1)
	assert.Equal(t, "JFK to LIS", got.Days[0].Location)
	require.NotNil(t, got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.True(t, types.SameCalendarDay(*got.StartDate, date("2025-06-01")))
	assert.True(t, types.SameCalendarDay(*got.EndDate, date("2025-06-01")))
}

func TestMergeFlightIntoDatelessDraftInsertsFront(t *testing.T) {
	trip := &types.Trip{ID: uuid.New(), Destination: "Lisbon", Days: []types.Day{
		{Location: "somewhere", Items: []types.ItineraryItem{item("loose idea")}},
	}}
	s := storeWith(t, trip)

	idx := s.MergeFlightBooking(types.FlightBooking{
		Origin:      "JFK",
		Destination: "LIS",
		DepartDate:  date("2025-06-01"),
	})

	got := s.Trip()
	assert.Equal(t, 0, idx)
	require.Len(t, got.Days, 2)
	assert.Equal(t, "Flight: JFK → LIS", got.Days[0].Items[0].Title)
	assert.Equal(t, "loose idea", got.Days[1].Items[0].Title)
}

func TestMergeRoundTrip(t *testing.T) {
	s := storeWith(t, datedTrip("2025-06-02", "2025-06-03"))
	price := 500.01
	ret := date("2025-06-08")

	idx := s.MergeFlightBooking(types.FlightBooking{
		Origin:           "LIS",
		Destination:      "NRT",
		Airline:          "TAP Air Portugal",
		FlightNumber:     "TP342",
		Passengers:       2,
		BookingReference: "QX7RTL",
		Price:            &price,
		DepartDate:       date("2025-06-01"),
		ReturnDate:       &ret,
	})

	got := s.Trip()
	assert.Equal(t, 0, idx, "outbound day inserted before existing days")
	require.Len(t, got.Days, 4)

	outbound := got.Days[0].Items[0]
	returnLeg := got.Days[3].Items[0]
	assert.Equal(t, "Flight: LIS → NRT", outbound.Title)
	assert.Equal(t, "Flight: NRT → LIS", returnLeg.Title)
	assert.Equal(t, types.ItemTypeTransport, outbound.Type)
	assert.Contains(t, outbound.Description, "TAP Air Portugal")
	assert.Contains(t, outbound.Description, "TP342")
	assert.Contains(t, outbound.Description, "2 passengers")
	assert.Contains(t, outbound.Description, "Ref: QX7RTL")

	require.NotNil(t, outbound.Cost)
	require.NotNil(t, returnLeg.Cost)
	assert.InDelta(t, 250.01, *outbound.Cost, 0.001)
	assert.InDelta(t, 250.00, *returnLeg.Cost, 0.001)
	assert.InDelta(t, price, *outbound.Cost+*returnLeg.Cost, 0.001, "split fare sums to the total")

	require.NotNil(t, got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.True(t, types.SameCalendarDay(*got.StartDate, date("2025-06-01")))
	assert.True(t, types.SameCalendarDay(*got.EndDate, date("2025-06-08")))
}

func TestMergeOneWayFareAndTimes(t *testing.T) {
	s := storeWith(t, datedTrip("2025-06-01"))
	price := 129.99
	dep := time.Date(2025, 6, 1, 7, 5, 0, 0, time.UTC)
	arr := time.Date(2025, 6, 1, 9, 40, 0, 0, time.UTC)

	s.MergeFlightBooking(types.FlightBooking{
		Origin:        "LIS",
		Destination:   "CDG",
		Passengers:    1,
		Price:         &price,
		DepartDate:    date("2025-06-01"),
		DepartureTime: &dep,
		ArrivalTime:   &arr,
	})

	flight := s.Trip().Days[0].Items[0]
	require.NotNil(t, flight.Cost)
	assert.InDelta(t, 129.99, *flight.Cost, 0.001)
	assert.Equal(t, "07:05", flight.StartTime)
	assert.Equal(t, "09:40", flight.EndTime)
	assert.Contains(t, flight.Description, "1 passenger")
	assert.NotContains(t, flight.Description, "passengers")
}

func TestMergeFlightHighlightsButIsNotUndoable(t *testing.T) {
	s := storeWith(t, datedTrip("2025-06-01"))

	s.MergeFlightBooking(types.FlightBooking{
		Origin:      "LIS",
		Destination: "MAD",
		DepartDate:  date("2025-06-01"),
	})

	assert.Len(t, s.ChangedItems(), 1)
	assert.True(t, s.HasUnsavedChanges())
	assert.False(t, s.CanUndo())
}

func TestMergeFlightWithoutTrip(t *testing.T) {
	s := NewStore(testLogger())
	idx := s.MergeFlightBooking(types.FlightBooking{Origin: "LIS", Destination: "MAD", DepartDate: date("2025-06-01")})
	assert.Equal(t, -1, idx)
}
