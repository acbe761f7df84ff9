package planner

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// MergeFlightBooking folds a flight booking into the current trip: one item
// for the outbound leg and, for round trips, a second for the return leg,
// each placed on the day matching its calendar date. Trip date bounds are
// extended (never shrunk) to cover the booking. Returns the index of the day
// that received the outbound leg, for scroll-to-result purposes, or -1 when
// no trip is loaded.
//
// Like conversation-driven changes, a booking merge is not undoable; the new
// items do enter the changed-item set so the UI highlights them.
func (s *Store) MergeFlightBooking(booking types.FlightBooking) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trip == nil {
		return -1
	}

	prev := s.trip
	next := CloneTrip(s.trip)

	outboundCost, returnCost := splitFare(booking)

	outbound := buildFlightItem(booking, false, outboundCost)
	outboundIdx := mergeLeg(next, dayOnly(booking.DepartDate), outbound,
		fmt.Sprintf("%s to %s", booking.Origin, booking.Destination))

	if booking.IsRoundTrip() {
		ret := buildFlightItem(booking, true, returnCost)
		// The return leg is merged against the post-outbound day sequence, so
		// its insertion point accounts for any day the outbound leg created.
		mergeLeg(next, dayOnly(*booking.ReturnDate), ret,
			fmt.Sprintf("%s to %s", booking.Destination, booking.Origin))
	}

	s.trip = next
	s.changed = DetectChanges(prev, next)
	s.unsaved = true
	s.aheadOfHistory = true
	s.logger.Debug("flight booking merged",
		slog.String("origin", booking.Origin),
		slog.String("destination", booking.Destination),
		slog.Bool("roundTrip", booking.IsRoundTrip()),
		slog.Int("outboundDay", outboundIdx))
	return outboundIdx
}

// mergeLeg places one flight item onto the day matching date, creating and
// positioning a new day when none matches, and extends the trip bounds.
// Returns the index of the receiving day.
func mergeLeg(trip *types.Trip, date time.Time, item types.ItineraryItem, dayLabel string) int {
	idx := findDayByDate(trip.Days, date)
	if idx >= 0 {
		// Flights are time-anchored and conventionally shown first in the day.
		trip.Days[idx].Items = append([]types.ItineraryItem{item}, trip.Days[idx].Items...)
	} else {
		day := types.Day{Date: date, Location: dayLabel, Items: []types.ItineraryItem{item}}
		switch {
		case len(trip.Days) == 0:
			trip.Days = []types.Day{day}
			idx = 0
		case trip.StartDate == nil && trip.EndDate == nil:
			// Dateless draft: the flight becomes day 1.
			trip.Days = append([]types.Day{day}, trip.Days...)
			idx = 0
		default:
			idx = chronologicalInsertIndex(trip.Days, date)
			trip.Days = append(trip.Days[:idx],
				append([]types.Day{day}, trip.Days[idx:]...)...)
		}
	}

	extendBounds(trip, date)
	return idx
}

func findDayByDate(days []types.Day, date time.Time) int {
	for i, d := range days {
		if types.SameCalendarDay(d.Date, date) {
			return i
		}
	}
	return -1
}

// chronologicalInsertIndex returns the position immediately before the first
// day strictly later than date, or the end when no day is later.
func chronologicalInsertIndex(days []types.Day, date time.Time) int {
	for i, d := range days {
		if dayOnly(d.Date).After(date) {
			return i
		}
	}
	return len(days)
}

// extendBounds widens the trip's date range to include date. Bounds only ever
// grow; a trip with no bounds at all gets both set from the booking.
func extendBounds(trip *types.Trip, date time.Time) {
	if trip.StartDate == nil || date.Before(dayOnly(*trip.StartDate)) {
		d := date
		trip.StartDate = &d
	}
	if trip.EndDate == nil || date.After(dayOnly(*trip.EndDate)) {
		d := date
		trip.EndDate = &d
	}
}

// splitFare divides a round-trip fare evenly (rounded to cents) between the
// two legs so per-item cost summaries stay meaningful. One-way fares go
// entirely to the single item.
func splitFare(b types.FlightBooking) (outbound, ret *float64) {
	if b.Price == nil {
		return nil, nil
	}
	if !b.IsRoundTrip() {
		v := *b.Price
		return &v, nil
	}
	half := math.Round(*b.Price/2*100) / 100
	rest := *b.Price - half
	return &half, &rest
}

func buildFlightItem(b types.FlightBooking, returnLeg bool, cost *float64) types.ItineraryItem {
	origin, destination := b.Origin, b.Destination
	flightNumber := b.FlightNumber
	departDate := b.DepartDate
	departAt, arriveAt := b.DepartureTime, b.ArrivalTime
	if returnLeg {
		origin, destination = b.Destination, b.Origin
		if b.ReturnFlightNumber != "" {
			flightNumber = b.ReturnFlightNumber
		}
		departDate = *b.ReturnDate
		departAt, arriveAt = b.ReturnDepartureTime, b.ReturnArrivalTime
	}

	return types.ItineraryItem{
		ID:           uuid.New(),
		Title:        fmt.Sprintf("Flight: %s → %s", origin, destination),
		Description:  flightDescription(b.Airline, flightNumber, b.Passengers, b.BookingReference),
		Type:         types.ItemTypeTransport,
		StartTime:    clockOf(departAt, departDate),
		EndTime:      clockOrEmpty(arriveAt),
		Cost:         cost,
		CostCategory: "transport",
	}
}

func flightDescription(airline, flightNumber string, passengers int, reference string) string {
	var parts []string
	if airline != "" {
		parts = append(parts, airline)
	}
	if flightNumber != "" {
		parts = append(parts, flightNumber)
	}
	if passengers > 0 {
		noun := "passengers"
		if passengers == 1 {
			noun = "passenger"
		}
		parts = append(parts, fmt.Sprintf("%d %s", passengers, noun))
	}
	if reference != "" {
		parts = append(parts, "Ref: "+reference)
	}
	return strings.Join(parts, " · ")
}

// clockOf formats the enriched timestamp as zero-padded 24-hour HH:MM,
// falling back to the best available date field.
func clockOf(enriched *time.Time, fallback time.Time) string {
	if enriched != nil {
		return enriched.Format("15:04")
	}
	return fallback.Format("15:04")
}

func clockOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

func dayOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
