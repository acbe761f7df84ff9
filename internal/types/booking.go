package types

import "time"

// FlightBooking is the record supplied by the booking source collaborator.
// DepartDate and ReturnDate carry day granularity; the *Time fields are
// enriched timestamps (exact departure/arrival) when the source has them.
type FlightBooking struct {
	Origin             string     `json:"origin"`
	Destination        string     `json:"destination"`
	Airline            string     `json:"airline,omitempty"`
	FlightNumber       string     `json:"flight_number,omitempty"`
	ReturnFlightNumber string     `json:"return_flight_number,omitempty"`
	Passengers         int        `json:"passengers"`
	BookingReference   string     `json:"booking_reference,omitempty"`
	Price              *float64   `json:"price,omitempty"` // total fare for the booking
	DepartDate         time.Time  `json:"depart_date"`
	ReturnDate         *time.Time `json:"return_date,omitempty"`

	DepartureTime       *time.Time `json:"departure_time,omitempty"`
	ArrivalTime         *time.Time `json:"arrival_time,omitempty"`
	ReturnDepartureTime *time.Time `json:"return_departure_time,omitempty"`
	ReturnArrivalTime   *time.Time `json:"return_arrival_time,omitempty"`
}

// IsRoundTrip reports whether the booking has a return leg.
func (b FlightBooking) IsRoundTrip() bool {
	return b.ReturnDate != nil
}
