package types

import (
	"time"

	"github.com/google/uuid"
)

// ItemType classifies an itinerary item. The set is closed; the conversation
// engine and the UI both pick from these values.
type ItemType string

const (
	ItemTypeSight      ItemType = "sight"
	ItemTypeFood       ItemType = "food"
	ItemTypeMuseum     ItemType = "museum"
	ItemTypeHike       ItemType = "hike"
	ItemTypeExperience ItemType = "experience"
	ItemTypeTransport  ItemType = "transport"
	ItemTypeRest       ItemType = "rest"
)

// GeoPoint is a geocoded location attached to an item.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// ItineraryItem is a single scheduled activity, transport leg or rest period.
// ID is generated at creation and never changes; every other field is mutable.
type ItineraryItem struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Type         ItemType  `json:"type"`
	StartTime    string    `json:"start_time,omitempty"` // HH:MM, local to the day
	EndTime      string    `json:"end_time,omitempty"`   // HH:MM, local to the day
	Duration     string    `json:"duration,omitempty"`   // free text, e.g. "2h"
	Notes        string    `json:"notes,omitempty"`
	Cost         *float64  `json:"cost,omitempty"`
	CostCategory string    `json:"cost_category,omitempty"`
	Location     *GeoPoint `json:"location,omitempty"`
}

// Day is one calendar day's ordered slate of activities. Item order is
// meaningful and must survive every mutation except explicit reorder/move.
type Day struct {
	Date     time.Time       `json:"date"` // day granularity
	Location string          `json:"location,omitempty"`
	Items    []ItineraryItem `json:"items"`
}

// Trip is the root itinerary document for one travel plan. StartDate and
// EndDate are nil for a dateless draft; when set they bound Days and are
// auto-extended (never shrunk) as items land outside them.
type Trip struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Destination   string     `json:"destination"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Days          []Day      `json:"days"`
	Pace          string     `json:"pace,omitempty"`
	Interests     []string   `json:"interests,omitempty"`
	CoverPhotoURL string     `json:"cover_photo_url,omitempty"`
	Budget        *float64   `json:"budget,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TripSnapshot is a persisted trip together with its conversation history.
type TripSnapshot struct {
	Trip     *Trip         `json:"trip"`
	Messages []ChatMessage `json:"messages"`
}

// TripPatch is a partial top-level update to a Trip. Nil pointer fields are
// absent. Days carries special meaning: when nil, no item-level change
// detection runs for the patch (pure metadata edits like a rename).
type TripPatch struct {
	Destination   *string    `json:"destination,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Days          []Day      `json:"days,omitempty"`
	Pace          *string    `json:"pace,omitempty"`
	Interests     []string   `json:"interests,omitempty"`
	CoverPhotoURL *string    `json:"cover_photo_url,omitempty"`
	Budget        *float64   `json:"budget,omitempty"`
}

// ItemUpdate is a partial field update applied to an item in place.
type ItemUpdate struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Type         *ItemType `json:"type,omitempty"`
	StartTime    *string   `json:"start_time,omitempty"`
	EndTime      *string   `json:"end_time,omitempty"`
	Duration     *string   `json:"duration,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	Cost         *float64  `json:"cost,omitempty"`
	CostCategory *string   `json:"cost_category,omitempty"`
	Location     *GeoPoint `json:"location,omitempty"`
}

// TrackedFieldsChanged reports whether an item edit counts as a modification
// for highlight purposes. Cost and location are deliberately excluded so that
// background geocoding enrichment never flags items as changed.
func TrackedFieldsChanged(a, b ItineraryItem) bool {
	return a.Title != b.Title ||
		a.Description != b.Description ||
		a.Type != b.Type ||
		a.Duration != b.Duration ||
		a.StartTime != b.StartTime ||
		a.EndTime != b.EndTime ||
		a.Notes != b.Notes
}

// SameCalendarDay compares two timestamps at day granularity, ignoring the
// time-of-day component.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
