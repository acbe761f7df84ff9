package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Wire shapes for the model's reply. Dates arrive as ISO strings and ids as
// optional strings; both are normalized before anything reaches the store.
type assistantReply struct {
	Message    string    `json:"message"`
	Trip       *wireTrip `json:"trip,omitempty"`
	TripUpdate *wireTrip `json:"trip_update,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
}

type wireTrip struct {
	Destination   *string   `json:"destination,omitempty"`
	StartDate     string    `json:"start_date,omitempty"`
	EndDate       string    `json:"end_date,omitempty"`
	Days          []wireDay `json:"days,omitempty"`
	Pace          *string   `json:"pace,omitempty"`
	Interests     []string  `json:"interests,omitempty"`
	CoverPhotoURL *string   `json:"cover_photo_url,omitempty"`
	Budget        *float64  `json:"budget,omitempty"`
}

type wireDay struct {
	Date     string     `json:"date"`
	Location string     `json:"location,omitempty"`
	Items    []wireItem `json:"items"`
}

type wireItem struct {
	ID           string    `json:"id,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Type         string    `json:"type"`
	StartTime    string    `json:"start_time,omitempty"`
	EndTime      string    `json:"end_time,omitempty"`
	Duration     string    `json:"duration,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Cost         *float64  `json:"cost,omitempty"`
	CostCategory string    `json:"cost_category,omitempty"`
	Location     *types.GeoPoint `json:"location,omitempty"`
}

// parseAssistantReply turns the raw model text into a ChatResult. Ids coming
// from the model are honored when they parse as valid UUIDs, which keeps id
// continuity for items echoed back from the current trip; anything else gets
// a freshly generated id. A reply that is not valid JSON is an error; the caller
// surfaces it as a generic chat failure while keeping the raw exchange.
func parseAssistantReply(raw string) (*types.ChatResult, error) {
	cleaned := stripCodeFences(raw)

	var reply assistantReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse assistant reply JSON: %w", err)
	}

	result := &types.ChatResult{
		Message:    reply.Message,
		Suggestion: reply.Suggestion,
	}
	if reply.Trip != nil {
		result.Trip = convertTrip(reply.Trip)
	} else if reply.TripUpdate != nil {
		result.TripUpdate = convertPatch(reply.TripUpdate)
	}
	return result, nil
}

// stripCodeFences removes a surrounding markdown code fence, which models
// emit even when asked for bare JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func convertTrip(w *wireTrip) *types.Trip {
	trip := &types.Trip{}
	if w.Destination != nil {
		trip.Destination = *w.Destination
	}
	trip.StartDate = parseWireDate(w.StartDate)
	trip.EndDate = parseWireDate(w.EndDate)
	trip.Days = convertDays(w.Days)
	if w.Pace != nil {
		trip.Pace = *w.Pace
	}
	trip.Interests = w.Interests
	if w.CoverPhotoURL != nil {
		trip.CoverPhotoURL = *w.CoverPhotoURL
	}
	trip.Budget = w.Budget
	return trip
}

func convertPatch(w *wireTrip) *types.TripPatch {
	patch := &types.TripPatch{
		Destination:   w.Destination,
		StartDate:     parseWireDate(w.StartDate),
		EndDate:       parseWireDate(w.EndDate),
		Pace:          w.Pace,
		Interests:     w.Interests,
		CoverPhotoURL: w.CoverPhotoURL,
		Budget:        w.Budget,
	}
	if w.Days != nil {
		patch.Days = convertDays(w.Days)
	}
	return patch
}

func convertDays(days []wireDay) []types.Day {
	if days == nil {
		return nil
	}
	out := make([]types.Day, 0, len(days))
	for _, d := range days {
		day := types.Day{Location: d.Location}
		if parsed := parseWireDate(d.Date); parsed != nil {
			day.Date = *parsed
		}
		day.Items = make([]types.ItineraryItem, 0, len(d.Items))
		for _, it := range d.Items {
			day.Items = append(day.Items, convertItem(it))
		}
		out = append(out, day)
	}
	return out
}

func convertItem(w wireItem) types.ItineraryItem {
	item := types.ItineraryItem{
		Title:        w.Title,
		Description:  w.Description,
		Type:         normalizeItemType(w.Type),
		StartTime:    w.StartTime,
		EndTime:      w.EndTime,
		Duration:     w.Duration,
		Notes:        w.Notes,
		Cost:         w.Cost,
		CostCategory: w.CostCategory,
		Location:     w.Location,
	}
	// Ids are generated here, not trusted from the remote response. A valid
	// UUID is kept so edits to existing items keep their identity.
	if id, err := uuid.Parse(w.ID); err == nil && id != uuid.Nil {
		item.ID = id
	} else {
		item.ID = uuid.New()
	}
	return item
}

func normalizeItemType(t string) types.ItemType {
	switch types.ItemType(strings.ToLower(strings.TrimSpace(t))) {
	case types.ItemTypeSight, types.ItemTypeFood, types.ItemTypeMuseum,
		types.ItemTypeHike, types.ItemTypeExperience, types.ItemTypeTransport,
		types.ItemTypeRest:
		return types.ItemType(strings.ToLower(strings.TrimSpace(t)))
	default:
		return types.ItemTypeExperience
	}
}

// parseWireDate accepts a calendar date or a full timestamp; nil when empty
// or unparseable.
func parseWireDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
