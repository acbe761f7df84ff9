package chat

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func TestParseAssistantReplyFullTrip(t *testing.T) {
	raw := `{
		"message": "Here is a two day plan for Lisbon.",
		"trip": {
			"destination": "Lisbon",
			"start_date": "2025-06-01",
			"end_date": "2025-06-02",
			"days": [
				{"date": "2025-06-01", "location": "Lisbon", "items": [
					{"title": "Castelo de São Jorge", "type": "sight", "start_time": "09:00"},
					{"title": "Time Out Market", "type": "food"}
				]},
				{"date": "2025-06-02", "location": "Lisbon", "items": [
					{"title": "MAAT", "type": "museum"}
				]}
			]
		},
		"suggestion": "Want me to add a day trip to Sintra?"
	}`

	result, err := parseAssistantReply(raw)
	require.NoError(t, err)
	require.NotNil(t, result.Trip)
	assert.Nil(t, result.TripUpdate)
	assert.Equal(t, "Here is a two day plan for Lisbon.", result.Message)
	assert.Equal(t, "Want me to add a day trip to Sintra?", result.Suggestion)

	trip := result.Trip
	assert.Equal(t, "Lisbon", trip.Destination)
	require.NotNil(t, trip.StartDate)
	require.NotNil(t, trip.EndDate)
	require.Len(t, trip.Days, 2)
	require.Len(t, trip.Days[0].Items, 2)
	assert.Equal(t, "09:00", trip.Days[0].Items[0].StartTime)

	// Ids are generated on receipt, never left empty.
	for _, day := range trip.Days {
		for _, it := range day.Items {
			assert.NotEqual(t, uuid.Nil, it.ID)
		}
	}
}

func TestParseAssistantReplyKeepsKnownIDs(t *testing.T) {
	known := uuid.New()
	raw := `{"message": "Renamed it.", "trip": {"destination": "Lisbon", "days": [
		{"date": "2025-06-01", "items": [{"id": "` + known.String() + `", "title": "Renamed stop", "type": "sight"}]}
	]}}`

	result, err := parseAssistantReply(raw)
	require.NoError(t, err)
	assert.Equal(t, known, result.Trip.Days[0].Items[0].ID)
}

func TestParseAssistantReplyRejectsBogusIDs(t *testing.T) {
	raw := `{"message": "ok", "trip": {"days": [
		{"date": "2025-06-01", "items": [{"id": "item-1", "title": "Stop", "type": "sight"}]}
	]}}`

	result, err := parseAssistantReply(raw)
	require.NoError(t, err)
	id := result.Trip.Days[0].Items[0].ID
	assert.NotEqual(t, uuid.Nil, id)
	_, parseErr := uuid.Parse(id.String())
	assert.NoError(t, parseErr)
}

func TestParseAssistantReplyPartialUpdate(t *testing.T) {
	raw := `{"message": "Renamed your trip.", "trip_update": {"destination": "Northern Portugal"}}`

	result, err := parseAssistantReply(raw)
	require.NoError(t, err)
	assert.Nil(t, result.Trip)
	require.NotNil(t, result.TripUpdate)
	require.NotNil(t, result.TripUpdate.Destination)
	assert.Equal(t, "Northern Portugal", *result.TripUpdate.Destination)
	assert.Nil(t, result.TripUpdate.Days, "metadata-only patch must not carry days")
}

func TestParseAssistantReplyStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"message\": \"hi\"}\n```"
	result, err := parseAssistantReply(raw)
	require.NoError(t, err)
	assert.Equal(t, "hi", result.Message)
}

func TestParseAssistantReplyMalformed(t *testing.T) {
	_, err := parseAssistantReply("Sorry, I could not help with that.")
	assert.Error(t, err)
}

func TestParseAssistantReplyUnknownItemType(t *testing.T) {
	raw := `{"message": "ok", "trip": {"days": [
		{"date": "2025-06-01", "items": [{"title": "Mystery", "type": "spaceflight"}]}
	]}}`

	result, err := parseAssistantReply(raw)
	require.NoError(t, err)
	assert.Equal(t, types.ItemTypeExperience, result.Trip.Days[0].Items[0].Type)
}
