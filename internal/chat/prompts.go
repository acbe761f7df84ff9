package chat

import (
	"encoding/json"
	"fmt"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// buildConversationPrompt composes the single-turn prompt: system-style
// instructions, the current trip as JSON context, and the user's message.
// The model must answer with one JSON object matching the ChatResult shape.
func buildConversationPrompt(message string, currentTrip *types.Trip) string {
	tripContext := "The user has no trip yet."
	if currentTrip != nil {
		if data, err := json.Marshal(currentTrip); err == nil {
			tripContext = "Current trip JSON:\n" + string(data)
		}
	}

	return fmt.Sprintf(`You are a travel planning assistant maintaining a trip itinerary.

%s

Reply with a single JSON object and nothing else, using this schema:
{
  "message": "short conversational reply shown to the user",
  "trip": { ... full replacement trip, only when building or rebuilding the whole itinerary ... },
  "trip_update": { ... partial top-level trip fields, only for small edits; include "days" only when item lists changed ... },
  "suggestion": "optional one-line follow-up suggestion"
}

Trip shape: destination, start_date, end_date, days: [{date, location, items: [{title, description, type, start_time, end_time, duration, notes, cost, cost_category}]}].
Item type must be one of: sight, food, museum, hike, experience, transport, rest.
Times are 24-hour HH:MM local to the day. Keep item ids from the current trip
when an item is unchanged or merely edited; omit ids for new items.
Set at most one of "trip" and "trip_update".

User message: %s`, tripContext, message)
}
