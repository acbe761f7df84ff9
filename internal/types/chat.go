package types

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one turn of the conversation, persisted alongside the trip.
// Raw exchanges are kept even when the assistant reply failed to parse, for
// diagnostics.
type ChatMessage struct {
	ID        uuid.UUID   `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// ChatRequest is the editor's request for one conversation turn.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResult is the parsed outcome of a conversation turn. Exactly one of
// Trip (whole-trip replace) or TripUpdate (partial merge) may be set; both
// nil means a plain text reply.
type ChatResult struct {
	Message    string     `json:"message"`
	Trip       *Trip      `json:"trip,omitempty"`
	TripUpdate *TripPatch `json:"trip_update,omitempty"`
	Suggestion string     `json:"suggestion,omitempty"`
}

// ChatResponse is what the chat endpoint returns to the editor UI.
type ChatResponse struct {
	Message      string      `json:"message"`
	Trip         *Trip       `json:"trip,omitempty"`
	Suggestion   string      `json:"suggestion,omitempty"`
	ChangedItems []uuid.UUID `json:"changed_items,omitempty"`
}
