package planner

import "github.com/FACorreiaa/go-trip-planner/internal/types"

// maxHistoryEntries bounds retained undo snapshots; the oldest entry is
// dropped once the cap is exceeded.
const maxHistoryEntries = 20

// History is a bounded undo/redo stack of independent trip snapshots.
// Entries are deep clones: they never share mutable structure with the live
// trip or with each other. Not safe for concurrent use; the owning Store
// serializes access.
type History struct {
	entries []*types.Trip
	cursor  int // -1 means empty
}

func NewHistory() *History {
	return &History{cursor: -1}
}

// Push discards any entries beyond the cursor (undoing then pushing loses the
// redo branch), appends a deep clone of the trip and advances the cursor.
func (h *History) Push(t *types.Trip) {
	if t == nil {
		return
	}
	h.entries = h.entries[:h.cursor+1]
	h.entries = append(h.entries, CloneTrip(t))
	h.cursor++
	if len(h.entries) > maxHistoryEntries {
		h.entries = h.entries[1:]
		h.cursor--
	}
}

// TruncateFuture drops the redo branch beyond the cursor without appending a
// snapshot. Used when a new edit starts from a state that already is the
// cursor entry, where Push would store a duplicate.
func (h *History) TruncateFuture() {
	if h.cursor < 0 {
		return
	}
	h.entries = h.entries[:h.cursor+1]
}

// Undo steps the cursor back and returns a clone of the snapshot now under
// it, or nil when there is nothing earlier to restore.
func (h *History) Undo() *types.Trip {
	if h.cursor <= 0 {
		return nil
	}
	h.cursor--
	return CloneTrip(h.entries[h.cursor])
}

// Redo steps the cursor forward and returns a clone of that snapshot, or nil
// when the cursor is already at the newest entry.
func (h *History) Redo() *types.Trip {
	if h.cursor >= len(h.entries)-1 {
		return nil
	}
	h.cursor++
	return CloneTrip(h.entries[h.cursor])
}

func (h *History) CanUndo() bool {
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Len reports the number of retained snapshots.
func (h *History) Len() int {
	return len(h.entries)
}
