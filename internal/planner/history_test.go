package planner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func tripNamed(destination string) *types.Trip {
	return &types.Trip{
		ID:          uuid.New(),
		Destination: destination,
		Days: []types.Day{
			{Location: destination, Items: []types.ItineraryItem{
				{ID: uuid.New(), Title: "Walk " + destination, Type: types.ItemTypeSight},
			}},
		},
	}
}

func TestHistoryPushUndoRedo(t *testing.T) {
	h := NewHistory()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Nil(t, h.Undo())
	assert.Nil(t, h.Redo())

	h.Push(tripNamed("Lisbon"))
	h.Push(tripNamed("Porto"))
	h.Push(tripNamed("Faro"))
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	prev := h.Undo()
	require.NotNil(t, prev)
	assert.Equal(t, "Porto", prev.Destination)

	prev = h.Undo()
	require.NotNil(t, prev)
	assert.Equal(t, "Lisbon", prev.Destination)
	assert.False(t, h.CanUndo())
	assert.Nil(t, h.Undo())

	next := h.Redo()
	require.NotNil(t, next)
	assert.Equal(t, "Porto", next.Destination)
	next = h.Redo()
	require.NotNil(t, next)
	assert.Equal(t, "Faro", next.Destination)
	assert.Nil(t, h.Redo())
}

func TestHistoryTruncatesFutureOnPush(t *testing.T) {
	h := NewHistory()
	h.Push(tripNamed("Lisbon"))
	h.Push(tripNamed("Porto"))
	h.Push(tripNamed("Faro"))

	h.Undo()
	h.Undo()
	require.True(t, h.CanRedo())

	h.Push(tripNamed("Madeira"))
	assert.False(t, h.CanRedo())
	assert.Nil(t, h.Redo())

	prev := h.Undo()
	require.NotNil(t, prev)
	assert.Equal(t, "Lisbon", prev.Destination)
}

func TestHistoryCapsRetainedEntries(t *testing.T) {
	h := NewHistory()
	for i := 0; i < maxHistoryEntries+5; i++ {
		h.Push(tripNamed("Stop"))
	}
	assert.Equal(t, maxHistoryEntries, h.Len())

	// Walk all the way back; the oldest five snapshots are gone.
	steps := 0
	for h.CanUndo() {
		h.Undo()
		steps++
	}
	assert.Equal(t, maxHistoryEntries-1, steps)
}

func TestHistorySnapshotsAreIndependent(t *testing.T) {
	trip := tripNamed("Kyoto")
	h := NewHistory()
	h.Push(trip)
	h.Push(tripNamed("Osaka"))

	// Mutating the original after the push must not leak into the snapshot.
	trip.Destination = "changed"
	trip.Days[0].Items[0].Title = "changed"

	prev := h.Undo()
	require.NotNil(t, prev)
	assert.Equal(t, "Kyoto", prev.Destination)
	assert.Equal(t, "Walk Kyoto", prev.Days[0].Items[0].Title)

	// Mutating a returned snapshot must not corrupt the retained entry.
	prev.Days[0].Items[0].Title = "scribbled"
	h.Redo()
	again := h.Undo()
	require.NotNil(t, again)
	assert.Equal(t, "Walk Kyoto", again.Days[0].Items[0].Title)
}
