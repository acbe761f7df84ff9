package planner

import (
	"github.com/FACorreiaa/go-trip-planner/internal/types"
	"github.com/google/uuid"
)

// DetectChanges diffs two trip snapshots and returns the ids of items that
// are new or modified in newTrip relative to oldTrip. A nil oldTrip (first
// trip ever set) yields an empty set: nothing is highlighted on first load.
// Items that were removed do not appear; they simply vanish from the view.
func DetectChanges(oldTrip, newTrip *types.Trip) map[uuid.UUID]struct{} {
	changed := make(map[uuid.UUID]struct{})
	if oldTrip == nil || newTrip == nil {
		return changed
	}

	oldIndex := indexItems(oldTrip)
	for _, day := range newTrip.Days {
		for _, item := range day.Items {
			prev, ok := oldIndex[item.ID]
			if !ok || types.TrackedFieldsChanged(prev, item) {
				changed[item.ID] = struct{}{}
			}
		}
	}
	return changed
}

func indexItems(t *types.Trip) map[uuid.UUID]types.ItineraryItem {
	index := make(map[uuid.UUID]types.ItineraryItem)
	for _, day := range t.Days {
		for _, item := range day.Items {
			index[item.ID] = item
		}
	}
	return index
}
