package planner

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Store holds the live itinerary state for one editing session: the current
// trip, the changed-item highlight set, the unsaved flag and the undo/redo
// history. All mutations are copy-on-write; previous snapshots are never
// touched in place.
//
// Reference-not-found conditions (bad day index, unknown item id) silently
// no-op: these calls come from UI affordances already scoped to valid
// targets, so there is no error channel for them.
//
// Only direct user edits push history. Trips arriving from the conversation
// engine or the booking source are a forward-only narrative and are not
// undoable.
type Store struct {
	mu      sync.Mutex
	logger  *slog.Logger
	trip    *types.Trip
	history *History
	changed map[uuid.UUID]struct{}
	unsaved bool

	// aheadOfHistory is set while the live trip has diverged from the entry
	// under the history cursor: any mutation since the last undo/redo sets it,
	// undo/redo clear it. The first Undo while set snapshots the live state so
	// Redo can find its way back to it; a new edit while clear truncates the
	// redo branch without pushing a duplicate of the cursor entry.
	aheadOfHistory bool
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		logger:  logger,
		history: NewHistory(),
		changed: make(map[uuid.UUID]struct{}),
	}
}

// Trip returns a deep copy of the current trip, or nil when none is loaded.
func (s *Store) Trip() *types.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CloneTrip(s.trip)
}

// Loaded reports whether a trip is currently loaded.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trip != nil
}

// SetTrip installs a complete trip, as produced by the conversation engine.
// The change detector runs against the previous trip (if any) to populate
// the highlight set. History is not touched.
func (s *Store) SetTrip(trip *types.Trip) {
	if trip == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.changed = DetectChanges(s.trip, trip)
	s.trip = CloneTrip(trip)
	s.unsaved = true
	s.aheadOfHistory = true
	s.logger.Debug("trip replaced",
		slog.String("tripID", trip.ID.String()),
		slog.Int("days", len(trip.Days)),
		slog.Int("changedItems", len(s.changed)))
}

// UpdateTrip shallow-merges a partial update into the current trip. The
// changed-item set is recomputed only when the patch carries Days; a patch
// without Days is a pure metadata edit and leaves highlights untouched.
func (s *Store) UpdateTrip(patch types.TripPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trip == nil {
		return
	}

	next := CloneTrip(s.trip)
	if patch.Destination != nil {
		next.Destination = *patch.Destination
	}
	if patch.StartDate != nil {
		next.StartDate = cloneTime(patch.StartDate)
	}
	if patch.EndDate != nil {
		next.EndDate = cloneTime(patch.EndDate)
	}
	if patch.Pace != nil {
		next.Pace = *patch.Pace
	}
	if patch.Interests != nil {
		next.Interests = append([]string(nil), patch.Interests...)
	}
	if patch.CoverPhotoURL != nil {
		next.CoverPhotoURL = *patch.CoverPhotoURL
	}
	if patch.Budget != nil {
		next.Budget = cloneFloat(patch.Budget)
	}
	if patch.Days != nil {
		next.Days = CloneDays(patch.Days)
		s.changed = DetectChanges(s.trip, next)
	}

	s.trip = next
	s.unsaved = true
	s.aheadOfHistory = true
}

// AddItemToDay appends an item to the end of a day's list. A user edit;
// pushes history.
func (s *Store) AddItemToDay(dayIndex int, item types.ItineraryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dayInRange(dayIndex) {
		return
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	s.beginUserEdit()
	next := CloneTrip(s.trip)
	next.Days[dayIndex].Items = append(next.Days[dayIndex].Items, item)
	s.commit(next)
}

// ReplaceItemInDay substitutes an item in place, located by its id, keeping
// its position. Used by background enrichment (geocoding); it does not push
// history and never flags the item as changed.
func (s *Store) ReplaceItemInDay(dayIndex int, item types.ItineraryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dayInRange(dayIndex) {
		return
	}
	idx := indexOfItem(s.trip.Days[dayIndex].Items, item.ID)
	if idx < 0 {
		return
	}

	next := CloneTrip(s.trip)
	next.Days[dayIndex].Items[idx] = item
	s.commit(next)
}

// RemoveItemFromDay filters an item out of a day's list by id. A user edit;
// pushes history.
func (s *Store) RemoveItemFromDay(dayIndex int, itemID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dayInRange(dayIndex) {
		return
	}
	idx := indexOfItem(s.trip.Days[dayIndex].Items, itemID)
	if idx < 0 {
		return
	}

	s.beginUserEdit()
	next := CloneTrip(s.trip)
	items := next.Days[dayIndex].Items
	next.Days[dayIndex].Items = append(items[:idx], items[idx+1:]...)
	s.commit(next)
}

// UpdateItemFields shallow-merges a partial update into an item at its
// current index. A user edit; pushes history.
func (s *Store) UpdateItemFields(dayIndex int, itemID uuid.UUID, update types.ItemUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dayInRange(dayIndex) {
		return
	}
	idx := indexOfItem(s.trip.Days[dayIndex].Items, itemID)
	if idx < 0 {
		return
	}

	s.beginUserEdit()
	next := CloneTrip(s.trip)
	item := &next.Days[dayIndex].Items[idx]
	if update.Title != nil {
		item.Title = *update.Title
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.Type != nil {
		item.Type = *update.Type
	}
	if update.StartTime != nil {
		item.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		item.EndTime = *update.EndTime
	}
	if update.Duration != nil {
		item.Duration = *update.Duration
	}
	if update.Notes != nil {
		item.Notes = *update.Notes
	}
	if update.Cost != nil {
		item.Cost = cloneFloat(update.Cost)
	}
	if update.CostCategory != nil {
		item.CostCategory = *update.CostCategory
	}
	if update.Location != nil {
		loc := *update.Location
		item.Location = &loc
	}
	s.commit(next)
}

// ReorderItemsInDay moves the item at startIndex to endIndex within the same
// day, shifting everything in between by one (array move, not swap). A user
// edit; pushes history.
func (s *Store) ReorderItemsInDay(dayIndex, startIndex, endIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dayInRange(dayIndex) {
		return
	}
	items := s.trip.Days[dayIndex].Items
	if startIndex < 0 || startIndex >= len(items) || endIndex < 0 || endIndex >= len(items) {
		return
	}
	if startIndex == endIndex {
		return
	}

	s.beginUserEdit()
	next := CloneTrip(s.trip)
	moved := next.Days[dayIndex].Items
	item := moved[startIndex]
	moved = append(moved[:startIndex], moved[startIndex+1:]...)
	moved = append(moved[:endIndex], append([]types.ItineraryItem{item}, moved[endIndex:]...)...)
	next.Days[dayIndex].Items = moved
	s.commit(next)
}

// MoveItemBetweenDays removes an item from the source day by id and inserts
// it at destIndex in the destination day. The whole operation no-ops when
// either day reference or the item id is invalid. A user edit; pushes
// history.
func (s *Store) MoveItemBetweenDays(srcDayIndex, destDayIndex int, itemID uuid.UUID, destIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dayInRange(srcDayIndex) || !s.dayInRange(destDayIndex) {
		return
	}
	srcIdx := indexOfItem(s.trip.Days[srcDayIndex].Items, itemID)
	if srcIdx < 0 {
		return
	}

	s.beginUserEdit()
	next := CloneTrip(s.trip)
	src := next.Days[srcDayIndex].Items
	item := src[srcIdx]
	next.Days[srcDayIndex].Items = append(src[:srcIdx], src[srcIdx+1:]...)

	dest := next.Days[destDayIndex].Items
	if destIndex < 0 {
		destIndex = 0
	}
	if destIndex > len(dest) {
		destIndex = len(dest)
	}
	next.Days[destDayIndex].Items = append(dest[:destIndex], append([]types.ItineraryItem{item}, dest[destIndex:]...)...)
	s.commit(next)
}

// DuplicateDay deep-clones a day with freshly generated ids for every item
// and inserts the copy immediately after the original. Duplicated items are
// independent entities, not aliases. A user edit; pushes history.
func (s *Store) DuplicateDay(dayIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dayInRange(dayIndex) {
		return
	}

	s.beginUserEdit()
	next := CloneTrip(s.trip)
	copyDay := next.Days[dayIndex]
	copyDay.Items = cloneItems(copyDay.Items)
	for i := range copyDay.Items {
		copyDay.Items[i].ID = uuid.New()
	}
	next.Days = append(next.Days[:dayIndex+1],
		append([]types.Day{copyDay}, next.Days[dayIndex+1:]...)...)
	s.commit(next)
}

// Undo restores the state immediately prior to the last user edit and
// returns a copy of it, or nil when there is nothing to undo. The diff/merge
// logic is bypassed entirely: the changed-item set is left as-is.
func (s *Store) Undo() *types.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trip == nil {
		return nil
	}
	if s.aheadOfHistory && s.history.Len() > 0 {
		s.history.Push(s.trip)
		s.aheadOfHistory = false
	}
	prev := s.history.Undo()
	if prev == nil {
		return nil
	}
	s.trip = prev
	s.unsaved = true
	return CloneTrip(prev)
}

// Redo re-applies the next snapshot after an undo, or nil when the cursor is
// already at the newest state.
func (s *Store) Redo() *types.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trip == nil {
		return nil
	}
	next := s.history.Redo()
	if next == nil {
		return nil
	}
	s.trip = next
	s.unsaved = true
	s.aheadOfHistory = false
	return CloneTrip(next)
}

func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trip == nil {
		return false
	}
	if s.aheadOfHistory {
		return s.history.Len() > 0
	}
	return s.history.CanUndo()
}

func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trip != nil && s.history.CanRedo()
}

// ChangedItems returns a copy of the current highlight set.
func (s *Store) ChangedItems() map[uuid.UUID]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]struct{}, len(s.changed))
	for id := range s.changed {
		out[id] = struct{}{}
	}
	return out
}

// ClearChangedItems empties the highlight set; called when the user views
// the itinerary.
func (s *Store) ClearChangedItems() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed = make(map[uuid.UUID]struct{})
}

func (s *Store) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsaved
}

// MarkSaved clears the unsaved flag after a successful persistence pass.
func (s *Store) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsaved = false
}

// beginUserEdit records the pre-mutation state so Undo restores it. When the
// live trip already sits under the history cursor (right after an undo or
// redo), only the redo branch is dropped: pushing again would store a
// duplicate snapshot and turn the next undo into a visible no-op. Callers
// must hold the mutex and have validated the operation already.
func (s *Store) beginUserEdit() {
	if !s.aheadOfHistory && s.history.Len() > 0 {
		s.history.TruncateFuture()
	} else {
		s.history.Push(s.trip)
	}
	s.aheadOfHistory = true
}

func (s *Store) commit(next *types.Trip) {
	s.trip = next
	s.unsaved = true
	s.aheadOfHistory = true
}

func (s *Store) dayInRange(dayIndex int) bool {
	return s.trip != nil && dayIndex >= 0 && dayIndex < len(s.trip.Days)
}

func indexOfItem(items []types.ItineraryItem, id uuid.UUID) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
