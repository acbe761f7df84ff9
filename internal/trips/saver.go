package trips

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// SnapshotFunc serializes the editing session's *current* state at save
// time — never a stale capture — so a newer save simply supersedes an older
// one once both resolve.
type SnapshotFunc func() (*types.Trip, []types.ChatMessage)

// Saver persists one editing session with a debounce window: bursts of edits
// collapse into a single save after a quiet period. Saving is fire-and-forget
// from the editor's point of view; a failed save is logged and retried on the
// next window, since the in-memory copy stays authoritative for the session.
type Saver struct {
	logger   *slog.Logger
	svc      Service
	tripID   uuid.UUID
	interval time.Duration
	snapshot SnapshotFunc
	onSaved  func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewSaver builds a saver for one trip. onSaved (optional) runs after a
// successful save, typically to clear the store's unsaved flag.
func NewSaver(svc Service, tripID uuid.UUID, interval time.Duration, snapshot SnapshotFunc, onSaved func(), logger *slog.Logger) *Saver {
	return &Saver{
		logger:   logger,
		svc:      svc,
		tripID:   tripID,
		interval: interval,
		snapshot: snapshot,
		onSaved:  onSaved,
	}
}

// Notify (re)arms the debounce timer. Call after every mutation; only the
// last call within a window triggers a save.
func (s *Saver) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Reset(s.interval)
		return
	}
	s.timer = time.AfterFunc(s.interval, s.fire)
}

// Flush runs any pending save synchronously. Used on session close and in
// tests, where it makes the debounce strategy deterministic.
func (s *Saver) Flush() {
	s.mu.Lock()
	pending := s.timer != nil
	if pending {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	if pending {
		s.save()
	}
}

// Stop cancels any pending save without running it.
func (s *Saver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Saver) fire() {
	s.mu.Lock()
	s.timer = nil
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return
	}
	s.save()
}

func (s *Saver) save() {
	trip, messages := s.snapshot()
	if trip == nil {
		return
	}

	// The debounce fires outside any request; saves get their own context.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	metrics.Get().TripSavesTotal.Add(ctx, 1)
	if err := s.svc.UpdateTrip(ctx, s.tripID, trip, messages); err != nil {
		metrics.Get().TripSaveErrorsTotal.Add(ctx, 1)
		// Not surfaced to the user: the local copy stays authoritative and
		// the next debounce window re-attempts the save.
		s.logger.Warn("Debounced trip save failed, will retry on next window",
			slog.String("tripID", s.tripID.String()),
			slog.Any("error", err))
		return
	}
	if s.onSaved != nil {
		s.onSaved()
	}
	s.logger.Debug("Debounced trip save completed", slog.String("tripID", s.tripID.String()))
}
