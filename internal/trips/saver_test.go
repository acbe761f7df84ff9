package trips

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// MockService is a mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateTrip(ctx context.Context, trip *types.Trip, messages []types.ChatMessage) (uuid.UUID, error) {
	args := m.Called(ctx, trip, messages)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockService) UpdateTrip(ctx context.Context, tripID uuid.UUID, trip *types.Trip, messages []types.ChatMessage) error {
	args := m.Called(ctx, tripID, trip, messages)
	return args.Error(0)
}

func (m *MockService) GetTrip(ctx context.Context, tripID uuid.UUID) (*types.TripSnapshot, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripSnapshot), args.Error(1)
}

func (m *MockService) GetUserTrips(ctx context.Context, userID uuid.UUID) ([]*types.Trip, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Trip), args.Error(1)
}

func (m *MockService) DeleteTrip(ctx context.Context, tripID uuid.UUID) error {
	args := m.Called(ctx, tripID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func snapshotOf(trip *types.Trip) SnapshotFunc {
	return func() (*types.Trip, []types.ChatMessage) {
		return trip, nil
	}
}

func TestSaverCollapsesBurstsIntoOneSave(t *testing.T) {
	svc := new(MockService)
	tripID := uuid.New()
	trip := &types.Trip{ID: tripID, Destination: "Lisbon"}
	svc.On("UpdateTrip", mock.Anything, tripID, trip, mock.Anything).Return(nil).Once()

	saved := 0
	saver := NewSaver(svc, tripID, time.Minute, snapshotOf(trip), func() { saved++ }, testLogger())

	saver.Notify()
	saver.Notify()
	saver.Notify()
	saver.Flush()

	svc.AssertExpectations(t)
	svc.AssertNumberOfCalls(t, "UpdateTrip", 1)
	assert.Equal(t, 1, saved)
}

func TestSaverFlushWithoutPendingIsNoOp(t *testing.T) {
	svc := new(MockService)
	saver := NewSaver(svc, uuid.New(), time.Minute, snapshotOf(&types.Trip{}), nil, testLogger())

	saver.Flush()
	svc.AssertNotCalled(t, "UpdateTrip")
}

func TestSaverRetriesOnNextWindowAfterFailure(t *testing.T) {
	svc := new(MockService)
	tripID := uuid.New()
	trip := &types.Trip{ID: tripID, Destination: "Lisbon"}
	svc.On("UpdateTrip", mock.Anything, tripID, trip, mock.Anything).
		Return(errors.New("database unavailable")).Once()
	svc.On("UpdateTrip", mock.Anything, tripID, trip, mock.Anything).
		Return(nil).Once()

	saved := 0
	saver := NewSaver(svc, tripID, time.Minute, snapshotOf(trip), func() { saved++ }, testLogger())

	// First window fails silently; the editor never sees an error.
	saver.Notify()
	saver.Flush()
	assert.Equal(t, 0, saved)

	// Next edit re-arms the window and the retry succeeds.
	saver.Notify()
	saver.Flush()
	assert.Equal(t, 1, saved)
	svc.AssertExpectations(t)
}

func TestSaverSavesCurrentStateNotCapturedState(t *testing.T) {
	svc := new(MockService)
	tripID := uuid.New()
	current := &types.Trip{ID: tripID, Destination: "Lisbon"}
	snapshot := func() (*types.Trip, []types.ChatMessage) {
		c := *current
		return &c, nil
	}
	svc.On("UpdateTrip", mock.Anything, tripID, mock.MatchedBy(func(tr *types.Trip) bool {
		return tr.Destination == "Porto"
	}), mock.Anything).Return(nil).Once()

	saver := NewSaver(svc, tripID, time.Minute, snapshot, nil, testLogger())
	saver.Notify()
	current.Destination = "Porto" // edit lands before the window closes
	saver.Flush()

	svc.AssertExpectations(t)
}

func TestSaverStopCancelsPendingSave(t *testing.T) {
	svc := new(MockService)
	saver := NewSaver(svc, uuid.New(), 10*time.Millisecond, snapshotOf(&types.Trip{}), nil, testLogger())

	saver.Notify()
	saver.Stop()
	time.Sleep(30 * time.Millisecond)
	svc.AssertNotCalled(t, "UpdateTrip")
}
