package trips

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the persistence collaborator. It owns no retry or backoff
// logic; the debounced Saver decides when saves happen.
type Service interface {
	CreateTrip(ctx context.Context, trip *types.Trip, messages []types.ChatMessage) (uuid.UUID, error)
	UpdateTrip(ctx context.Context, tripID uuid.UUID, trip *types.Trip, messages []types.ChatMessage) error
	GetTrip(ctx context.Context, tripID uuid.UUID) (*types.TripSnapshot, error)
	GetUserTrips(ctx context.Context, userID uuid.UUID) ([]*types.Trip, error)
	DeleteTrip(ctx context.Context, tripID uuid.UUID) error
}

type ServiceImpl struct {
	logger   *slog.Logger
	tripRepo Repository
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		tripRepo: repo,
	}
}

// CreateTrip stores a new trip, assigning an id when the caller left it
// empty.
func (s *ServiceImpl) CreateTrip(ctx context.Context, trip *types.Trip, messages []types.ChatMessage) (uuid.UUID, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "CreateTrip", trace.WithAttributes(
		attribute.String("trip.destination", trip.Destination),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateTrip"))
	l.DebugContext(ctx, "Creating trip")

	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt

	if err := s.tripRepo.CreateTrip(ctx, trip, messages); err != nil {
		l.ErrorContext(ctx, "Failed to create trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create trip")
		return uuid.Nil, fmt.Errorf("failed to create trip: %w", err)
	}

	l.InfoContext(ctx, "Trip created", slog.String("tripID", trip.ID.String()))
	span.SetStatus(codes.Ok, "Trip created")
	return trip.ID, nil
}

// UpdateTrip persists the current state of a trip and its conversation.
func (s *ServiceImpl) UpdateTrip(ctx context.Context, tripID uuid.UUID, trip *types.Trip, messages []types.ChatMessage) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "UpdateTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateTrip"), slog.String("tripID", tripID.String()))

	trip.ID = tripID
	if err := s.tripRepo.UpdateTrip(ctx, trip, messages); err != nil {
		l.ErrorContext(ctx, "Failed to update trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update trip")
		return fmt.Errorf("failed to update trip: %w", err)
	}

	span.SetStatus(codes.Ok, "Trip updated")
	return nil
}

// GetTrip loads a trip snapshot for an editing session.
func (s *ServiceImpl) GetTrip(ctx context.Context, tripID uuid.UUID) (*types.TripSnapshot, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GetTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	snapshot, err := s.tripRepo.GetTrip(ctx, tripID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get trip",
			slog.String("tripID", tripID.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Trip not found")
		return nil, fmt.Errorf("trip not found: %w", err)
	}

	span.SetStatus(codes.Ok, "Trip fetched")
	return snapshot, nil
}

// GetUserTrips lists a user's trips, newest first.
func (s *ServiceImpl) GetUserTrips(ctx context.Context, userID uuid.UUID) ([]*types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GetUserTrips", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	tripsList, err := s.tripRepo.GetUserTrips(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list trips")
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	span.SetStatus(codes.Ok, "Trips listed")
	return tripsList, nil
}

// DeleteTrip removes a trip.
func (s *ServiceImpl) DeleteTrip(ctx context.Context, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "DeleteTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	if err := s.tripRepo.DeleteTrip(ctx, tripID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete trip")
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	span.SetStatus(codes.Ok, "Trip deleted")
	return nil
}
