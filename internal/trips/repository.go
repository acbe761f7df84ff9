package trips

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// DBPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists trips. Days and conversation messages are stored as
// JSONB payloads; scalar trip fields get their own columns.
type Repository interface {
	CreateTrip(ctx context.Context, trip *types.Trip, messages []types.ChatMessage) error
	UpdateTrip(ctx context.Context, trip *types.Trip, messages []types.ChatMessage) error
	GetTrip(ctx context.Context, tripID uuid.UUID) (*types.TripSnapshot, error)
	GetUserTrips(ctx context.Context, userID uuid.UUID) ([]*types.Trip, error)
	DeleteTrip(ctx context.Context, tripID uuid.UUID) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool DBPool
}

func NewRepository(pgpool DBPool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

// CreateTrip inserts a new trip row.
func (r *RepositoryImpl) CreateTrip(ctx context.Context, trip *types.Trip, messages []types.ChatMessage) error {
	daysJSON, messagesJSON, err := marshalPayload(trip.Days, messages)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO trips (
            id, user_id, destination, start_date, end_date, pace, interests,
            cover_photo_url, budget, days, messages, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
        )
    `
	now := time.Now()
	_, err = r.pgpool.Exec(ctx, query,
		trip.ID, trip.UserID, trip.Destination, trip.StartDate, trip.EndDate,
		trip.Pace, trip.Interests, trip.CoverPhotoURL, trip.Budget,
		daysJSON, messagesJSON, now, now,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create trip", slog.Any("error", err))
		return fmt.Errorf("failed to create trip: %w", err)
	}
	return nil
}

// UpdateTrip overwrites the persisted state of a trip.
func (r *RepositoryImpl) UpdateTrip(ctx context.Context, trip *types.Trip, messages []types.ChatMessage) error {
	daysJSON, messagesJSON, err := marshalPayload(trip.Days, messages)
	if err != nil {
		return err
	}

	query := `
        UPDATE trips
        SET destination = $2, start_date = $3, end_date = $4, pace = $5,
            interests = $6, cover_photo_url = $7, budget = $8, days = $9,
            messages = $10, updated_at = $11
        WHERE id = $1
    `
	tag, err := r.pgpool.Exec(ctx, query,
		trip.ID, trip.Destination, trip.StartDate, trip.EndDate, trip.Pace,
		trip.Interests, trip.CoverPhotoURL, trip.Budget,
		daysJSON, messagesJSON, time.Now(),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update trip", slog.Any("error", err))
		return fmt.Errorf("failed to update trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trip not found: %s", trip.ID)
	}
	return nil
}

// GetTrip loads a trip with its conversation messages.
func (r *RepositoryImpl) GetTrip(ctx context.Context, tripID uuid.UUID) (*types.TripSnapshot, error) {
	query := `
        SELECT id, user_id, destination, start_date, end_date, pace, interests,
               cover_photo_url, budget, days, messages, created_at, updated_at
        FROM trips
        WHERE id = $1
    `
	row := r.pgpool.QueryRow(ctx, query, tripID)

	var trip types.Trip
	var daysJSON, messagesJSON []byte
	err := row.Scan(
		&trip.ID, &trip.UserID, &trip.Destination, &trip.StartDate, &trip.EndDate,
		&trip.Pace, &trip.Interests, &trip.CoverPhotoURL, &trip.Budget,
		&daysJSON, &messagesJSON, &trip.CreatedAt, &trip.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("trip not found: %w", err)
		}
		r.logger.ErrorContext(ctx, "Failed to get trip", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	var messages []types.ChatMessage
	if err := json.Unmarshal(daysJSON, &trip.Days); err != nil {
		return nil, fmt.Errorf("failed to decode trip days: %w", err)
	}
	if len(messagesJSON) > 0 {
		if err := json.Unmarshal(messagesJSON, &messages); err != nil {
			return nil, fmt.Errorf("failed to decode trip messages: %w", err)
		}
	}
	return &types.TripSnapshot{Trip: &trip, Messages: messages}, nil
}

// GetUserTrips lists a user's trips without the conversation payload.
func (r *RepositoryImpl) GetUserTrips(ctx context.Context, userID uuid.UUID) ([]*types.Trip, error) {
	query := `
        SELECT id, user_id, destination, start_date, end_date, pace, interests,
               cover_photo_url, budget, days, created_at, updated_at
        FROM trips
        WHERE user_id = $1
        ORDER BY updated_at DESC
    `
	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var out []*types.Trip
	for rows.Next() {
		var trip types.Trip
		var daysJSON []byte
		err := rows.Scan(
			&trip.ID, &trip.UserID, &trip.Destination, &trip.StartDate, &trip.EndDate,
			&trip.Pace, &trip.Interests, &trip.CoverPhotoURL, &trip.Budget,
			&daysJSON, &trip.CreatedAt, &trip.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		if err := json.Unmarshal(daysJSON, &trip.Days); err != nil {
			return nil, fmt.Errorf("failed to decode trip days: %w", err)
		}
		out = append(out, &trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return out, nil
}

// DeleteTrip removes a trip row.
func (r *RepositoryImpl) DeleteTrip(ctx context.Context, tripID uuid.UUID) error {
	_, err := r.pgpool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, tripID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete trip", slog.Any("error", err))
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return nil
}

func marshalPayload(days []types.Day, messages []types.ChatMessage) ([]byte, []byte, error) {
	if days == nil {
		days = []types.Day{}
	}
	if messages == nil {
		messages = []types.ChatMessage{}
	}
	daysJSON, err := json.Marshal(days)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode trip days: %w", err)
	}
	messagesJSON, err := json.Marshal(messages)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode trip messages: %w", err)
	}
	return daysJSON, messagesJSON, nil
}
