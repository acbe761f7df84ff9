package trips

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

type Handler struct {
	tripSvc Service
	logger  *slog.Logger
}

func NewHandler(tripSvc Service, logger *slog.Logger) *Handler {
	return &Handler{
		tripSvc: tripSvc,
		logger:  logger,
	}
}

// CreateTrip stores a new trip document.
func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "CreateTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateTrip"))

	var trip types.Trip
	if err := api.DecodeJSONBody(w, r, &trip); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if trip.Destination == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Destination is required")
		return
	}
	if trip.UserID == uuid.Nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "User ID is required")
		return
	}

	tripID, err := h.tripSvc.CreateTrip(ctx, &trip, nil)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create trip")
		return
	}

	l.InfoContext(ctx, "Trip created", slog.String("tripID", tripID.String()))
	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]interface{}{
		"id": tripID,
	})
}

// GetTrip returns one trip with its conversation history.
func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GetTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()

	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return
	}

	snapshot, err := h.tripSvc.GetTrip(ctx, tripID)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, snapshot)
}

// GetUserTrips lists a user's trips.
func (h *Handler) GetUserTrips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GetUserTrips", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/users/{userID}/trips"),
	))
	defer span.End()

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	userTrips, err := h.tripSvc.GetUserTrips(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list trips")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"trips": userTrips,
	})
}

// DeleteTrip removes a trip.
func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "DeleteTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()

	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return
	}

	if err := h.tripSvc.DeleteTrip(ctx, tripID); err != nil {
		h.logger.ErrorContext(ctx, "Failed to delete trip",
			slog.String("tripID", tripID.String()), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete trip")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
