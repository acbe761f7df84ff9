package planner

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/chat"
	"github.com/FACorreiaa/go-trip-planner/internal/geocode"
	"github.com/FACorreiaa/go-trip-planner/internal/trips"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const enrichTimeout = 30 * time.Second

// editSession is one trip's live editing state: the in-memory store, its
// debounced saver and the conversation transcript.
type editSession struct {
	store *Store
	saver *trips.Saver

	mu       sync.Mutex
	messages []types.ChatMessage
}

func (s *editSession) appendMessage(role types.MessageRole, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, types.ChatMessage{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

func (s *editSession) messagesCopy() []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

type Handler struct {
	logger       *slog.Logger
	tripSvc      trips.Service
	chatSvc      chat.Service
	geoSvc       geocode.Service
	saveInterval time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*editSession
}

func NewHandler(tripSvc trips.Service, chatSvc chat.Service, geoSvc geocode.Service, saveInterval time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		logger:       logger,
		tripSvc:      tripSvc,
		chatSvc:      chatSvc,
		geoSvc:       geoSvc,
		saveInterval: saveInterval,
		sessions:     make(map[uuid.UUID]*editSession),
	}
}

// session returns the live editing session for a trip, loading it from
// persistence on first access. The loaded state counts as saved and
// unchanged; highlights and undo history start empty.
func (h *Handler) session(ctx context.Context, tripID uuid.UUID) (*editSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sess, ok := h.sessions[tripID]; ok {
		return sess, nil
	}

	snapshot, err := h.tripSvc.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	sess := &editSession{
		store:    NewStore(h.logger),
		messages: snapshot.Messages,
	}
	sess.store.SetTrip(snapshot.Trip)
	sess.store.ClearChangedItems()
	sess.store.MarkSaved()
	sess.saver = trips.NewSaver(h.tripSvc, tripID, h.saveInterval,
		func() (*types.Trip, []types.ChatMessage) {
			return sess.store.Trip(), sess.messagesCopy()
		},
		sess.store.MarkSaved,
		h.logger,
	)

	h.sessions[tripID] = sess
	h.logger.InfoContext(ctx, "Editing session opened", slog.String("tripID", tripID.String()))
	return sess, nil
}

// resolveSession parses the trip id from the URL and loads its session,
// writing the error response itself when either step fails.
func (h *Handler) resolveSession(w http.ResponseWriter, r *http.Request) (*editSession, bool) {
	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return nil, false
	}
	sess, err := h.session(r.Context(), tripID)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		return nil, false
	}
	return sess, true
}

func dayIndexParam(r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "dayIndex"))
	if err != nil {
		return 0, false
	}
	return idx, true
}

// stateResponse is the editor state returned after every mutation.
type stateResponse struct {
	Trip           *types.Trip `json:"trip"`
	CanUndo        bool        `json:"can_undo"`
	CanRedo        bool        `json:"can_redo"`
	UnsavedChanges bool        `json:"unsaved_changes"`
	ChangedItems   []uuid.UUID `json:"changed_items"`
}

func sessionState(sess *editSession) stateResponse {
	return stateResponse{
		Trip:           sess.store.Trip(),
		CanUndo:        sess.store.CanUndo(),
		CanRedo:        sess.store.CanRedo(),
		UnsavedChanges: sess.store.HasUnsavedChanges(),
		ChangedItems:   changedIDs(sess.store),
	}
}

func changedIDs(store *Store) []uuid.UUID {
	changed := store.ChangedItems()
	ids := make([]uuid.UUID, 0, len(changed))
	for id := range changed {
		ids = append(ids, id)
	}
	return ids
}

// GetState returns the current editor state for a trip.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("PlannerHandler").Start(r.Context(), "GetState", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}"),
	))
	defer span.End()

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, sessionState(sess))
}

// Chat runs one conversation turn against the assistant and applies whatever
// trip state it returned. A reply that cannot be parsed surfaces as a generic
// chat error while the raw exchange is still recorded in the transcript.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "Chat", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/chat"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Chat"))

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req types.ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Message == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Message is required")
		return
	}

	m := metrics.Get()
	start := time.Now()
	m.ChatTurnsTotal.Add(ctx, 1)

	sess.appendMessage(types.RoleUser, req.Message)

	result, raw, err := h.chatSvc.SendMessage(ctx, req.Message, sess.store.Trip())
	m.ChatTurnDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		// Keep the raw reply in the transcript so the failure can be
		// diagnosed later, then persist it on the next save window.
		if raw != "" {
			sess.appendMessage(types.RoleAssistant, raw)
		}
		sess.saver.Notify()
		m.ChatParseErrorsTotal.Add(ctx, 1)
		l.ErrorContext(ctx, "Conversation turn failed", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadGateway, "The assistant could not process that message, please try again")
		return
	}

	if result.Trip != nil {
		sess.store.SetTrip(result.Trip)
	} else if result.TripUpdate != nil {
		sess.store.UpdateTrip(*result.TripUpdate)
	}
	sess.appendMessage(types.RoleAssistant, result.Message)
	sess.saver.Notify()

	// Geocoding runs after the reply is sent; failed lookups are dropped.
	go func() {
		enrichCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enrichTimeout)
		defer cancel()
		if EnrichLocations(enrichCtx, sess.store, h.geoSvc, h.logger) > 0 {
			sess.saver.Notify()
		}
	}()

	api.WriteJSONResponse(w, r, http.StatusOK, types.ChatResponse{
		Message:      result.Message,
		Trip:         sess.store.Trip(),
		Suggestion:   result.Suggestion,
		ChangedItems: changedIDs(sess.store),
	})
}

// AddItem appends an item to a day's slate.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("PlannerHandler").Start(r.Context(), "AddItem", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/days/{dayIndex}/items"),
	))
	defer span.End()

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	dayIndex, ok := dayIndexParam(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid day index")
		return
	}

	var item types.ItineraryItem
	if err := api.DecodeJSONBody(w, r, &item); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if item.Title == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Item title is required")
		return
	}

	sess.store.AddItemToDay(dayIndex, item)
	sess.saver.Notify()
	api.WriteJSONResponse(w, r, http.StatusOK, sessionState(sess))
}

// UpdateItem applies a partial field update to one item.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("PlannerHandler").Start(r.Context(), "UpdateItem", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/days/{dayIndex}/items/{itemID}"),
	))
	defer span.End()

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	dayIndex, ok := dayIndexParam(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid day index")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var update types.ItemUpdate
	if err := api.DecodeJSONBody(w, r, &update); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sess.store.UpdateItemFields(dayIndex, itemID, update)
	sess.saver.Notify()
	api.WriteJSONResponse(w, r, http.StatusOK, sessionState(sess))
}

// RemoveItem deletes one item from a day.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("PlannerHandler").Start(r.Context(), "RemoveItem", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/days/{dayIndex}/items/{itemID}"),
	))
	defer span.End()

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	dayIndex, ok := dayIndexParam(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid day index")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	sess.store.RemoveItemFromDay(dayIndex, itemID)
	sess.saver.Notify()
	api.WriteJSONResponse(w, r, http.StatusOK, sessionState(sess))
}

type reorderRequest struct {
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// ReorderItems moves the item at start_index to end_index within one day.
func (h *Handler) ReorderItems(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("PlannerHandler").Start(r.Context(), "ReorderItems", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/days/{dayIndex}/reorder"),
	))
	defer span.End()

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	dayIndex, ok := dayIndexParam(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid day index")
		return
	}

	var req reorderRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sess.store.ReorderItemsInDay(dayIndex, req.StartIndex, req.EndIndex)
	sess.saver.Notify()
	api.WriteJSONResponse(w, r, http.StatusOK, sessionState(sess))
}

type moveItemRequest struct {
	SourceDayIndex int       `json:"source_day_index"`
	DestDayIndex   int       `json:"dest_day_index"`
	ItemID         uuid.UUID `json:"item_id"`
	DestIndex      int       `json:"dest_index"`
}

// MoveItem relocates one item between two days.
func (h *Handler) MoveItem(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("PlannerHandler").Start(r.Context(), "MoveItem", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/items/move"),
	))
	defer span.End()

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req moveItemRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sess.store.MoveItemBetweenDays(req.SourceDayIndex, req.DestDayIndex, req.ItemID, req.DestIndex)
	sess.saver.Notify()
	api.WriteJSONResponse(w, r, http.StatusOK, sessionState(sess))
}

// DuplicateDay inserts a deep copy of a day right after the original.
func (h *Handler) DuplicateDay(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("PlannerHandler").Start(r.Context(), "DuplicateDay", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/days/{dayIndex}/duplicate"),
	))
	defer span.End()

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	dayIndex, ok := dayIndexParam(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid day index")
		return
	}

	sess.store.DuplicateDay(dayIndex)
	sess.saver.Notify()
	api.WriteJSONResponse(w, r, http.StatusOK, sessionState(sess))
}

// Undo steps the editor back one history entry.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("PlannerHandler").Start(r.Context(), "Undo", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/undo"),
	))
	defer span.End()

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	sess.store.Undo()
	sess.saver.Notify()
	api.WriteJSONResponse(w, r, http.StatusOK, sessionState(sess))
}

// Redo steps the editor forward one history entry.
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("PlannerHandler").Start(r.Context(), "Redo", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/redo"),
	))
	defer span.End()

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	sess.store.Redo()
	sess.saver.Notify()
	api.WriteJSONResponse(w, r, http.StatusOK, sessionState(sess))
}

// GetChangedItems lists the ids currently flagged for highlight.
func (h *Handler) GetChangedItems(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("PlannerHandler").Start(r.Context(), "GetChangedItems", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/changes"),
	))
	defer span.End()

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"changed_items": changedIDs(sess.store),
	})
}

// ClearChangedItems acknowledges the highlights, typically once the UI has
// finished animating them.
func (h *Handler) ClearChangedItems(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("PlannerHandler").Start(r.Context(), "ClearChangedItems", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/changes"),
	))
	defer span.End()

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	sess.store.ClearChangedItems()
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// MergeFlightBooking folds a confirmed flight booking into the itinerary.
func (h *Handler) MergeFlightBooking(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "MergeFlightBooking", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/bookings/flight"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "MergeFlightBooking"))

	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var booking types.FlightBooking
	if err := api.DecodeJSONBody(w, r, &booking); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if booking.Origin == "" || booking.Destination == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Origin and destination are required")
		return
	}
	if booking.DepartDate.IsZero() {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Departure date is required")
		return
	}

	dayIndex := sess.store.MergeFlightBooking(booking)
	sess.saver.Notify()
	metrics.Get().BookingMergesTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Flight booking merged",
		slog.String("origin", booking.Origin),
		slog.String("destination", booking.Destination),
		slog.Int("dayIndex", dayIndex))

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"day_index": dayIndex,
		"state":     sessionState(sess),
	})
}

// CloseSession flushes any pending save and drops the in-memory session.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "CloseSession", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/planner/{tripID}/close"),
	))
	defer span.End()

	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return
	}

	h.mu.Lock()
	sess, ok := h.sessions[tripID]
	if ok {
		delete(h.sessions, tripID)
	}
	h.mu.Unlock()

	if ok {
		sess.saver.Flush()
		sess.saver.Stop()
		h.logger.InfoContext(ctx, "Editing session closed", slog.String("tripID", tripID.String()))
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// Shutdown flushes every open session. Called on server shutdown.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	sessions := make([]*editSession, 0, len(h.sessions))
	for id, sess := range h.sessions {
		sessions = append(sessions, sess)
		delete(h.sessions, id)
	}
	h.mu.Unlock()

	for _, sess := range sessions {
		sess.saver.Flush()
		sess.saver.Stop()
	}
}
