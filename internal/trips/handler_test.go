package trips

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func tripRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/trips", h.CreateTrip)
	r.Get("/trips/{tripID}", h.GetTrip)
	r.Delete("/trips/{tripID}", h.DeleteTrip)
	r.Get("/users/{userID}/trips", h.GetUserTrips)
	return r
}

func TestHandlerCreateTrip(t *testing.T) {
	svc := new(MockService)
	tripID := uuid.New()
	svc.On("CreateTrip", mock.Anything, mock.MatchedBy(func(tr *types.Trip) bool {
		return tr.Destination == "Lisbon"
	}), mock.Anything).Return(tripID, nil).Once()

	h := NewHandler(svc, testLogger())
	body, _ := json.Marshal(types.Trip{UserID: uuid.New(), Destination: "Lisbon"})
	req := httptest.NewRequest(http.MethodPost, "/trips", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	tripRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, tripID, resp.ID)
	svc.AssertExpectations(t)
}

func TestHandlerCreateTripRequiresDestination(t *testing.T) {
	h := NewHandler(new(MockService), testLogger())
	body, _ := json.Marshal(types.Trip{UserID: uuid.New()})
	req := httptest.NewRequest(http.MethodPost, "/trips", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	tripRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerGetTripNotFound(t *testing.T) {
	svc := new(MockService)
	tripID := uuid.New()
	svc.On("GetTrip", mock.Anything, tripID).Return(nil, errors.New("trip not found"))

	h := NewHandler(svc, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/trips/"+tripID.String(), nil)
	rec := httptest.NewRecorder()
	tripRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerGetUserTrips(t *testing.T) {
	svc := new(MockService)
	userID := uuid.New()
	svc.On("GetUserTrips", mock.Anything, userID).
		Return([]*types.Trip{{ID: uuid.New(), Destination: "Porto"}}, nil).Once()

	h := NewHandler(svc, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/users/"+userID.String()+"/trips", nil)
	rec := httptest.NewRecorder()
	tripRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Trips []*types.Trip `json:"trips"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Trips, 1)
	assert.Equal(t, "Porto", resp.Trips[0].Destination)
}

func TestHandlerDeleteTrip(t *testing.T) {
	svc := new(MockService)
	tripID := uuid.New()
	svc.On("DeleteTrip", mock.Anything, tripID).Return(nil).Once()

	h := NewHandler(svc, testLogger())
	req := httptest.NewRequest(http.MethodDelete, "/trips/"+tripID.String(), nil)
	rec := httptest.NewRecorder()
	tripRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}
