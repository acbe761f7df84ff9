package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGenerator is a mock implementation of the Generator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendMessageParsesStructuredReply(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateResponse", mock.Anything, mock.Anything).
		Return(`{"message": "Done.", "trip_update": {"destination": "Porto"}}`, nil)

	svc := NewService(gen, testLogger())
	result, raw, err := svc.SendMessage(context.Background(), "rename my trip to Porto", nil)

	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "Done.", result.Message)
	require.NotNil(t, result.TripUpdate)
	assert.Equal(t, "Porto", *result.TripUpdate.Destination)
	gen.AssertExpectations(t)
}

func TestSendMessageGenerationFailure(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateResponse", mock.Anything, mock.Anything).
		Return("", errors.New("model unavailable"))

	svc := NewService(gen, testLogger())
	result, _, err := svc.SendMessage(context.Background(), "plan a trip", nil)

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestSendMessageMalformedReplyKeepsRawExchange(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateResponse", mock.Anything, mock.Anything).
		Return("I can't answer in JSON today", nil)

	svc := NewService(gen, testLogger())
	result, raw, err := svc.SendMessage(context.Background(), "plan a trip", nil)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "I can't answer in JSON today", raw, "raw exchange kept for diagnostics")
}
