package chat

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Generator produces the raw model reply for a prompt. Satisfied by
// *AIClient; tests substitute their own.
type Generator interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

var _ Service = (*ServiceImpl)(nil)

// Service is the conversation collaborator: one message in, a parsed
// structured result out. The raw model text is always returned so callers
// can record the exchange even when parsing fails.
type Service interface {
	SendMessage(ctx context.Context, message string, currentTrip *types.Trip) (*types.ChatResult, string, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	generator Generator
}

func NewService(generator Generator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		generator: generator,
	}
}

// SendMessage runs one conversation turn against the model and parses the
// structured reply. A generation failure or unparseable reply is returned as
// an error; the handler surfaces it as a generic chat error.
func (s *ServiceImpl) SendMessage(ctx context.Context, message string, currentTrip *types.Trip) (*types.ChatResult, string, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "SendMessage", trace.WithAttributes(
		attribute.Int("chat.message_length", len(message)),
		attribute.Bool("chat.has_trip", currentTrip != nil),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SendMessage"))
	l.DebugContext(ctx, "Sending conversation turn")

	prompt := buildConversationPrompt(message, currentTrip)
	raw, err := s.generator.GenerateResponse(ctx, prompt)
	if err != nil {
		l.ErrorContext(ctx, "Model generation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return nil, raw, fmt.Errorf("conversation turn failed: %w", err)
	}

	result, err := parseAssistantReply(raw)
	if err != nil {
		l.ErrorContext(ctx, "Failed to parse assistant reply", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Malformed assistant reply")
		return nil, raw, fmt.Errorf("malformed assistant reply: %w", err)
	}

	l.InfoContext(ctx, "Conversation turn completed",
		slog.Bool("has_trip", result.Trip != nil),
		slog.Bool("has_trip_update", result.TripUpdate != nil))
	span.SetStatus(codes.Ok, "Turn completed")
	return result, raw, nil
}
