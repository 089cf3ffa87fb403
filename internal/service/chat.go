package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_runner.go -package=mocks bench-api/internal/service Runner
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService bench-api/internal/service ChatService

import (
	"context"
	"fmt"

	"bench-api/internal/contextutil"
	"bench-api/internal/graph"
	"bench-api/internal/llm"
)

// Runner executes a message history through a pipeline.
// *graph.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, state graph.State) (graph.State, error)
}

// Variant selects which pipeline answers a chat request.
type Variant string

const (
	// VariantLive answers with the language-model backend.
	VariantLive Variant = "live"
	// VariantMock answers with the deterministic mock responder.
	VariantMock Variant = "mock"
)

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Message string
	Variant Variant
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Reply string
}

// ChatService provides chat functionality.
type ChatService interface {
	// Chat wraps the message as a single user turn, runs the selected pipeline,
	// and returns the content of the final message.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// chatService implements ChatService.
type chatService struct {
	runners map[Variant]Runner
}

// NewChatService creates a new ChatService from the live and mock pipelines.
func NewChatService(live, mock Runner) ChatService {
	return &chatService{
		runners: map[Variant]Runner{
			VariantLive: live,
			VariantMock: mock,
		},
	}
}

// Chat processes a chat request.
func (s *chatService) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	runner, ok := s.runners[req.Variant]
	if !ok || runner == nil {
		logger.WarnContext(ctx, "unknown chat variant", "variant", req.Variant)
		return ChatResponse{}, fmt.Errorf("%w: unknown chat variant %q", ErrInvalidInput, req.Variant)
	}

	final, err := runner.Run(ctx, graph.State{llm.UserMessage(req.Message)})
	if err != nil {
		logger.ErrorContext(ctx, "chat pipeline failed", "variant", req.Variant, "error", err)
		return ChatResponse{}, WrapError(err, "failed to run chat pipeline")
	}

	last, ok := final.Last()
	if !ok {
		logger.ErrorContext(ctx, "chat pipeline returned no messages", "variant", req.Variant)
		return ChatResponse{}, ErrEmptyState
	}

	logger.InfoContext(ctx, "chat request processed successfully",
		"variant", req.Variant,
		"message_length", len(req.Message),
		"reply_length", len(last.Content),
	)
	return ChatResponse{
		Reply: last.Content,
	}, nil
}
