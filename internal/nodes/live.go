package nodes

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks bench-api/internal/nodes LLMClient

import (
	"context"

	"bench-api/internal/contextutil"
	"bench-api/internal/llm"
)

// LLMClient is the model-client capability the live node needs.
// Defined here, on the consumer side; *llm.Client satisfies it.
type LLMClient interface {
	Invoke(ctx context.Context, messages []llm.Message, params llm.ChatParams) (llm.Message, error)
}

// LiveModel forwards the message history to a chat-completion backend.
type LiveModel struct {
	client LLMClient
	params llm.ChatParams
}

// NewLiveModel creates a LiveModel that sends every call with params.
func NewLiveModel(client LLMClient, params llm.ChatParams) *LiveModel {
	return &LiveModel{
		client: client,
		params: params,
	}
}

// Invoke sends messages to the backend and returns its reply.
func (n *LiveModel) Invoke(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "invoking live model", "messages", len(messages))

	reply, err := n.client.Invoke(ctx, messages, n.params)
	if err != nil {
		return llm.Message{}, err
	}
	if reply.Role == "" {
		reply.Role = llm.RoleAssistant
	}

	logger.DebugContext(ctx, "live model replied", "reply_length", len(reply.Content))
	return reply, nil
}
