package nodes

import (
	"context"

	"bench-api/internal/graph"
	"bench-api/internal/llm"
)

// MockPrefix is prepended to the echoed content.
const MockPrefix = "mock: "

// Mock is a deterministic stand-in for LiveModel. It does no I/O.
type Mock struct{}

// Invoke echoes the content of the last message, whatever its role, as an "ai" reply.
func (Mock) Invoke(_ context.Context, messages []llm.Message) (llm.Message, error) {
	if len(messages) == 0 {
		return llm.Message{}, graph.ErrEmptyState
	}
	last := messages[len(messages)-1]
	return llm.Message{
		Role:    llm.RoleAI,
		Content: MockPrefix + last.Content,
	}, nil
}
