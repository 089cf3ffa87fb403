package graph

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bench-api/internal/llm"
)

func echoNode(calls *int) NodeFunc {
	return func(ctx context.Context, messages []llm.Message) (llm.Message, error) {
		*calls++
		last := messages[len(messages)-1]
		return llm.Message{Role: llm.RoleAI, Content: "echo: " + last.Content}, nil
	}
}

func TestNew(t *testing.T) {
	p := New("echo", NodeFunc(func(context.Context, []llm.Message) (llm.Message, error) {
		return llm.Message{}, nil
	}))
	assert.Equal(t, "echo", p.Name())
	assert.Equal(t, []string{Start, "echo", End}, p.Steps())
}

func TestNew_InvalidWiring(t *testing.T) {
	node := NodeFunc(func(context.Context, []llm.Message) (llm.Message, error) { return llm.Message{}, nil })

	assert.Panics(t, func() { New("", node) })
	assert.Panics(t, func() { New(Start, node) })
	assert.Panics(t, func() { New(End, node) })
	assert.Panics(t, func() { New("node", nil) })
}

func TestPipeline_Run(t *testing.T) {
	tests := []struct {
		name  string
		state State
	}{
		{name: "single user message", state: State{llm.UserMessage("hi")}},
		{
			name: "longer history",
			state: State{
				{Role: llm.RoleSystem, Content: "be brief"},
				llm.UserMessage("one"),
				{Role: llm.RoleAssistant, Content: "two"},
				llm.UserMessage("three"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			p := New("echo", echoNode(&calls))

			original := append(State(nil), tt.state...)
			final, err := p.Run(context.Background(), tt.state)
			require.NoError(t, err)

			assert.Equal(t, 1, calls, "node must run exactly once")
			require.Len(t, final, len(tt.state)+1)
			assert.Equal(t, []llm.Message(original), []llm.Message(final[:len(tt.state)]), "existing messages must be preserved")
			assert.Equal(t, []llm.Message(original), []llm.Message(tt.state), "input state must not be modified")

			last, ok := final.Last()
			require.True(t, ok)
			assert.True(t, last.Role.IsAssistant())
			assert.Equal(t, "echo: "+tt.state[len(tt.state)-1].Content, last.Content)
		})
	}
}

func TestPipeline_Run_EmptyState(t *testing.T) {
	var calls int
	p := New("echo", echoNode(&calls))

	for _, state := range []State{nil, {}} {
		final, err := p.Run(context.Background(), state)
		assert.ErrorIs(t, err, ErrEmptyState)
		assert.Nil(t, final)
	}
	assert.Zero(t, calls, "node must not run on empty state")
}

func TestPipeline_Run_NodeError(t *testing.T) {
	sentinel := errors.New("backend down")
	p := New("failing", NodeFunc(func(context.Context, []llm.Message) (llm.Message, error) {
		return llm.Message{}, sentinel
	}))

	final, err := p.Run(context.Background(), State{llm.UserMessage("hi")})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), `node "failing"`)
	assert.Nil(t, final)
}

func TestPipeline_Run_NodeCannotMutateCaller(t *testing.T) {
	p := New("mutating", NodeFunc(func(_ context.Context, messages []llm.Message) (llm.Message, error) {
		messages[0].Content = "tampered"
		return llm.Message{Role: llm.RoleAI, Content: "done"}, nil
	}))

	state := State{llm.UserMessage("hi")}
	_, err := p.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "hi", state[0].Content)
}

func TestPipeline_Run_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	p := New("ctx", NodeFunc(func(ctx context.Context, _ []llm.Message) (llm.Message, error) {
		assert.Equal(t, "v", ctx.Value(key{}))
		return llm.Message{Role: llm.RoleAI}, nil
	}))
	_, err := p.Run(ctx, State{llm.UserMessage("hi")})
	require.NoError(t, err)
}

func TestPipeline_Run_Concurrent(t *testing.T) {
	p := New("concurrent", NodeFunc(func(_ context.Context, messages []llm.Message) (llm.Message, error) {
		return llm.Message{Role: llm.RoleAI, Content: messages[len(messages)-1].Content}, nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := string(rune('a' + i%26))
			final, err := p.Run(context.Background(), State{llm.UserMessage(msg)})
			if assert.NoError(t, err) && assert.Len(t, final, 2) {
				assert.Equal(t, msg, final[1].Content)
			}
		}()
	}
	wg.Wait()
}

func TestPipeline_Run_Metrics(t *testing.T) {
	p := New("metered", NodeFunc(func(context.Context, []llm.Message) (llm.Message, error) {
		return llm.Message{Role: llm.RoleAI}, nil
	}))

	before := testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("metered", outcomeOK))
	_, err := p.Run(context.Background(), State{llm.UserMessage("hi")})
	require.NoError(t, err)
	after := testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("metered", outcomeOK))
	assert.Equal(t, before+1, after)

	beforeEmpty := testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("metered", outcomeEmpty))
	_, _ = p.Run(context.Background(), nil)
	assert.Equal(t, beforeEmpty+1, testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("metered", outcomeEmpty)))
}

func TestState_Last(t *testing.T) {
	_, ok := State{}.Last()
	assert.False(t, ok)

	last, ok := State{llm.UserMessage("a"), llm.UserMessage("b")}.Last()
	assert.True(t, ok)
	assert.Equal(t, "b", last.Content)
}
