// Package graph runs a message history through a single processing node.
//
// A Pipeline is the degenerate state machine START -> node -> END: the node is
// invoked exactly once with the full history and its reply is appended. There is
// no branching, looping, retrying or state merging.
//
//	p := graph.New("llm", node)
//	final, err := p.Run(ctx, graph.State{llm.UserMessage("hi")})
//
// Pipelines hold no per-run state and may be shared across goroutines.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bench-api/internal/llm"
)

// Start and End are the fixed entry and exit markers of every pipeline.
const (
	Start = "__start__"
	End   = "__end__"
)

// ErrEmptyState is returned when a pipeline is run with no messages.
var ErrEmptyState = errors.New("pipeline state has no messages")

// State is the ordered message history flowing through a pipeline.
type State []llm.Message

// Last returns the final message of the state.
func (s State) Last() (llm.Message, bool) {
	if len(s) == 0 {
		return llm.Message{}, false
	}
	return s[len(s)-1], true
}

// Node produces one reply message from a message history.
type Node interface {
	Invoke(ctx context.Context, messages []llm.Message) (llm.Message, error)
}

// NodeFunc adapts a function to the Node interface.
type NodeFunc func(ctx context.Context, messages []llm.Message) (llm.Message, error)

// Invoke calls f.
func (f NodeFunc) Invoke(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	return f(ctx, messages)
}

// Pipeline is a compiled START -> node -> END graph.
type Pipeline struct {
	name string
	node Node
}

// New compiles a single-node pipeline. It panics if name is empty or node is nil,
// since both indicate a wiring mistake at startup.
func New(name string, node Node) *Pipeline {
	if name == "" || name == Start || name == End {
		panic(fmt.Sprintf("graph: invalid node name %q", name))
	}
	if node == nil {
		panic("graph: nil node")
	}
	return &Pipeline{name: name, node: node}
}

// Name returns the name of the pipeline's node.
func (p *Pipeline) Name() string {
	return p.name
}

// Steps returns the pipeline's execution order, markers included.
func (p *Pipeline) Steps() []string {
	return []string{Start, p.name, End}
}

// Run executes the node once and returns a new state with its reply appended.
// The input state is never modified.
func (p *Pipeline) Run(ctx context.Context, state State) (State, error) {
	start := time.Now()

	if len(state) == 0 {
		observeRun(p.name, outcomeEmpty, start)
		return nil, ErrEmptyState
	}

	history := make([]llm.Message, len(state), len(state)+1)
	copy(history, state)

	reply, err := p.node.Invoke(ctx, history[:len(state):len(state)])
	if err != nil {
		observeRun(p.name, outcomeError, start)
		return nil, fmt.Errorf("node %q: %w", p.name, err)
	}

	observeRun(p.name, outcomeOK, start)
	return append(State(history), reply), nil
}
