package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrBackendUnavailable is returned when the chat-completion service cannot be reached,
	// times out, or reports itself overloaded (429 / 5xx).
	ErrBackendUnavailable = errors.New("llm backend unavailable")
	// ErrBackendProtocol is returned when the service answers with an unexpected status
	// or a body that is not a usable chat completion.
	ErrBackendProtocol = errors.New("llm backend protocol error")
)

const (
	defaultTimeout  = 60 * time.Second
	maxErrorBodyLen = 512
)

// Client is a client for an OpenAI-compatible chat completions API
// (llama.cpp server, vLLM, OpenAI itself). It holds no per-call state and is
// safe for concurrent use.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every Invoke call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient creates a new LLM client. baseURL already includes the API version
// segment, e.g. "http://127.0.0.1:7001/v1".
func NewClient(baseURL, apiKey, model string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Timeout: defaultTimeout,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChatRequest represents the request payload for chat completions.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatChoice represents a single choice in the chat response.
type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatResponse represents the response from the chat completions API.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Choices []ChatChoice `json:"choices"`
}

// Invoke sends the message history to the chat completions endpoint and returns
// the assistant's reply. It blocks until the backend answers, the client timeout
// elapses, or ctx is done. There are no retries.
//
// Errors wrap ErrBackendUnavailable or ErrBackendProtocol; context errors are
// wrapped as well so callers can test for context.Canceled / DeadlineExceeded.
func (c *Client) Invoke(ctx context.Context, messages []Message, params ChatParams) (Message, error) {
	url := c.BaseURL + "/chat/completions"

	model := params.Model
	if model == "" {
		model = c.Model
	}

	payload := ChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("%w: failed to marshal request: %w", ErrBackendProtocol, err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return Message{}, fmt.Errorf("%w: failed to create request: %w", ErrBackendProtocol, err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Message{}, fmt.Errorf("%w: %w", ErrBackendUnavailable, ctxErr)
		}
		return Message{}, fmt.Errorf("%w: failed to send request: %w", ErrBackendUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		kind := ErrBackendProtocol
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			kind = ErrBackendUnavailable
		}
		return Message{}, fmt.Errorf("%w: bad status %d: %s", kind, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Message{}, fmt.Errorf("%w: %w", ErrBackendUnavailable, ctxErr)
		}
		return Message{}, fmt.Errorf("%w: failed to decode response: %w", ErrBackendProtocol, err)
	}

	if len(chatResp.Choices) == 0 {
		return Message{}, fmt.Errorf("%w: no choices returned", ErrBackendProtocol)
	}

	// Backends disagree on the role they echo; the reply is always the assistant's.
	return Message{
		Role:    RoleAssistant,
		Content: chatResp.Choices[0].Message.Content,
	}, nil
}
