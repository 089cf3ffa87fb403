package service

import (
	"errors"
	"fmt"

	"bench-api/internal/graph"
	"bench-api/internal/llm"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyState is returned when a pipeline is asked to run without messages.
	ErrEmptyState = graph.ErrEmptyState
	// ErrBackendUnavailable is returned when the model backend cannot be reached.
	ErrBackendUnavailable = llm.ErrBackendUnavailable
	// ErrBackendProtocol is returned when the model backend answers with something unusable.
	ErrBackendProtocol = llm.ErrBackendProtocol
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
