package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bench-api/internal/contextutil"
	"bench-api/internal/service"
)

// maxBodyBytes bounds request bodies read by the JSON handlers.
const maxBodyBytes = 1 << 20

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctx := r.Context()
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// writeServiceError maps service errors to appropriate HTTP status codes and responses.
func writeServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "validation error", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}

	if errors.Is(err, service.ErrInvalidInput) {
		logger.WarnContext(ctx, "invalid input", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	logger.ErrorContext(ctx, "service error", "error", err)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "Language model backend timed out")
	case errors.Is(err, service.ErrBackendUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Language model backend unavailable")
	case errors.Is(err, service.ErrBackendProtocol):
		writeError(w, http.StatusBadGateway, "Language model backend returned an invalid response")
	default:
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}

// decodeJSON decodes a single JSON object from the request body into dst.
// Syntax errors, type mismatches and trailing data are reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &service.ValidationError{Field: typeErr.Field, Message: fmt.Sprintf("must be a %s", jsonKind(typeErr))}
		}
		return &service.ValidationError{Field: "body", Message: "must be a valid JSON object"}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &service.ValidationError{Field: "body", Message: "must contain a single JSON object"}
	}
	return nil
}

func jsonKind(typeErr *json.UnmarshalTypeError) string {
	if typeErr.Type == nil {
		return "valid value"
	}
	switch typeErr.Type.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int64:
		return "integer"
	default:
		return typeErr.Type.String()
	}
}

// requiredString returns *s or a ValidationError naming field when s is nil.
func requiredString(field string, s *string) (string, error) {
	if s == nil {
		return "", &service.ValidationError{Field: field, Message: "is required"}
	}
	return *s, nil
}

// intParam parses the named chi URL parameter as an integer.
// Values outside the int range are rejected like any other non-integer.
func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.ValidationError{Field: name, Message: fmt.Sprintf("must be an integer, got %q", raw)}
	}
	return v, nil
}
