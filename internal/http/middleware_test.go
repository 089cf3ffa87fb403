package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/time/rate"

	"bench-api/internal/contextutil"
)

func TestRequestID(t *testing.T) {
	validID := uuid.New().String()

	tests := []struct {
		name     string
		inbound  string
		wantKept bool
	}{
		{name: "generated when missing", inbound: ""},
		{name: "valid id kept", inbound: validID, wantKept: true},
		{name: "invalid id replaced", inbound: "not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxID string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = contextutil.RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.inbound != "" {
				req.Header.Set(RequestIDHeader, tt.inbound)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			headerID := w.Header().Get(RequestIDHeader)
			if headerID == "" || headerID != ctxID {
				t.Fatalf("RequestID() header = %q, context = %q", headerID, ctxID)
			}
			if _, err := uuid.Parse(headerID); err != nil {
				t.Errorf("RequestID() produced invalid uuid %q", headerID)
			}
			if tt.wantKept && headerID != tt.inbound {
				t.Errorf("RequestID() = %q, want inbound %q", headerID, tt.inbound)
			}
			if !tt.wantKept && headerID == tt.inbound {
				t.Errorf("RequestID() kept inbound %q", tt.inbound)
			}
		})
	}
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := LoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextutil.LoggerFromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := contextutil.WithLogger(req.Context(), base)
	ctx = contextutil.WithRequestID(ctx, "abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req.WithContext(ctx))

	if w.Code != http.StatusOK {
		t.Errorf("LoggerMiddleware() status = %v, want %v", w.Code, http.StatusOK)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("LoggerMiddleware() log line is not JSON: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]string{"method": "GET", "path": "/test", "request_id": "abc"} {
		if entry[key] != want {
			t.Errorf("LoggerMiddleware() %s = %v, want %v", key, entry[key], want)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
		shouldLog  bool
		wantLevel  string
	}{
		{
			name:       "regular request",
			method:     http.MethodPost,
			path:       "/echo",
			statusCode: http.StatusOK,
			shouldLog:  true,
			wantLevel:  "INFO",
		},
		{
			name:       "client error",
			method:     http.MethodPost,
			path:       "/echo",
			statusCode: http.StatusBadRequest,
			shouldLog:  true,
			wantLevel:  "WARN",
		},
		{
			name:       "server error",
			method:     http.MethodPost,
			path:       "/chat",
			statusCode: http.StatusServiceUnavailable,
			shouldLog:  true,
			wantLevel:  "ERROR",
		},
		{
			name:       "health check skipped",
			method:     http.MethodGet,
			path:       "/health",
			statusCode: http.StatusOK,
			shouldLog:  false,
		},
		{
			name:       "metrics scrape skipped",
			method:     http.MethodGet,
			path:       "/metrics",
			statusCode: http.StatusOK,
			shouldLog:  false,
		},
		{
			name:       "failing health check logged",
			method:     http.MethodGet,
			path:       "/health",
			statusCode: http.StatusInternalServerError,
			shouldLog:  true,
			wantLevel:  "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req = req.WithContext(contextutil.WithLogger(req.Context(), logger))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.statusCode {
				t.Errorf("RequestLogger() status = %v, want %v", w.Code, tt.statusCode)
			}
			if !tt.shouldLog {
				if buf.Len() != 0 {
					t.Errorf("RequestLogger() logged %q, want nothing", buf.String())
				}
				return
			}

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("RequestLogger() log line is not JSON: %v", err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("RequestLogger() level = %v, want %v", entry["level"], tt.wantLevel)
			}
			if entry["status"] != float64(tt.statusCode) {
				t.Errorf("RequestLogger() status attr = %v, want %v", entry["status"], tt.statusCode)
			}
		})
	}
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.Status() != http.StatusNotFound {
		t.Errorf("responseWriter.WriteHeader() statusCode = %v, want %v", rw.Status(), http.StatusNotFound)
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("responseWriter.WriteHeader() underlying status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestResponseWriter_WriteImpliesOK(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	if _, err := rw.Write([]byte("body")); err != nil {
		t.Fatalf("responseWriter.Write() error = %v", err)
	}
	if rw.Status() != http.StatusOK || w.Code != http.StatusOK {
		t.Errorf("responseWriter.Write() status = %v/%v, want 200", rw.Status(), w.Code)
	}
	if rw.Unwrap() != w {
		t.Error("responseWriter.Unwrap() should return the wrapped writer")
	}
}

func TestRecoverer(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "string panic", value: "boom"},
		{name: "error panic", value: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(panicRecoveries)

			handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req = req.WithContext(contextutil.WithLogger(req.Context(), slog.New(slog.DiscardHandler)))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusInternalServerError {
				t.Errorf("Recoverer() status = %v, want 500", w.Code)
			}
			var resp errorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Error == "" {
				t.Errorf("Recoverer() body = %q", w.Body.String())
			}
			if got := testutil.ToFloat64(panicRecoveries) - before; got != 1 {
				t.Errorf("Recoverer() recorded %v recoveries, want 1", got)
			}
		})
	}
}

func TestRecoverer_AbortHandler(t *testing.T) {
	handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("Recoverer() should re-panic ErrAbortHandler, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRateLimit(t *testing.T) {
	before := testutil.ToFloat64(rateLimitRejects)

	limiter := rate.NewLimiter(rate.Every(time.Minute), 2)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 3)
	var last *httptest.ResponseRecorder
	for i := range codes {
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/users", nil))
		codes[i] = last.Code
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("RateLimit() burst codes = %v, want first two 200", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("RateLimit() third code = %v, want 429", codes[2])
	}
	if got := last.Header().Get("Retry-After"); got != "1" {
		t.Errorf("RateLimit() Retry-After = %q, want 1", got)
	}
	if !strings.Contains(last.Body.String(), "Rate limit exceeded") {
		t.Errorf("RateLimit() body = %q", last.Body.String())
	}
	if got := testutil.ToFloat64(rateLimitRejects) - before; got != 1 {
		t.Errorf("RateLimit() recorded %v rejects, want 1", got)
	}
}
