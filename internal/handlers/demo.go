package handlers

import (
	"net/http"

	"bench-api/internal/service"
)

// DemoHandler serves the static demo endpoints: user lookup, user listing,
// echo and Fibonacci.
type DemoHandler struct {
	demo *service.DemoService
}

// NewDemoHandler creates a new DemoHandler.
func NewDemoHandler(demo *service.DemoService) *DemoHandler {
	return &DemoHandler{
		demo: demo,
	}
}

// EchoRequest represents the HTTP request payload for echo.
//
// swagger:model EchoRequest
type EchoRequest struct {
	Text *string `json:"text"`
}

// GetUser handles GET /user/{user_id}.
func (h *DemoHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "user_id")
	if err != nil {
		writeServiceError(w, r.Context(), err, "Failed to get user")
		return
	}
	writeJSON(w, r, http.StatusOK, h.demo.User(id))
}

// ListUsers handles GET /users.
func (h *DemoHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.demo.Users())
}

// Echo handles POST /echo.
func (h *DemoHandler) Echo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EchoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, ctx, err, "Invalid request body")
		return
	}
	text, err := requiredString("text", req.Text)
	if err != nil {
		writeServiceError(w, ctx, err, "Invalid request body")
		return
	}

	writeJSON(w, r, http.StatusOK, h.demo.Echo(text))
}

// Fibonacci handles GET /fib/{n}. The computation runs on the request goroutine;
// at the n=30 cap it takes on the order of milliseconds of CPU.
func (h *DemoHandler) Fibonacci(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	n, err := intParam(r, "n")
	if err != nil {
		writeServiceError(w, ctx, err, "Failed to compute fibonacci")
		return
	}

	result, err := service.Fibonacci(n)
	if err != nil {
		writeServiceError(w, ctx, err, "Failed to compute fibonacci")
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
