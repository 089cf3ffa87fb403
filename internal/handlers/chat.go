package handlers

import (
	"net/http"

	"bench-api/internal/contextutil"
	"bench-api/internal/service"
)

// ChatHandler handles HTTP requests for chat against one pipeline variant.
type ChatHandler struct {
	chatService service.ChatService
	variant     service.Variant
}

// NewChatHandler creates a new ChatHandler answering with the given variant.
func NewChatHandler(chatService service.ChatService, variant service.Variant) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		variant:     variant,
	}
}

// ChatRequest represents the HTTP request payload for chat.
//
// swagger:model ChatRequest
type ChatRequest struct {
	Message *string `json:"message"`
}

// ChatResponse represents the HTTP response payload for chat.
//
// swagger:model ChatResponse
type ChatResponse struct {
	Response string `json:"response"`
}

// ServeHTTP handles HTTP requests for chat.
//
// swagger:route POST /chat chat
//
// # Chat through the language-model pipeline
//
// POST /chat/mock takes the same body and answers with the mock responder.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/ChatResponse"
//	'400':
//	  description: Missing or mistyped message
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Backend answered with an unusable response
//	'503':
//	  description: Backend unreachable
//	'504':
//	  description: Backend timed out
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, ctx, err, "Invalid request body")
		return
	}
	message, err := requiredString("message", req.Message)
	if err != nil {
		writeServiceError(w, ctx, err, "Invalid request body")
		return
	}

	// Convert HTTP request to service request
	svcResp, err := h.chatService.Chat(ctx, service.ChatRequest{
		Message: message,
		Variant: h.variant,
	})
	if err != nil {
		writeServiceError(w, ctx, err, "Failed to process chat request")
		return
	}

	logger.DebugContext(ctx, "chat response ready", "variant", h.variant)
	writeJSON(w, r, http.StatusOK, ChatResponse{
		Response: svcResp.Reply,
	})
}
