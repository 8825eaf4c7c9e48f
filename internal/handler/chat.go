package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tahsin/matricare/internal/assistant"
)

// ChatHandler proxies chat messages to the assistant. It shares no state
// with the auth flows.
type ChatHandler struct {
	assistant assistant.Assistant
	logger    *slog.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(a assistant.Assistant, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		assistant: a,
		logger:    logger,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type chatError struct {
	Error string `json:"error"`
}

// HandleChat answers a single chat message.
//
// HTTP: POST /api/ai/chat {message} → 200 {reply}
//
// Empty or whitespace-only messages are rejected before any upstream call.
// Provider refusals map to distinct statuses (403 for a safety block, 400
// for the length limit) with fixed messages; provider error internals are
// logged, never returned.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, chatError{Error: "Invalid request body"})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, chatError{Error: "Message is required"})
		return
	}

	reply, err := h.assistant.Reply(r.Context(), req.Message)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (h *ChatHandler) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assistant.ErrSafetyBlocked):
		writeJSON(w, http.StatusForbidden, chatError{
			Error: "I'm sorry, your request was blocked by the safety filters. Please try rephrasing your message.",
		})
	case errors.Is(err, assistant.ErrTruncated):
		writeJSON(w, http.StatusBadRequest, chatError{
			Error: "I ran out of space to complete my answer. Please ask a shorter question.",
		})
	case errors.Is(err, assistant.ErrEmptyReply):
		writeJSON(w, http.StatusInternalServerError, chatError{
			Error: "Sorry, the AI assistant could not generate a response.",
		})
	default:
		h.logger.Error("chat upstream failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, chatError{
			Error: "AI request failed due to a system or API error.",
		})
	}
}
