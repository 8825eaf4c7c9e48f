package handler_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tahsin/matricare/internal/assistant"
	"github.com/tahsin/matricare/internal/handler"
)

// mockAssistant captures the forwarded message and returns a canned reply
// or error.
type mockAssistant struct {
	capturedMessage string
	reply           string
	err             error
}

func (m *mockAssistant) Reply(ctx context.Context, message string) (string, error) {
	m.capturedMessage = message
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func newChatHandler(a assistant.Assistant) *handler.ChatHandler {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return handler.NewChatHandler(a, logger)
}

func postChat(h *handler.ChatHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/ai/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.HandleChat(rr, req)
	return rr
}

func TestHandleChat(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mock := &mockAssistant{reply: "Congratulations! Rest and hydration matter most."}
		h := newChatHandler(mock)

		rr := postChat(h, `{"message":"I am 12 weeks pregnant, any advice?"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"reply":"Congratulations! Rest and hydration matter most."}`, rr.Body.String())
		assert.Equal(t, "I am 12 weeks pregnant, any advice?", mock.capturedMessage)
	})

	t.Run("empty message rejected before upstream", func(t *testing.T) {
		mock := &mockAssistant{reply: "should never be sent"}
		h := newChatHandler(mock)

		for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{}`} {
			rr := postChat(h, body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", body)
			assert.JSONEq(t, `{"error":"Message is required"}`, rr.Body.String())
		}
		assert.Empty(t, mock.capturedMessage, "assistant must not be called for empty messages")
	})

	t.Run("malformed body", func(t *testing.T) {
		h := newChatHandler(&mockAssistant{})

		rr := postChat(h, `{"message":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("safety block maps to 403", func(t *testing.T) {
		h := newChatHandler(&mockAssistant{err: assistant.ErrSafetyBlocked})

		rr := postChat(h, `{"message":"blocked question"}`)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "safety filters")
	})

	t.Run("length limit maps to 400", func(t *testing.T) {
		h := newChatHandler(&mockAssistant{err: assistant.ErrTruncated})

		rr := postChat(h, `{"message":"very long question"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "shorter question")
	})

	t.Run("empty reply maps to 500", func(t *testing.T) {
		h := newChatHandler(&mockAssistant{err: assistant.ErrEmptyReply})

		rr := postChat(h, `{"message":"hello"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "could not generate a response")
	})

	t.Run("provider internals never leak", func(t *testing.T) {
		h := newChatHandler(&mockAssistant{
			err: errors.New("Post \"https://generativelanguage.googleapis.com\": dial tcp: timeout"),
		})

		rr := postChat(h, `{"message":"hello"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"AI request failed due to a system or API error."}`, rr.Body.String())
		assert.NotContains(t, rr.Body.String(), "googleapis")
	})
}
