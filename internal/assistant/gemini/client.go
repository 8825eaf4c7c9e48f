// Package gemini implements assistant.Assistant against Google's Generative
// Language API (generateContent over REST with server-side API key injection).
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tahsin/matricare/internal/assistant"
)

// compile-time check that *Client implements assistant.Assistant
var _ assistant.Assistant = (*Client)(nil)

// Client calls the generateContent endpoint for a fixed model with a fixed
// system instruction. The API key never leaves the server.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client. The API key is required; everything else defaults.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: API key must not be empty")
	}
	cfg = cfg.withDefaults()

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// Request/response wire shapes for v1beta generateContent. Only the fields
// this client reads or writes are declared.

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Reply sends message to the model and returns the first candidate's text.
//
// Empty candidates are classified by finish reason: SAFETY and MAX_TOKENS
// map to the assistant package's typed errors; anything else is
// ErrEmptyReply with the full response logged for diagnosis.
func (c *Client) Reply(ctx context.Context, message string) (string, error) {
	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents: []content{
			{Role: "user", Parts: []part{{Text: message}}},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: calling generateContent: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("gemini: reading response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini: decoding response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		status := ""
		if parsed.Error != nil {
			status = parsed.Error.Status
		}
		c.logger.Error("gemini upstream error",
			slog.Int("httpStatus", resp.StatusCode),
			slog.String("status", status),
		)
		return "", fmt.Errorf("gemini: upstream returned status %d", resp.StatusCode)
	}

	reply := firstText(parsed)
	if reply != "" {
		return reply, nil
	}

	switch finishReason(parsed) {
	case "SAFETY":
		return "", assistant.ErrSafetyBlocked
	case "MAX_TOKENS":
		return "", assistant.ErrTruncated
	default:
		c.logger.Error("gemini returned empty response", slog.String("body", string(body)))
		return "", assistant.ErrEmptyReply
	}
}

func firstText(r generateResponse) string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}

func finishReason(r generateResponse) string {
	if len(r.Candidates) == 0 {
		return ""
	}
	return r.Candidates[0].FinishReason
}
