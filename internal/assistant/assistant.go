// Package assistant defines the interface to the external generative-AI
// collaborator that answers chat messages. The concrete Gemini client lives
// in the gemini subpackage; handlers depend only on this interface.
package assistant

import (
	"context"
	"errors"
)

// Typed failures a provider can report. Handlers map these to distinct HTTP
// statuses without exposing provider-internal error structures.
var (
	// ErrSafetyBlocked means the provider refused the request on safety
	// grounds (finish reason SAFETY).
	ErrSafetyBlocked = errors.New("assistant: request blocked by safety filters")

	// ErrTruncated means the provider hit its output token limit before
	// producing usable text (finish reason MAX_TOKENS with no content).
	ErrTruncated = errors.New("assistant: response truncated by length limit")

	// ErrEmptyReply means the provider returned no text for an
	// unclassified reason.
	ErrEmptyReply = errors.New("assistant: provider returned no reply")
)

// Assistant generates a reply to a single chat message.
//
// Implementations must bound the upstream call with ctx (plus their own
// timeout) so a hung provider fails the request rather than holding it open.
type Assistant interface {
	Reply(ctx context.Context, message string) (string, error)
}
