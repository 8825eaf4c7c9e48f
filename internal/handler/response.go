package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tahsin/matricare/internal/apperror"
)

// errorResponse is the error shape every endpoint returns. The message is
// always safe for clients; internal detail stays in the server log.
type errorResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response. Headers and status must go out before the
// body; if encoding fails after that, logging is all that's left.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends the client-safe
// message.
//
// Status choices follow the observed API contract: every credential- and
// account-shaped failure is a 400 with a message the frontend displays, and
// assertion verification failures are 500 (kept as-is rather than the
// arguably-cleaner 401, since deployed clients key off it). Unknown errors
// become a generic 500; the raw error is logged, never returned.
func writeError(logger *slog.Logger, w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation),
			errors.Is(err, apperror.ErrDuplicateAccount),
			errors.Is(err, apperror.ErrInvalidCredentials),
			errors.Is(err, apperror.ErrGoogleOnlyAccount):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrInvalidAssertion),
			errors.Is(err, apperror.ErrStoreUnavailable):
			status = http.StatusInternalServerError
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", slog.String("error", err.Error()))
		}

		writeJSON(w, status, errorResponse{Message: appErr.Message})
		return
	}

	logger.Error("unexpected error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a request body into dst, rejecting malformed JSON.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "Invalid request body")
	}
	return nil
}
