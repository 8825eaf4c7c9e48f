// Package apperror defines the application's error taxonomy.
//
// Services wrap one of the sentinel errors below into an AppError carrying a
// user-facing message. HTTP handlers map sentinels to status codes with
// errors.Is and read the message with errors.As; they never inspect raw
// database or upstream errors.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrDuplicateAccount   = errors.New("duplicate account")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrGoogleOnlyAccount  = errors.New("google-only account")
	ErrInvalidAssertion   = errors.New("invalid identity assertion")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

type AppError struct {
	Err     error  // sentinel from this package
	Message string // human-readable, safe to return to clients
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// DuplicateAccount is returned when registration or sign-in collides with an
// existing account on a unique key (email or Google subject).
func DuplicateAccount(message string) *AppError {
	return &AppError{
		Err:     ErrDuplicateAccount,
		Message: message,
	}
}

// InvalidCredentials carries one fixed message for both "email not found" and
// "wrong password" so responses cannot be used to enumerate accounts.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "Invalid credentials",
	}
}

// GoogleOnlyAccount is returned on a password login attempt against an
// account that has no password set.
func GoogleOnlyAccount() *AppError {
	return &AppError{
		Err:     ErrGoogleOnlyAccount,
		Message: "Please sign in with Google",
	}
}

// InvalidAssertion wraps any failure while verifying a Google ID token.
// The underlying verifier error is kept for logging but the message stays
// generic; signature, audience and expiry failures are indistinguishable
// to clients.
func InvalidAssertion(err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrInvalidAssertion, err),
		Message: "Google authentication failed",
	}
}

// StoreUnavailable wraps an unexpected database error.
func StoreUnavailable(err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrStoreUnavailable, err),
		Message: "An internal error occurred",
	}
}
