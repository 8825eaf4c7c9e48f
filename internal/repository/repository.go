// Package repository declares the storage interfaces the service layer
// depends on. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/tahsin/matricare/internal/model"
)

// UserRepository is the account store.
//
// Create must enforce the uniqueness of email (and google_id when set)
// atomically at the storage layer and return an error wrapping
// apperror.ErrDuplicateAccount on a collision; two concurrent
// registrations for the same email must not both succeed.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByEmailOrGoogleID returns the account matching either key.
	// A google_id match wins over an email match.
	GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}
