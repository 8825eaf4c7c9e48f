// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// An account always has at least one sign-in path: a bcrypt password hash
// (email/password registration) or a Google subject ID (Google sign-in).
// A "linked" account has both: created with a password first, then matched
// by email on a later Google sign-in.
//
// Optional fields use the empty string as their unset value rather than
// pointers. The repository translates empty strings to SQL NULL where the
// schema needs it (google_id must be NULL, not '', so the unique index only
// applies to accounts that actually have a Google identity).
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`         // unique, stored case-sensitively
	PasswordHash string    `json:"-"         db:"password_hash"` // empty for Google-only accounts; never serialized
	GoogleID     string    `json:"-"         db:"google_id"`     // Google "sub" claim; empty if never linked
	Name         string    `json:"name"      db:"name"`
	AvatarURL    string    `json:"avatar"    db:"avatar_url"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// HasPassword reports whether the email/password login path is usable.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// HasGoogle reports whether the Google sign-in path is usable.
func (u *User) HasGoogle() bool {
	return u.GoogleID != ""
}
