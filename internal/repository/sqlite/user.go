package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/tahsin/matricare/internal/apperror"
	"github.com/tahsin/matricare/internal/model"
	"github.com/tahsin/matricare/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new account, generating its ID and CreatedAt.
//
// The UNIQUE constraints on email and google_id are the authoritative
// duplicate check: a lost read-then-write race surfaces here as
// apperror.ErrDuplicateAccount instead of a second row.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, google_id, name, avatar_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		nullable(user.PasswordHash),
		nullable(user.GoogleID),
		user.Name,
		user.AvatarURL,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateAccount("Email already registered")
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// GetByID retrieves an account by its internal ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return db.getOne(ctx,
		`SELECT id, email, password_hash, google_id, name, avatar_url, created_at
		 FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves an account by email. The lookup is case-sensitive,
// matching how emails are stored.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getOne(ctx,
		`SELECT id, email, password_hash, google_id, name, avatar_url, created_at
		 FROM users WHERE email = ?`, email)
}

// GetByEmailOrGoogleID retrieves an account matching either key. Ordering
// puts the google_id match first so an assertion for an already-linked
// account resolves by subject even if the email has since changed on
// Google's side.
func (db *DB) GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (*model.User, error) {
	var u model.User
	var passwordHash, gid sql.NullString

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, password_hash, google_id, name, avatar_url, created_at
		 FROM users WHERE google_id = ? OR email = ?
		 ORDER BY (google_id = ?) DESC
		 LIMIT 1`,
		googleID, email, googleID,
	).Scan(&u.ID, &u.Email, &passwordHash, &gid, &u.Name, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email or google_id: %w", err)
	}

	u.PasswordHash = passwordHash.String
	u.GoogleID = gid.String
	return &u, nil
}

// Update persists the mutable fields of an existing account. Email and
// CreatedAt are immutable once written; they are not part of the SET list.
func (db *DB) Update(ctx context.Context, user *model.User) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, google_id = ?, name = ?, avatar_url = ?
		 WHERE id = ?`,
		nullable(user.PasswordHash),
		nullable(user.GoogleID),
		user.Name,
		user.AvatarURL,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateAccount("Google account already linked to another user")
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update result for user %s: %w", user.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

func (db *DB) getOne(ctx context.Context, query, arg string) (*model.User, error) {
	var u model.User
	var passwordHash, googleID sql.NullString

	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &passwordHash, &googleID, &u.Name, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	u.PasswordHash = passwordHash.String
	u.GoogleID = googleID.String
	return &u, nil
}

// nullable maps the model's empty-string-as-unset idiom to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
// modernc.org/sqlite exposes the SQLITE_CONSTRAINT_UNIQUE message text; the
// driver does not export a stable error type for it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
