// Package service holds the business logic between the HTTP handlers and
// the repositories/auth primitives.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tahsin/matricare/internal/apperror"
	"github.com/tahsin/matricare/internal/auth"
	"github.com/tahsin/matricare/internal/model"
	"github.com/tahsin/matricare/internal/repository"
)

// IdentityVerifier validates an external identity assertion (a Google ID
// token) and returns the identity it proves. *auth.GoogleVerifier is the
// production implementation; tests substitute a fake.
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion string) (*auth.GoogleUser, error)
}

// AuthService orchestrates the account store, credential verifier, token
// issuer and external identity verifier for the four auth flows.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	google    IdentityVerifier
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	google IdentityVerifier,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		google:    google,
		logger:    logger,
	}
}

// AuthResult bundles the account and the issued session token.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a password account and returns its ID.
//
// No token is issued on registration; the client logs in afterwards. The
// pre-check lookup gives the common duplicate case a clean error; the
// store's unique constraint catches the concurrent one.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "Email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "Password is required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.DuplicateAccount("Email already registered")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: looking up email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "Invalid password")
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))
	return user, nil
}

// Login verifies email/password credentials and issues a session token.
//
// "Email not found" and "wrong password" return the identical
// InvalidCredentials error so responses cannot enumerate accounts. An
// account with no password set gets the explicit Google-only message
// instead, whatever password was supplied.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up email: %w", err)
	}

	if !user.HasPassword() {
		return nil, apperror.GoogleOnlyAccount()
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// GoogleSignIn verifies a Google ID token assertion and signs the user in,
// creating or linking an account as needed.
//
// Resolution by google_id OR email covers three cases:
//   - no match: create a Google-only account (no password path)
//   - email match with google_id unset: link, set the subject, and fill
//     name/avatar only where currently empty (first write wins)
//   - google_id match: established account, no mutation
func (s *AuthService) GoogleSignIn(ctx context.Context, assertion string) (*AuthResult, error) {
	if strings.TrimSpace(assertion) == "" {
		return nil, apperror.ValidationFailed("idToken", "Missing idToken")
	}

	identity, err := s.google.Verify(ctx, assertion)
	if err != nil {
		return nil, apperror.InvalidAssertion(err)
	}

	if identity.Email == "" {
		return nil, apperror.ValidationFailed("email", "Google account has no email")
	}

	// Observed behavior: the asserted email is trusted for account matching
	// even when Google reports it unverified. Logged so operators can see
	// how often it happens.
	if !identity.EmailVerified {
		s.logger.Warn("google assertion with unverified email",
			slog.String("subject", identity.Subject),
		)
	}

	user, err := s.users.GetByEmailOrGoogleID(ctx, identity.Email, identity.Subject)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{
			Email:     identity.Email,
			GoogleID:  identity.Subject,
			Name:      identity.Name,
			AvatarURL: identity.Picture,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: creating google user: %w", err)
		}
		s.logger.Info("user created via google", slog.String("userID", user.ID))

	case err != nil:
		return nil, fmt.Errorf("service/auth: looking up google user: %w", err)

	case !user.HasGoogle():
		// Password-created account signing in with Google for the first
		// time: attach the subject without touching the password path.
		user.GoogleID = identity.Subject
		if user.Name == "" {
			user.Name = identity.Name
		}
		if user.AvatarURL == "" {
			user.AvatarURL = identity.Picture
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: linking google identity: %w", err)
		}
		s.logger.Info("google identity linked", slog.String("userID", user.ID))
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// VerifyToken reports whether a session token is currently valid and, if so,
// the account ID it belongs to. It never returns an error: bad signature,
// malformed string and expiry all collapse to ("", false).
func (s *AuthService) VerifyToken(tokenStr string) (string, bool) {
	if tokenStr == "" {
		return "", false
	}
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", false
	}
	return userID, true
}

// GetUserByID returns the account for the given internal ID. Used by the
// /api/me handler after the middleware has validated the token.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}
