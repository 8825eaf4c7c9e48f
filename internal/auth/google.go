package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleUser is the identity a verified Google ID token asserts.
type GoogleUser struct {
	Subject       string // Google's stable subject ID ("sub" claim)
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// GoogleVerifier validates Google-issued ID token assertions against a
// configured OAuth client audience.
//
// Trust is delegated entirely to Google's public key infrastructure: the
// underlying validator fetches and caches Google's signing certificates and
// checks signature, expiry, issuer and audience. This service never
// re-validates email ownership itself.
type GoogleVerifier struct {
	validator *idtoken.Validator
	audience  string
}

// NewGoogleVerifier creates a GoogleVerifier for the given OAuth client ID.
// The client ID is the expected "aud" claim; tokens minted for any other
// application are rejected.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("auth: Google client ID must not be empty")
	}

	validator, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: creating ID token validator: %w", err)
	}

	return &GoogleVerifier{
		validator: validator,
		audience:  clientID,
	}, nil
}

// Verify checks the assertion and extracts the identity claims.
//
// Any failure (bad signature, wrong audience, expired token, malformed
// string) returns a single opaque error; callers cannot tell them apart.
// Certificate fetches are bounded by ctx, so a hung Google endpoint fails
// the request instead of holding it open.
func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (*GoogleUser, error) {
	payload, err := v.validator.Validate(ctx, assertion, v.audience)
	if err != nil {
		return nil, fmt.Errorf("auth: validating Google ID token: %w", err)
	}

	user := &GoogleUser{
		Subject:       payload.Subject,
		Email:         claimString(payload.Claims, "email"),
		EmailVerified: claimBool(payload.Claims, "email_verified"),
		Name:          claimString(payload.Claims, "name"),
		Picture:       claimString(payload.Claims, "picture"),
	}

	if user.Subject == "" {
		return nil, fmt.Errorf("auth: Google ID token has no subject")
	}

	return user, nil
}

func claimString(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}

// claimBool tolerates both the bool and the legacy string encoding Google
// has used for email_verified.
func claimBool(claims map[string]any, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
