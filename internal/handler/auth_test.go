package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tahsin/matricare/internal/auth"
	"github.com/tahsin/matricare/internal/handler"
	"github.com/tahsin/matricare/internal/repository/sqlite"
	"github.com/tahsin/matricare/internal/service"
)

// stubVerifier returns a fixed Google identity or error.
type stubVerifier struct {
	identity *auth.GoogleUser
	err      error
}

func (s *stubVerifier) Verify(ctx context.Context, assertion string) (*auth.GoogleUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

// newTestAuthHandler wires a handler against an in-memory SQLite store and
// real token/password services, with the Google verifier stubbed.
func newTestAuthHandler(t *testing.T, verifier service.IdentityVerifier) *handler.AuthHandler {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceWithCost(4)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	svc := service.NewAuthService(db, tokens, passwords, verifier, logger)
	return handler.NewAuthHandler(svc, logger)
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return body
}

func TestHandleRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{})

		rr := postJSON(t, h.HandleRegister, "/api/auth/register",
			`{"email":"a@x.com","password":"pw123456"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "User registered", body["message"])
		assert.NotEmpty(t, body["userId"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{})

		postJSON(t, h.HandleRegister, "/api/auth/register",
			`{"email":"dup@x.com","password":"pw123456"}`)
		rr := postJSON(t, h.HandleRegister, "/api/auth/register",
			`{"email":"dup@x.com","password":"other"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Email already registered", decodeBody(t, rr)["message"])
	})

	t.Run("malformed body", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{})

		rr := postJSON(t, h.HandleRegister, "/api/auth/register", `{"email":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleLogin(t *testing.T) {
	t.Run("success returns token", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{})

		reg := postJSON(t, h.HandleRegister, "/api/auth/register",
			`{"email":"a@x.com","password":"pw123456"}`)
		userID := decodeBody(t, reg)["userId"]

		rr := postJSON(t, h.HandleLogin, "/api/auth/login",
			`{"email":"a@x.com","password":"pw123456"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.NotEmpty(t, body["token"])
		assert.Equal(t, userID, body["userId"])
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{})

		postJSON(t, h.HandleRegister, "/api/auth/register",
			`{"email":"a@x.com","password":"pw123456"}`)

		unknown := postJSON(t, h.HandleLogin, "/api/auth/login",
			`{"email":"ghost@x.com","password":"pw123456"}`)
		wrong := postJSON(t, h.HandleLogin, "/api/auth/login",
			`{"email":"a@x.com","password":"nope"}`)

		assert.Equal(t, http.StatusBadRequest, unknown.Code)
		assert.Equal(t, unknown.Code, wrong.Code)
		assert.Equal(t, decodeBody(t, unknown), decodeBody(t, wrong))
	})

	t.Run("google-only account", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{identity: &auth.GoogleUser{
			Subject: "sub-1", Email: "g@x.com", EmailVerified: true,
		}})

		google := postJSON(t, h.HandleGoogle, "/api/auth/google", `{"idToken":"assertion"}`)
		assert.Equal(t, http.StatusOK, google.Code)

		rr := postJSON(t, h.HandleLogin, "/api/auth/login",
			`{"email":"g@x.com","password":"anything"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Please sign in with Google", decodeBody(t, rr)["message"])
	})
}

func TestHandleGoogle(t *testing.T) {
	identity := &auth.GoogleUser{
		Subject:       "sub-9",
		Email:         "g@x.com",
		EmailVerified: true,
		Name:          "Gee",
		Picture:       "https://example.com/g.png",
	}

	t.Run("fresh identity creates account", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{identity: identity})

		rr := postJSON(t, h.HandleGoogle, "/api/auth/google", `{"idToken":"assertion"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.NotEmpty(t, body["token"])
		assert.NotEmpty(t, body["userId"])
		assert.Equal(t, "g@x.com", body["email"])
		assert.Equal(t, "Gee", body["name"])
		assert.Equal(t, "https://example.com/g.png", body["avatar"])
	})

	t.Run("repeat sign-in returns same user", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{identity: identity})

		first := decodeBody(t, postJSON(t, h.HandleGoogle, "/api/auth/google", `{"idToken":"a"}`))
		second := decodeBody(t, postJSON(t, h.HandleGoogle, "/api/auth/google", `{"idToken":"a"}`))

		assert.Equal(t, first["userId"], second["userId"])
	})

	t.Run("missing idToken", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{identity: identity})

		rr := postJSON(t, h.HandleGoogle, "/api/auth/google", `{}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Missing idToken", decodeBody(t, rr)["message"])
	})

	t.Run("verification failure is 500", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{err: errors.New("aud mismatch")})

		rr := postJSON(t, h.HandleGoogle, "/api/auth/google", `{"idToken":"bad"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "Google authentication failed", body["message"])
		// No internal detail may leak.
		assert.NotContains(t, rr.Body.String(), "aud mismatch")
	})
}

func TestHandleVerify(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{})

		postJSON(t, h.HandleRegister, "/api/auth/register",
			`{"email":"a@x.com","password":"pw123456"}`)
		login := decodeBody(t, postJSON(t, h.HandleLogin, "/api/auth/login",
			`{"email":"a@x.com","password":"pw123456"}`))

		req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
		req.Header.Set("Authorization", "Bearer "+login["token"].(string))
		rr := httptest.NewRecorder()
		h.HandleVerify(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, true, body["valid"])
		assert.Equal(t, login["userId"], body["userId"])
	})

	t.Run("missing token is valid:false, not an error", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
		rr := httptest.NewRecorder()
		h.HandleVerify(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, false, body["valid"])
		assert.NotContains(t, body, "userId")
	})

	t.Run("garbage token is valid:false", func(t *testing.T) {
		h := newTestAuthHandler(t, &stubVerifier{})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
		req.Header.Set("Authorization", "Bearer total.garbage.token")
		rr := httptest.NewRecorder()
		h.HandleVerify(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, false, decodeBody(t, rr)["valid"])
	})
}
