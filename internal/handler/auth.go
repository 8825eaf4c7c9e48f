// Package handler contains the HTTP adapters. Handlers decode requests,
// call the service layer, and encode responses; no business rules live here.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/tahsin/matricare/internal/auth"
	"github.com/tahsin/matricare/internal/service"
)

// AuthHandler exposes the four auth flows plus the profile lookup.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		logger: logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a password account.
//
// HTTP: POST /api/auth/register
// 200 {message, userId} | 400 {message} on duplicate or bad input.
// Deliberately returns no token; the client logs in afterwards.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User registered",
		"userId":  user.ID,
	})
}

// HandleLogin verifies credentials and issues a session token.
//
// HTTP: POST /api/auth/login
// 200 {token, userId} | 400 {message}, the same status and message for
// unknown email and wrong password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":  result.Token,
		"userId": result.User.ID,
	})
}

type googleRequest struct {
	IDToken string `json:"idToken"`
}

// HandleGoogle signs a user in with a Google ID token, creating or linking
// the account as needed.
//
// HTTP: POST /api/auth/google
// 200 {token, userId, email, name, avatar} | 400 missing token or email |
// 500 on assertion verification failure.
func (h *AuthHandler) HandleGoogle(w http.ResponseWriter, r *http.Request) {
	var req googleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, err)
		return
	}

	result, err := h.auth.GoogleSignIn(r.Context(), req.IDToken)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":  result.Token,
		"userId": result.User.ID,
		"email":  result.User.Email,
		"name":   result.User.Name,
		"avatar": result.User.AvatarURL,
	})
}

// HandleVerify reports whether the bearer token is currently valid.
//
// HTTP: GET /api/auth/verify with Authorization: Bearer <token>
// Always 200: a missing, malformed or expired token is {valid:false}, never
// an error response.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	tokenStr := auth.BearerToken(r)

	userID, valid := h.auth.VerifyToken(tokenStr)
	if !valid {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  true,
		"userId": userID,
	})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/me
// Auth: required (RequireAuth sets the userID in context).
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth; kept for direct-call safety.
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
