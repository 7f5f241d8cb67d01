package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/service"
)

// AuthService defines anonymous device registration.
type AuthService interface {
	Register(ctx context.Context) (service.Session, error)
}

// TokenService defines token refresh and revoke operations.
type TokenService interface {
	Refresh(ctx context.Context, refreshToken string) (accessToken string, newRefreshToken string, err error)
	RevokeByToken(ctx context.Context, refreshToken string) error
}

// Auth handles HTTP endpoints for device registration and token lifecycle.
type Auth struct {
	authService  AuthService
	tokenService TokenService
	logger       *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, tokenService TokenService, logger *logger.Logger) *Auth {
	return &Auth{
		authService:  authService,
		tokenService: tokenService,
		logger:       logger,
	}
}

type sessionResponse struct {
	UserID       string `json:"user_id,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates an anonymous user and returns a fresh token pair.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	session, err := h.authService.Register(r.Context())
	if err != nil {
		h.logger.Error("registration failed", "error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		UserID:       session.UserID.String(),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

// Refresh rotates a refresh token and returns a new token pair.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "refresh_token is required"})
		return
	}

	access, refresh, err := h.tokenService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Error("token refresh failed", "error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// Revoke invalidates a refresh token.
func (h *Auth) Revoke(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "refresh_token is required"})
		return
	}

	if err := h.tokenService.RevokeByToken(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("token revoke failed", "error", err.Error())
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
