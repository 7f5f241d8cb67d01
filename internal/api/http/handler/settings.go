package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/model"
)

// SettingsService defines per-user settings operations.
type SettingsService interface {
	GetSettings(ctx context.Context, ownerID uuid.UUID) (model.Settings, error)
	UpdateSettings(ctx context.Context, ownerID uuid.UUID, periodDays int, notificationsEnabled bool) (model.Settings, error)
}

// SweepService re-evaluates warnings for a single user.
type SweepService interface {
	SweepUser(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]model.ExpiredAccount, error)
}

// Settings handles HTTP endpoints for the expiry period and notification toggle.
type Settings struct {
	service        SettingsService
	sweep          SweepService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewSettings creates a new Settings handler.
func NewSettings(service SettingsService, sweep SweepService, contextManager model.ContextManager, logger *logger.Logger) *Settings {
	return &Settings{
		service:        service,
		sweep:          sweep,
		contextManager: contextManager,
		logger:         logger,
	}
}

type settingsResponse struct {
	PeriodDays           int  `json:"period_days"`
	NotificationsEnabled bool `json:"notifications_enabled"`
}

type updateSettingsRequest struct {
	PeriodDays           int  `json:"period_days"`
	NotificationsEnabled bool `json:"notifications_enabled"`
}

// Get returns the user settings, falling back to defaults when none are stored.
func (h *Settings) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	settings, err := h.service.GetSettings(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get settings", "user_id", userID, "error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		PeriodDays:           settings.PeriodDays,
		NotificationsEnabled: settings.NotificationsEnabled,
	})
}

// Update replaces the user settings. A changed expiry period re-evaluates
// every warning flag of the user immediately.
func (h *Settings) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), userID, req.PeriodDays, req.NotificationsEnabled)
	if err != nil {
		if !model.IsValidation(err) {
			h.logger.Error("failed to update settings", "user_id", userID, "error", err.Error())
		}
		writeError(w, err)
		return
	}

	if _, err := h.sweep.SweepUser(r.Context(), userID, time.Now().UTC()); err != nil {
		h.logger.Error("sweep after settings change failed", "user_id", userID, "error", err.Error())
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		PeriodDays:           settings.PeriodDays,
		NotificationsEnabled: settings.NotificationsEnabled,
	})
}
