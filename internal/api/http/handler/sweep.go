package handler

import (
	"net/http"
	"time"

	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/model"
)

// Sweep handles on-demand warning re-evaluation for the authenticated user.
type Sweep struct {
	service        SweepService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewSweep creates a new Sweep handler.
func NewSweep(service SweepService, contextManager model.ContextManager, logger *logger.Logger) *Sweep {
	return &Sweep{
		service:        service,
		contextManager: contextManager,
		logger:         logger,
	}
}

type sweepResponse struct {
	Expired []expiredAccountResponse `json:"expired"`
}

type expiredAccountResponse struct {
	Domain      string `json:"domain"`
	ElapsedDays int    `json:"elapsed_days"`
}

// Run re-evaluates every warning flag of the user and returns the accounts
// currently past their expiry period.
func (h *Sweep) Run(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	expired, err := h.service.SweepUser(r.Context(), userID, time.Now().UTC())
	if err != nil {
		h.logger.Error("sweep failed", "user_id", userID, "error", err.Error())
		writeError(w, err)
		return
	}

	resp := sweepResponse{Expired: make([]expiredAccountResponse, 0, len(expired))}
	for _, e := range expired {
		resp.Expired = append(resp.Expired, expiredAccountResponse{
			Domain:      e.Domain,
			ElapsedDays: e.ElapsedDays,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
