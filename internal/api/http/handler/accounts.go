package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/model"
)

// AccountService defines account ledger operations.
type AccountService interface {
	RegisterManual(ctx context.Context, ownerID uuid.UUID, rawURL string, now time.Time) (model.Account, error)
	GetAccounts(ctx context.Context, ownerID uuid.UUID) ([]model.Account, error)
	GetAccount(ctx context.Context, ownerID uuid.UUID, domain string) (model.Account, error)
	UpdateAccount(ctx context.Context, ownerID uuid.UUID, domain string, patch model.AccountPatch, now time.Time) (model.Account, error)
	DeleteAccount(ctx context.Context, ownerID uuid.UUID, domain string) error
	SeedSampleData(ctx context.Context, ownerID uuid.UUID, now time.Time) error
	DeleteSampleData(ctx context.Context, ownerID uuid.UUID) error
}

// Accounts handles HTTP endpoints for the account ledger.
type Accounts struct {
	service        AccountService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAccounts creates a new Accounts handler.
func NewAccounts(service AccountService, contextManager model.ContextManager, logger *logger.Logger) *Accounts {
	return &Accounts{
		service:        service,
		contextManager: contextManager,
		logger:         logger,
	}
}

type accountResponse struct {
	Domain                 string     `json:"domain"`
	SignUpDate             *time.Time `json:"sign_up_date"`
	LastLoginDate          *time.Time `json:"last_login_date"`
	LastPasswordChangeDate *time.Time `json:"last_password_change_date"`
	IsWarning              bool       `json:"is_warning"`
	IsSampleData           bool       `json:"is_sample_data,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func toAccountResponse(a model.Account) accountResponse {
	return accountResponse{
		Domain:                 a.Domain,
		SignUpDate:             a.SignUpDate,
		LastLoginDate:          a.LastLoginDate,
		LastPasswordChangeDate: a.LastPasswordChangeDate,
		IsWarning:              a.IsWarning,
		IsSampleData:           a.IsSampleData,
		CreatedAt:              a.CreatedAt,
		UpdatedAt:              a.UpdatedAt,
	}
}

type createAccountRequest struct {
	URL string `json:"url"`
}

type updateAccountRequest struct {
	SignUpDate             *time.Time `json:"sign_up_date"`
	LastLoginDate          *time.Time `json:"last_login_date"`
	LastPasswordChangeDate *time.Time `json:"last_password_change_date"`
}

// List returns all accounts of the authenticated user, warnings first.
func (h *Accounts) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	accounts, err := h.service.GetAccounts(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list accounts", "user_id", userID, "error", err.Error())
		writeError(w, err)
		return
	}

	responses := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		responses = append(responses, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, responses)
}

// Create registers a site by URL or hostname as a signed-up account.
func (h *Accounts) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	account, err := h.service.RegisterManual(r.Context(), userID, req.URL, time.Now().UTC())
	if err != nil {
		if !model.IsValidation(err) {
			h.logger.Error("failed to register account", "user_id", userID, "error", err.Error())
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

// Get returns a single account by domain.
func (h *Accounts) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	account, err := h.service.GetAccount(r.Context(), userID, chi.URLParam(r, "domain"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// Update overwrites the three lifecycle dates of an account. Absent or null
// fields clear the corresponding date.
func (h *Accounts) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	patch := model.AccountPatch{
		SignUpDate:             req.SignUpDate,
		LastLoginDate:          req.LastLoginDate,
		LastPasswordChangeDate: req.LastPasswordChangeDate,
	}

	account, err := h.service.UpdateAccount(r.Context(), userID, chi.URLParam(r, "domain"), patch, time.Now().UTC())
	if err != nil {
		if !model.IsValidation(err) {
			h.logger.Error("failed to update account", "user_id", userID, "error", err.Error())
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// Delete removes an account from the ledger.
func (h *Accounts) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	if err := h.service.DeleteAccount(r.Context(), userID, chi.URLParam(r, "domain")); err != nil {
		h.logger.Error("failed to delete account", "user_id", userID, "error", err.Error())
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SeedSample inserts the demo accounts used for onboarding.
func (h *Accounts) SeedSample(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	if err := h.service.SeedSampleData(r.Context(), userID, time.Now().UTC()); err != nil {
		h.logger.Error("failed to seed sample data", "user_id", userID, "error", err.Error())
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteSample removes the demo accounts, leaving real records untouched.
func (h *Accounts) DeleteSample(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	if err := h.service.DeleteSampleData(r.Context(), userID); err != nil {
		h.logger.Error("failed to delete sample data", "user_id", userID, "error", err.Error())
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
