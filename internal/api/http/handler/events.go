package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pwledger/server/internal/classify"
	"github.com/pwledger/server/internal/domainkey"
	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/metrics"
	"github.com/pwledger/server/internal/model"
)

// EventService applies classified lifecycle events to the ledger.
type EventService interface {
	ApplyEvent(ctx context.Context, ownerID uuid.UUID, domain string, kind model.EventKind, now time.Time) (model.Account, error)
}

// Events handles browser signal submission. A signal is classified into a
// lifecycle event and, when a registrable domain can be derived, applied to
// the ledger.
type Events struct {
	service        EventService
	contextManager model.ContextManager
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

// NewEvents creates a new Events handler.
func NewEvents(service EventService, contextManager model.ContextManager, metrics *metrics.Metrics, logger *logger.Logger) *Events {
	return &Events{
		service:        service,
		contextManager: contextManager,
		metrics:        metrics,
		logger:         logger,
	}
}

type formFeaturesRequest struct {
	Action     string   `json:"action"`
	ID         string   `json:"id"`
	Class      string   `json:"class"`
	InputTypes []string `json:"input_types"`
	InputNames []string `json:"input_names"`
	ButtonText string   `json:"button_text"`
}

type eventRequest struct {
	URL  string               `json:"url"`
	Form *formFeaturesRequest `json:"form"`
}

type eventResponse struct {
	Classified bool             `json:"classified"`
	Kind       model.EventKind  `json:"kind,omitempty"`
	Account    *accountResponse `json:"account,omitempty"`
}

// Submit classifies a browser signal and applies the resulting event.
// Signals that cannot be classified, or whose URL yields no registrable
// domain, are acknowledged without touching the ledger.
func (h *Events) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}

	signal := model.Signal{URL: req.URL}
	if req.Form != nil {
		signal.Form = &model.FormFeatures{
			Action:     req.Form.Action,
			ID:         req.Form.ID,
			Class:      req.Form.Class,
			InputTypes: req.Form.InputTypes,
			InputNames: req.Form.InputNames,
			ButtonText: req.Form.ButtonText,
		}
	}

	kind, classified := classify.Classify(signal)
	if !classified {
		h.metrics.IncEventUnclassified()
		writeJSON(w, http.StatusOK, eventResponse{Classified: false})
		return
	}
	h.metrics.IncEventClassified(string(kind))

	domain, ok := domainkey.Normalize(req.URL)
	if !ok {
		h.logger.Debug("signal URL yields no registrable domain", "url", req.URL)
		writeJSON(w, http.StatusOK, eventResponse{Classified: true, Kind: kind})
		return
	}

	account, err := h.service.ApplyEvent(r.Context(), userID, domain, kind, time.Now().UTC())
	if err != nil {
		h.logger.Error("failed to apply event",
			"user_id", userID,
			"domain", domain,
			"kind", kind,
			"error", err.Error())
		writeError(w, err)
		return
	}

	resp := toAccountResponse(account)
	writeJSON(w, http.StatusOK, eventResponse{Classified: true, Kind: kind, Account: &resp})
}
