package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pwledger/server/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError translates domain errors into JSON error responses.
func writeError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
		return
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, model.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	case errors.Is(err, model.ErrTokenRevoked),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenMismatch):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid refresh token"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
