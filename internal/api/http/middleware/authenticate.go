package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/model"
)

// TokenService resolves user ID from bearer tokens.
type TokenService interface {
	GetUserID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects the user ID into the request context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// Handle parses the Authorization header, validates the token and calls the
// next handler with the user ID set on the context.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if tokenString == "" {
			m.unauthorized(w, "missing authorization token")
			return
		}

		userID, err := m.tokenService.GetUserID(r.Context(), tokenString)
		if err != nil || userID == uuid.Nil {
			m.unauthorized(w, "invalid authorization token")
			return
		}

		ctx := m.contextManager.SetUserIDToContext(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Authenticate) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
