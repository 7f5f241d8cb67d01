package context

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// userIDKey is the context key used to store and retrieve the authenticated user ID.
const userIDKey contextKey = "user_id"

// Manager stores and retrieves the authenticated user ID on a request context.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetUserIDToContext returns a child context carrying the user ID.
func (m *Manager) SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext retrieves the user ID from the context.
// The second return value reports whether a valid user ID was present.
func (m *Manager) GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
