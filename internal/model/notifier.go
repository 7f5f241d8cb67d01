package model

import (
	"context"

	"github.com/google/uuid"
)

// Notifier delivers sweep findings to the user. The transport (browser
// notification, email, ...) is outside the engine; the default implementation
// only logs.
type Notifier interface {
	NotifyExpired(ctx context.Context, userID uuid.UUID, expired []ExpiredAccount) error
}
