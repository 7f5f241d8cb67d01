package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pwledger/server/internal/model"
)

// Notifier is a mock implementation of model.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) NotifyExpired(ctx context.Context, userID uuid.UUID, expired []model.ExpiredAccount) error {
	args := m.Called(ctx, userID, expired)
	return args.Error(0)
}
