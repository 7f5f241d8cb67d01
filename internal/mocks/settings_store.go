package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pwledger/server/internal/model"
)

// SettingsStore is a mock implementation of model.SettingsStore.
type SettingsStore struct {
	mock.Mock
}

func (m *SettingsStore) Get(ctx context.Context, userID uuid.UUID) (model.Settings, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Settings), args.Error(1)
}

func (m *SettingsStore) Upsert(ctx context.Context, settings model.Settings) (model.Settings, error) {
	args := m.Called(ctx, settings)
	return args.Get(0).(model.Settings), args.Error(1)
}
