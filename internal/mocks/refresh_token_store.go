package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pwledger/server/internal/model"
)

// RefreshTokenStore is a mock implementation of model.RefreshTokenStore.
type RefreshTokenStore struct {
	mock.Mock
}

func (m *RefreshTokenStore) Create(ctx context.Context, token model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenStore) GetByJTI(ctx context.Context, jti string) (model.RefreshToken, error) {
	args := m.Called(ctx, jti)
	return args.Get(0).(model.RefreshToken), args.Error(1)
}

func (m *RefreshTokenStore) RevokeByJTI(ctx context.Context, jti string) error {
	args := m.Called(ctx, jti)
	return args.Error(0)
}

func (m *RefreshTokenStore) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
