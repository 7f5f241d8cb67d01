// Package mocks provides testify mocks for the model interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pwledger/server/internal/model"
)

// AccountStore is a mock implementation of model.AccountStore.
type AccountStore struct {
	mock.Mock
}

func (m *AccountStore) Get(ctx context.Context, ownerID uuid.UUID, domain string) (model.Account, error) {
	args := m.Called(ctx, ownerID, domain)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *AccountStore) Upsert(ctx context.Context, account model.Account) (model.Account, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *AccountStore) Update(ctx context.Context, account model.Account) (model.Account, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *AccountStore) SetWarning(ctx context.Context, ownerID uuid.UUID, domain string, warning bool) error {
	args := m.Called(ctx, ownerID, domain, warning)
	return args.Error(0)
}

func (m *AccountStore) Delete(ctx context.Context, ownerID uuid.UUID, domain string) error {
	args := m.Called(ctx, ownerID, domain)
	return args.Error(0)
}

func (m *AccountStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Account, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Account), args.Error(1)
}
