package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apicontext "github.com/pwledger/server/internal/api/http/context"
	"github.com/pwledger/server/internal/model"
	"github.com/pwledger/server/internal/testutil"
)

type settingsServiceMock struct {
	mock.Mock
}

func (m *settingsServiceMock) GetSettings(ctx context.Context, ownerID uuid.UUID) (model.Settings, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(model.Settings), args.Error(1)
}

func (m *settingsServiceMock) UpdateSettings(ctx context.Context, ownerID uuid.UUID, periodDays int, notificationsEnabled bool) (model.Settings, error) {
	args := m.Called(ctx, ownerID, periodDays, notificationsEnabled)
	return args.Get(0).(model.Settings), args.Error(1)
}

type sweepServiceMock struct {
	mock.Mock
}

func (m *sweepServiceMock) SweepUser(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]model.ExpiredAccount, error) {
	args := m.Called(ctx, ownerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExpiredAccount), args.Error(1)
}

func TestSettings_Get(t *testing.T) {
	userID := uuid.New()

	svc := &settingsServiceMock{}
	svc.On("GetSettings", mock.Anything, userID).
		Return(model.Settings{UserID: userID, PeriodDays: 90, NotificationsEnabled: true}, nil).Once()

	h := NewSettings(svc, &sweepServiceMock{}, apicontext.NewManager(), testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	h.Get(rec, authedRequest(t, http.MethodGet, "/settings", nil, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(90), resp["period_days"])
	assert.Equal(t, true, resp["notifications_enabled"])
}

func TestSettings_Update_RunsSweep(t *testing.T) {
	userID := uuid.New()

	svc := &settingsServiceMock{}
	svc.On("UpdateSettings", mock.Anything, userID, 30, false).
		Return(model.Settings{UserID: userID, PeriodDays: 30, NotificationsEnabled: false}, nil).Once()

	sweep := &sweepServiceMock{}
	sweep.On("SweepUser", mock.Anything, userID, mock.Anything).Return([]model.ExpiredAccount{}, nil).Once()

	h := NewSettings(svc, sweep, apicontext.NewManager(), testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	body := []byte(`{"period_days":30,"notifications_enabled":false}`)
	h.Update(rec, authedRequest(t, http.MethodPut, "/settings", body, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(30), resp["period_days"])
	sweep.AssertExpectations(t)
}

func TestSettings_Update_InvalidPeriod(t *testing.T) {
	userID := uuid.New()

	svc := &settingsServiceMock{}
	svc.On("UpdateSettings", mock.Anything, userID, 0, true).
		Return(model.Settings{}, model.NewValidationError("periodDays", "must be between 1 and 365")).Once()

	sweep := &sweepServiceMock{}

	h := NewSettings(svc, sweep, apicontext.NewManager(), testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	body := []byte(`{"period_days":0,"notifications_enabled":true}`)
	h.Update(rec, authedRequest(t, http.MethodPut, "/settings", body, userID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	sweep.AssertNotCalled(t, "SweepUser")
}
