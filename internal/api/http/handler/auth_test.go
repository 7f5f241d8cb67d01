package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pwledger/server/internal/model"
	"github.com/pwledger/server/internal/service"
	"github.com/pwledger/server/internal/testutil"
)

type authServiceMock struct {
	mock.Mock
}

func (m *authServiceMock) Register(ctx context.Context) (service.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.Session), args.Error(1)
}

type tokenServiceMock struct {
	mock.Mock
}

func (m *tokenServiceMock) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *tokenServiceMock) RevokeByToken(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func TestAuth_Register(t *testing.T) {
	userID := uuid.New()

	authSvc := &authServiceMock{}
	authSvc.On("Register", mock.Anything).Return(service.Session{
		UserID:       userID,
		AccessToken:  "access",
		RefreshToken: "refresh",
	}, nil).Once()

	h := NewAuth(authSvc, &tokenServiceMock{}, testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/auth/register", nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, userID.String(), resp["user_id"])
	assert.Equal(t, "access", resp["access_token"])
	assert.Equal(t, "refresh", resp["refresh_token"])
}

func TestAuth_Refresh(t *testing.T) {
	tokenSvc := &tokenServiceMock{}
	tokenSvc.On("Refresh", mock.Anything, "old-refresh").Return("new-access", "new-refresh", nil).Once()

	h := NewAuth(&authServiceMock{}, tokenSvc, testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	body := bytes.NewReader([]byte(`{"refresh_token":"old-refresh"}`))
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/auth/refresh", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "new-access", resp["access_token"])
	assert.Equal(t, "new-refresh", resp["refresh_token"])
	assert.NotContains(t, resp, "user_id")
}

func TestAuth_Refresh_MissingToken(t *testing.T) {
	h := NewAuth(&authServiceMock{}, &tokenServiceMock{}, testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	body := bytes.NewReader([]byte(`{}`))
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/auth/refresh", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth_Refresh_Revoked(t *testing.T) {
	tokenSvc := &tokenServiceMock{}
	tokenSvc.On("Refresh", mock.Anything, "stolen").Return("", "", model.ErrTokenRevoked).Once()

	h := NewAuth(&authServiceMock{}, tokenSvc, testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	body := bytes.NewReader([]byte(`{"refresh_token":"stolen"}`))
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/auth/refresh", body))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_Revoke(t *testing.T) {
	tokenSvc := &tokenServiceMock{}
	tokenSvc.On("RevokeByToken", mock.Anything, "refresh").Return(nil).Once()

	h := NewAuth(&authServiceMock{}, tokenSvc, testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	body := bytes.NewReader([]byte(`{"refresh_token":"refresh"}`))
	h.Revoke(rec, httptest.NewRequest(http.MethodPost, "/auth/revoke", body))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	tokenSvc.AssertExpectations(t)
}
