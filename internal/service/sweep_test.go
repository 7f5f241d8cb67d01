package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pwledger/server/internal/metrics"
	"github.com/pwledger/server/internal/mocks"
	"github.com/pwledger/server/internal/model"
	"github.com/pwledger/server/internal/testutil"
)

func newTestSweep(accounts *mocks.AccountStore, settings *mocks.SettingsStore, users *mocks.UserStore, notifier *mocks.Notifier) *Sweep {
	var n model.Notifier
	if notifier != nil {
		n = notifier
	}
	return NewSweep(accounts, settings, users, n, metrics.New(prometheus.NewRegistry()), testutil.MakeNoopLogger(), 0)
}

func TestSweepUser_FlipsAndReports(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	fresh := now.Add(-10 * 24 * time.Hour)
	stale := now.Add(-100 * 24 * time.Hour)
	veryStale := now.Add(-200 * 24 * time.Hour)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}

	settings.On("Get", ctx, ownerID).Return(defaultSettingsFor(ownerID), nil).Once()
	accounts.On("ListByOwner", ctx, ownerID).Return([]model.Account{
		{OwnerID: ownerID, Domain: "fresh.com", LastPasswordChangeDate: &fresh},
		{OwnerID: ownerID, Domain: "newly-stale.com", LastPasswordChangeDate: &stale},
		{OwnerID: ownerID, Domain: "already-flagged.com", LastPasswordChangeDate: &veryStale, IsWarning: true},
		{OwnerID: ownerID, Domain: "no-history.com"},
	}, nil).Once()
	accounts.On("SetWarning", ctx, ownerID, "newly-stale.com", true).Return(nil).Once()

	svc := newTestSweep(accounts, settings, &mocks.UserStore{}, nil)

	expired, err := svc.SweepUser(ctx, ownerID, now)
	require.NoError(t, err)

	// Already-flagged records are still reported; only the flip is persisted.
	require.Len(t, expired, 2)
	assert.Equal(t, model.ExpiredAccount{Domain: "newly-stale.com", ElapsedDays: 100}, expired[0])
	assert.Equal(t, model.ExpiredAccount{Domain: "already-flagged.com", ElapsedDays: 200}, expired[1])
	accounts.AssertExpectations(t)
}

// Raising the period past a record's age clears its warning.
func TestSweepUser_ClearsStaleWarning(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	changed := now.Add(-100 * 24 * time.Hour)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}

	settings.On("Get", ctx, ownerID).Return(model.Settings{
		UserID:     ownerID,
		PeriodDays: 180,
	}, nil).Once()
	accounts.On("ListByOwner", ctx, ownerID).Return([]model.Account{
		{OwnerID: ownerID, Domain: "example.com", LastPasswordChangeDate: &changed, IsWarning: true},
	}, nil).Once()
	accounts.On("SetWarning", ctx, ownerID, "example.com", false).Return(nil).Once()

	svc := newTestSweep(accounts, settings, &mocks.UserStore{}, nil)

	expired, err := svc.SweepUser(ctx, ownerID, now)
	require.NoError(t, err)
	assert.Empty(t, expired)
	accounts.AssertExpectations(t)
}

func TestSweepUser_DefaultPeriodWhenNoSettings(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stale := now.Add(-91 * 24 * time.Hour)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}

	settings.On("Get", ctx, ownerID).Return(model.Settings{}, model.ErrNotFound).Once()
	accounts.On("ListByOwner", ctx, ownerID).Return([]model.Account{
		{OwnerID: ownerID, Domain: "example.com", LastPasswordChangeDate: &stale},
	}, nil).Once()
	accounts.On("SetWarning", ctx, ownerID, "example.com", true).Return(nil).Once()

	svc := newTestSweep(accounts, settings, &mocks.UserStore{}, nil)

	expired, err := svc.SweepUser(ctx, ownerID, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, 91, expired[0].ElapsedDays)
}

func TestSweepUser_ZeroTimestamp(t *testing.T) {
	svc := newTestSweep(&mocks.AccountStore{}, &mocks.SettingsStore{}, &mocks.UserStore{}, nil)

	_, err := svc.SweepUser(context.Background(), uuid.New(), time.Time{})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestReconcileOne_AbsentRecordIsSkipped(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	accounts := &mocks.AccountStore{}
	accounts.On("Get", ctx, ownerID, "missing.com").Return(model.Account{}, model.ErrNotFound).Once()

	svc := newTestSweep(accounts, &mocks.SettingsStore{}, &mocks.UserStore{}, nil)

	err := svc.ReconcileOne(ctx, ownerID, "missing.com", time.Now().UTC())
	require.NoError(t, err)
	accounts.AssertNotCalled(t, "SetWarning")
}

func TestReconcileOne_Flips(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stale := now.Add(-100 * 24 * time.Hour)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}

	accounts.On("Get", ctx, ownerID, "example.com").Return(model.Account{
		OwnerID:                ownerID,
		Domain:                 "example.com",
		LastPasswordChangeDate: &stale,
	}, nil).Once()
	settings.On("Get", ctx, ownerID).Return(defaultSettingsFor(ownerID), nil).Once()
	accounts.On("SetWarning", ctx, ownerID, "example.com", true).Return(nil).Once()

	svc := newTestSweep(accounts, settings, &mocks.UserStore{}, nil)

	require.NoError(t, svc.ReconcileOne(ctx, ownerID, "example.com", now))
	accounts.AssertExpectations(t)
}

func TestSweepAll_NotifiesExpiredUsers(t *testing.T) {
	ctx := context.Background()
	userA := uuid.New()
	userB := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	fresh := now.Add(-5 * 24 * time.Hour)
	stale := now.Add(-120 * 24 * time.Hour)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}
	users := &mocks.UserStore{}
	notifier := &mocks.Notifier{}

	users.On("ListIDs", ctx).Return([]uuid.UUID{userA, userB}, nil).Once()

	settings.On("Get", ctx, userA).Return(defaultSettingsFor(userA), nil)
	accounts.On("ListByOwner", ctx, userA).Return([]model.Account{
		{OwnerID: userA, Domain: "stale.com", LastPasswordChangeDate: &stale, IsWarning: true},
	}, nil).Once()

	settings.On("Get", ctx, userB).Return(defaultSettingsFor(userB), nil)
	accounts.On("ListByOwner", ctx, userB).Return([]model.Account{
		{OwnerID: userB, Domain: "fresh.com", LastPasswordChangeDate: &fresh},
	}, nil).Once()

	notifier.On("NotifyExpired", ctx, userA, mock.MatchedBy(func(expired []model.ExpiredAccount) bool {
		return len(expired) == 1 && expired[0].Domain == "stale.com"
	})).Return(nil).Once()

	svc := newTestSweep(accounts, settings, users, notifier)

	require.NoError(t, svc.SweepAll(ctx, now))
	notifier.AssertExpectations(t)
	notifier.AssertNumberOfCalls(t, "NotifyExpired", 1)
}

func TestSweepAll_RespectsNotificationToggle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stale := now.Add(-120 * 24 * time.Hour)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}
	users := &mocks.UserStore{}
	notifier := &mocks.Notifier{}

	users.On("ListIDs", ctx).Return([]uuid.UUID{userID}, nil).Once()
	settings.On("Get", ctx, userID).Return(model.Settings{
		UserID:               userID,
		PeriodDays:           90,
		NotificationsEnabled: false,
	}, nil)
	accounts.On("ListByOwner", ctx, userID).Return([]model.Account{
		{OwnerID: userID, Domain: "stale.com", LastPasswordChangeDate: &stale, IsWarning: true},
	}, nil).Once()

	svc := newTestSweep(accounts, settings, users, notifier)

	require.NoError(t, svc.SweepAll(ctx, now))
	notifier.AssertNotCalled(t, "NotifyExpired")
}

func TestSweepAll_OneUserFailureDoesNotStopPass(t *testing.T) {
	ctx := context.Background()
	badUser := uuid.New()
	goodUser := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}
	users := &mocks.UserStore{}

	users.On("ListIDs", ctx).Return([]uuid.UUID{badUser, goodUser}, nil).Once()

	settings.On("Get", ctx, badUser).Return(model.Settings{}, assert.AnError)
	settings.On("Get", ctx, goodUser).Return(defaultSettingsFor(goodUser), nil)
	accounts.On("ListByOwner", ctx, goodUser).Return([]model.Account{}, nil).Once()

	svc := newTestSweep(accounts, settings, users, nil)

	require.NoError(t, svc.SweepAll(ctx, now))
	accounts.AssertExpectations(t)
}

// End to end through the transition table: a password changed at day 0 with a
// 90 day period flips to warning once 90 full days have elapsed, not before.
func TestSweep_WarningTimeline(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}
	settings.On("Get", ctx, ownerID).Return(defaultSettingsFor(ownerID), nil)

	record := model.Account{
		OwnerID:                ownerID,
		Domain:                 "example.com",
		LastPasswordChangeDate: &t0,
	}

	accounts.On("ListByOwner", ctx, ownerID).Return([]model.Account{record}, nil)

	svc := newTestSweep(accounts, settings, &mocks.UserStore{}, nil)

	expired, err := svc.SweepUser(ctx, ownerID, t0.Add(89*24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, expired)

	accounts.On("SetWarning", ctx, ownerID, "example.com", true).Return(nil).Once()

	expired, err = svc.SweepUser(ctx, ownerID, t0.Add(90*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, 90, expired[0].ElapsedDays)
}
