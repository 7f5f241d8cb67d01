package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pwledger/server/internal/expiry"
	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/metrics"
	"github.com/pwledger/server/internal/model"
)

// DefaultSweepInterval is how often the scheduler re-evaluates every record.
const DefaultSweepInterval = 24 * time.Hour

// Sweep re-evaluates warning flags across account records: on a daily
// schedule for everyone, and on demand for one user or one record after a
// touch. Only flips are persisted; records already flagged and still
// warranting it are reported but not rewritten.
type Sweep struct {
	accountStore  model.AccountStore
	settingsStore model.SettingsStore
	userStore     model.UserStore
	notifier      model.Notifier
	metrics       *metrics.Metrics
	logger        *logger.Logger
	interval      time.Duration
}

func NewSweep(
	accountStore model.AccountStore,
	settingsStore model.SettingsStore,
	userStore model.UserStore,
	notifier model.Notifier,
	metrics *metrics.Metrics,
	logger *logger.Logger,
	interval time.Duration,
) *Sweep {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweep{
		accountStore:  accountStore,
		settingsStore: settingsStore,
		userStore:     userStore,
		notifier:      notifier,
		metrics:       metrics,
		logger:        logger,
		interval:      interval,
	}
}

// SweepUser evaluates every record of one user and returns the domains whose
// password-change period has elapsed, with days since the last change.
// Stale warnings (flag on, evaluator says off) are cleared as well so the
// flag stays consistent after the period was raised.
func (s *Sweep) SweepUser(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]model.ExpiredAccount, error) {
	if now.IsZero() {
		return nil, model.NewValidationError("now", "timestamp must be set")
	}

	periodDays := model.DefaultPeriodDays
	settings, err := s.settingsStore.Get(ctx, ownerID)
	if err == nil {
		periodDays = settings.PeriodDays
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	accounts, err := s.accountStore.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	var expired []model.ExpiredAccount
	for _, account := range accounts {
		shouldWarn := expiry.ShouldWarn(account.LastPasswordChangeDate, now, periodDays)

		if shouldWarn {
			expired = append(expired, model.ExpiredAccount{
				Domain:      account.Domain,
				ElapsedDays: expiry.ElapsedDays(account.LastPasswordChangeDate, now),
			})
		}

		if shouldWarn == account.IsWarning {
			continue
		}
		if err := s.accountStore.SetWarning(ctx, ownerID, account.Domain, shouldWarn); err != nil {
			return nil, fmt.Errorf("failed to persist warning flag for %s: %w", account.Domain, err)
		}
		s.metrics.IncWarningFlips(shouldWarn)
	}

	return expired, nil
}

// ReconcileOne re-evaluates a single record right after it was touched,
// independent of the schedule. Absent records are skipped silently.
func (s *Sweep) ReconcileOne(ctx context.Context, ownerID uuid.UUID, domain string, now time.Time) error {
	if now.IsZero() {
		return model.NewValidationError("now", "timestamp must be set")
	}

	account, err := s.accountStore.Get(ctx, ownerID, domain)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	periodDays := model.DefaultPeriodDays
	settings, err := s.settingsStore.Get(ctx, ownerID)
	if err == nil {
		periodDays = settings.PeriodDays
	} else if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	shouldWarn := expiry.ShouldWarn(account.LastPasswordChangeDate, now, periodDays)
	if shouldWarn == account.IsWarning {
		return nil
	}

	if err := s.accountStore.SetWarning(ctx, ownerID, domain, shouldWarn); err != nil {
		return fmt.Errorf("failed to persist warning flag: %w", err)
	}
	s.metrics.IncWarningFlips(shouldWarn)
	return nil
}

// SweepAll runs the evaluate/flip pass for every user and notifies the ones
// with expired accounts. Notification respects the per-user toggle;
// evaluation does not. One user's failure does not stop the pass.
func (s *Sweep) SweepAll(ctx context.Context, now time.Time) error {
	if now.IsZero() {
		return model.NewValidationError("now", "timestamp must be set")
	}

	userIDs, err := s.userStore.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	s.metrics.IncSweepRuns()

	for _, userID := range userIDs {
		expired, err := s.SweepUser(ctx, userID, now)
		if err != nil {
			s.logger.Error("sweep failed for user", "user_id", userID, "error", err)
			continue
		}
		if len(expired) == 0 {
			continue
		}

		notify := true
		settings, err := s.settingsStore.Get(ctx, userID)
		if err == nil {
			notify = settings.NotificationsEnabled
		} else if !errors.Is(err, model.ErrNotFound) {
			s.logger.Error("failed to get settings during sweep", "user_id", userID, "error", err)
		}

		if notify && s.notifier != nil {
			if err := s.notifier.NotifyExpired(ctx, userID, expired); err != nil {
				s.logger.Error("failed to notify user", "user_id", userID, "error", err)
			}
		}
	}

	return nil
}

// Run executes SweepAll on the configured cadence until ctx is cancelled.
// The first pass runs immediately so a freshly restarted server does not
// wait a day to catch up.
func (s *Sweep) Run(ctx context.Context) {
	if err := s.SweepAll(ctx, time.Now()); err != nil {
		s.logger.Error("initial sweep failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweep scheduler stopped")
			return
		case <-ticker.C:
			if err := s.SweepAll(ctx, time.Now()); err != nil {
				s.logger.Error("scheduled sweep failed", "error", err)
			}
		}
	}
}
