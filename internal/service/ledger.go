package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pwledger/server/internal/domainkey"
	"github.com/pwledger/server/internal/expiry"
	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/metrics"
	"github.com/pwledger/server/internal/model"
)

// Ledger merges classified lifecycle events into per-domain account records
// and keeps their warning flags consistent. It is the only writer of account
// records besides direct user edits and the sweep.
type Ledger struct {
	accountStore  model.AccountStore
	settingsStore model.SettingsStore
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

func NewLedger(
	accountStore model.AccountStore,
	settingsStore model.SettingsStore,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Ledger {
	return &Ledger{
		accountStore:  accountStore,
		settingsStore: settingsStore,
		metrics:       metrics,
		logger:        logger,
	}
}

// ApplyEvent runs one classified event through the transition table.
//
//	SIGNUP      absent:  create with all three dates = now
//	SIGNUP      present: no-op (signup never overwrites history)
//	LOGIN       absent:  create with lastLoginDate = now only
//	LOGIN       present: touch lastLoginDate
//	PASS_CHANGE absent:  create with lastPasswordChangeDate = now only
//	PASS_CHANGE present: touch lastPasswordChangeDate, clear warning
//
// After any transition the warning flag is reconciled against the evaluator.
// The read-modify-write is best effort: two events racing on the same domain
// resolve as last write wins.
func (s *Ledger) ApplyEvent(ctx context.Context, ownerID uuid.UUID, domain string, kind model.EventKind, now time.Time) (model.Account, error) {
	if domain == "" {
		return model.Account{}, model.NewValidationError("domain", "must not be empty")
	}
	if !kind.Valid() {
		return model.Account{}, model.NewValidationError("kind", fmt.Sprintf("unknown event kind %q", kind))
	}
	if now.IsZero() {
		return model.Account{}, model.NewValidationError("now", "timestamp must be set")
	}

	existing, err := s.accountStore.Get(ctx, ownerID, domain)
	exists := true
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return model.Account{}, fmt.Errorf("failed to get account: %w", err)
		}
		exists = false
	}

	var account model.Account
	switch kind {
	case model.EventSignup:
		if exists {
			// Idempotent: a repeated signup keeps the original dates.
			return existing, nil
		}
		ts := now
		account = model.Account{
			OwnerID:                ownerID,
			Domain:                 domain,
			SignUpDate:             &ts,
			LastLoginDate:          &ts,
			LastPasswordChangeDate: &ts,
			CreatedAt:              now,
		}
		account, err = s.accountStore.Upsert(ctx, account)
		if err == nil {
			s.metrics.IncAccountsCreated()
		}

	case model.EventLogin:
		if exists {
			existing.LastLoginDate = &now
			account, err = s.accountStore.Update(ctx, existing)
		} else {
			account = model.Account{
				OwnerID:       ownerID,
				Domain:        domain,
				LastLoginDate: &now,
				CreatedAt:     now,
			}
			account, err = s.accountStore.Upsert(ctx, account)
			if err == nil {
				s.metrics.IncAccountsCreated()
			}
		}

	case model.EventPassChange:
		if exists {
			existing.LastPasswordChangeDate = &now
			existing.IsWarning = false
			account, err = s.accountStore.Update(ctx, existing)
		} else {
			account = model.Account{
				OwnerID:                ownerID,
				Domain:                 domain,
				LastPasswordChangeDate: &now,
				CreatedAt:              now,
			}
			account, err = s.accountStore.Upsert(ctx, account)
			if err == nil {
				s.metrics.IncAccountsCreated()
			}
		}
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to apply %s event: %w", kind, err)
	}

	account, err = s.reconcile(ctx, account, now)
	if err != nil {
		return model.Account{}, err
	}

	s.logger.Info("event applied", "domain", domain, "kind", kind, "warning", account.IsWarning)
	return account, nil
}

// RegisterManual registers a site by URL as if a signup had been observed.
func (s *Ledger) RegisterManual(ctx context.Context, ownerID uuid.UUID, rawURL string, now time.Time) (model.Account, error) {
	domain, ok := domainkey.Normalize(rawURL)
	if !ok {
		return model.Account{}, model.NewValidationError("url", "cannot extract a domain")
	}
	return s.ApplyEvent(ctx, ownerID, domain, model.EventSignup, now)
}

// GetAccounts lists all of the user's records, warning entries first.
func (s *Ledger) GetAccounts(ctx context.Context, ownerID uuid.UUID) ([]model.Account, error) {
	accounts, err := s.accountStore.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *Ledger) GetAccount(ctx context.Context, ownerID uuid.UUID, domain string) (model.Account, error) {
	account, err := s.accountStore.Get(ctx, ownerID, domain)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Account{}, model.ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// UpdateAccount applies a direct user edit, bypassing classification, then
// reconciles the warning flag immediately.
func (s *Ledger) UpdateAccount(ctx context.Context, ownerID uuid.UUID, domain string, patch model.AccountPatch, now time.Time) (model.Account, error) {
	if now.IsZero() {
		return model.Account{}, model.NewValidationError("now", "timestamp must be set")
	}

	account, err := s.accountStore.Get(ctx, ownerID, domain)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Account{}, model.ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to get account: %w", err)
	}

	account.SignUpDate = patch.SignUpDate
	account.LastLoginDate = patch.LastLoginDate
	account.LastPasswordChangeDate = patch.LastPasswordChangeDate

	account, err = s.accountStore.Update(ctx, account)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to update account: %w", err)
	}

	return s.reconcile(ctx, account, now)
}

// DeleteAccount removes the record. Absent records delete silently.
func (s *Ledger) DeleteAccount(ctx context.Context, ownerID uuid.UUID, domain string) error {
	if err := s.accountStore.Delete(ctx, ownerID, domain); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// Sample records seeded during onboarding. They render like real records but
// are excluded from being treated as real history by the flag.
const (
	sampleNormalDomain  = "example-normal.com"
	sampleWarningDomain = "example-warning.com"
)

// SeedSampleData creates one healthy and one already-expired record for the
// onboarding walkthrough.
func (s *Ledger) SeedSampleData(ctx context.Context, ownerID uuid.UUID, now time.Time) error {
	thirtyDaysAgo := now.Add(-30 * 24 * time.Hour)
	ninetyFiveDaysAgo := now.Add(-95 * 24 * time.Hour)

	samples := []model.Account{
		{
			OwnerID:                ownerID,
			Domain:                 sampleNormalDomain,
			SignUpDate:             &thirtyDaysAgo,
			LastLoginDate:          &now,
			LastPasswordChangeDate: &thirtyDaysAgo,
			IsWarning:              false,
			IsSampleData:           true,
			CreatedAt:              thirtyDaysAgo,
		},
		{
			OwnerID:                ownerID,
			Domain:                 sampleWarningDomain,
			SignUpDate:             &ninetyFiveDaysAgo,
			LastLoginDate:          &now,
			LastPasswordChangeDate: &ninetyFiveDaysAgo,
			IsWarning:              true,
			IsSampleData:           true,
			CreatedAt:              ninetyFiveDaysAgo,
		},
	}

	for _, sample := range samples {
		if _, err := s.accountStore.Upsert(ctx, sample); err != nil {
			return fmt.Errorf("failed to seed sample account %s: %w", sample.Domain, err)
		}
	}
	return nil
}

// DeleteSampleData removes the onboarding records once the walkthrough is done.
func (s *Ledger) DeleteSampleData(ctx context.Context, ownerID uuid.UUID) error {
	for _, domain := range []string{sampleNormalDomain, sampleWarningDomain} {
		if err := s.accountStore.Delete(ctx, ownerID, domain); err != nil {
			return fmt.Errorf("failed to delete sample account %s: %w", domain, err)
		}
	}
	return nil
}

// GetSettings returns the user's settings, falling back to defaults when
// none were persisted yet.
func (s *Ledger) GetSettings(ctx context.Context, ownerID uuid.UUID) (model.Settings, error) {
	settings, err := s.settingsStore.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.DefaultSettings(ownerID), nil
		}
		return model.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings validates and persists the user's configuration. The caller
// is expected to trigger a full sweep afterwards when the period changed.
func (s *Ledger) UpdateSettings(ctx context.Context, ownerID uuid.UUID, periodDays int, notificationsEnabled bool) (model.Settings, error) {
	if err := model.ValidatePeriodDays(periodDays); err != nil {
		return model.Settings{}, err
	}

	settings, err := s.settingsStore.Upsert(ctx, model.Settings{
		UserID:               ownerID,
		PeriodDays:           periodDays,
		NotificationsEnabled: notificationsEnabled,
	})
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to update settings: %w", err)
	}
	return settings, nil
}

// reconcile recomputes the warning flag against the owner's period and
// persists only a flip. A record with no password-change date never warns.
func (s *Ledger) reconcile(ctx context.Context, account model.Account, now time.Time) (model.Account, error) {
	periodDays := model.DefaultPeriodDays
	settings, err := s.settingsStore.Get(ctx, account.OwnerID)
	if err == nil {
		periodDays = settings.PeriodDays
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.Account{}, fmt.Errorf("failed to get settings: %w", err)
	}

	shouldWarn := expiry.ShouldWarn(account.LastPasswordChangeDate, now, periodDays)
	if shouldWarn == account.IsWarning {
		return account, nil
	}

	if err := s.accountStore.SetWarning(ctx, account.OwnerID, account.Domain, shouldWarn); err != nil {
		return model.Account{}, fmt.Errorf("failed to persist warning flag: %w", err)
	}
	s.metrics.IncWarningFlips(shouldWarn)
	account.IsWarning = shouldWarn
	return account, nil
}
