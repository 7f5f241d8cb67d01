package model

import (
	"context"

	"github.com/google/uuid"
)

// Password-change period bounds and defaults. Values outside the bounds are
// rejected at the configuration boundary, never inside the expiry evaluator.
const (
	MinPeriodDays     = 1
	MaxPeriodDays     = 365
	DefaultPeriodDays = 90
)

// SettingsStore defines persistence operations for per-user settings.
type SettingsStore interface {
	Get(ctx context.Context, userID uuid.UUID) (Settings, error)
	Upsert(ctx context.Context, settings Settings) (Settings, error)
}

// Settings holds the user-configurable knobs of the expiry engine.
type Settings struct {
	UserID               uuid.UUID
	PeriodDays           int
	NotificationsEnabled bool
}

// DefaultSettings returns the settings seeded at registration.
func DefaultSettings(userID uuid.UUID) Settings {
	return Settings{
		UserID:               userID,
		PeriodDays:           DefaultPeriodDays,
		NotificationsEnabled: true,
	}
}

// ValidatePeriodDays checks the configured period against its bounds.
func ValidatePeriodDays(days int) error {
	if days < MinPeriodDays || days > MaxPeriodDays {
		return NewValidationError("periodDays", "must be between 1 and 365")
	}
	return nil
}
