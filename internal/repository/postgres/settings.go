package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pwledger/server/internal/model"
)

var _ model.SettingsStore = (*SettingsRepository)(nil)

type SettingsRepository struct {
	db *Connection
}

func NewSettingsRepository(db *Connection) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, userID uuid.UUID) (model.Settings, error) {
	var settings model.Settings
	query := `SELECT user_id, period_days, notifications_enabled FROM settings WHERE user_id = $1`

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&settings.UserID, &settings.PeriodDays, &settings.NotificationsEnabled,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Settings{}, model.ErrNotFound
		}
		return model.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	return settings, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings model.Settings) (model.Settings, error) {
	query := `
		INSERT INTO settings (user_id, period_days, notifications_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			period_days = EXCLUDED.period_days,
			notifications_enabled = EXCLUDED.notifications_enabled,
			updated_at = NOW()
		RETURNING user_id, period_days, notifications_enabled`

	var saved model.Settings
	err := r.db.QueryRow(ctx, query,
		settings.UserID, settings.PeriodDays, settings.NotificationsEnabled,
	).Scan(&saved.UserID, &saved.PeriodDays, &saved.NotificationsEnabled)
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to upsert settings: %w", err)
	}

	return saved, nil
}
