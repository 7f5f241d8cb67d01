package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pwledger/server/internal/model"
)

var _ model.AccountStore = (*AccountRepository)(nil)

type AccountRepository struct {
	db *Connection
}

func NewAccountRepository(db *Connection) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `owner_id, domain, sign_up_date, last_login_date, last_password_change_date,
		is_warning, is_sample_data, created_at, updated_at`

func (r *AccountRepository) Get(ctx context.Context, ownerID uuid.UUID, domain string) (model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE owner_id = $1 AND domain = $2`

	var account model.Account
	err := r.db.QueryRow(ctx, query, ownerID, domain).Scan(
		&account.OwnerID, &account.Domain,
		&account.SignUpDate, &account.LastLoginDate, &account.LastPasswordChangeDate,
		&account.IsWarning, &account.IsSampleData, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, model.ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// Upsert creates the record or overwrites an existing one. created_at is
// written exactly once: the conflict branch keeps the original value.
func (r *AccountRepository) Upsert(ctx context.Context, account model.Account) (model.Account, error) {
	query := `
		INSERT INTO accounts (owner_id, domain, sign_up_date, last_login_date, last_password_change_date,
			is_warning, is_sample_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (owner_id, domain) DO UPDATE SET
			sign_up_date = EXCLUDED.sign_up_date,
			last_login_date = EXCLUDED.last_login_date,
			last_password_change_date = EXCLUDED.last_password_change_date,
			is_warning = EXCLUDED.is_warning,
			is_sample_data = EXCLUDED.is_sample_data,
			updated_at = NOW()
		RETURNING ` + accountColumns

	var saved model.Account
	err := r.db.QueryRow(ctx, query,
		account.OwnerID, account.Domain,
		account.SignUpDate, account.LastLoginDate, account.LastPasswordChangeDate,
		account.IsWarning, account.IsSampleData, account.CreatedAt,
	).Scan(
		&saved.OwnerID, &saved.Domain,
		&saved.SignUpDate, &saved.LastLoginDate, &saved.LastPasswordChangeDate,
		&saved.IsWarning, &saved.IsSampleData, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to upsert account: %w", err)
	}

	return saved, nil
}

func (r *AccountRepository) Update(ctx context.Context, account model.Account) (model.Account, error) {
	query := `
		UPDATE accounts SET
			sign_up_date = $3,
			last_login_date = $4,
			last_password_change_date = $5,
			is_warning = $6,
			is_sample_data = $7,
			updated_at = NOW()
		WHERE owner_id = $1 AND domain = $2
		RETURNING ` + accountColumns

	var saved model.Account
	err := r.db.QueryRow(ctx, query,
		account.OwnerID, account.Domain,
		account.SignUpDate, account.LastLoginDate, account.LastPasswordChangeDate,
		account.IsWarning, account.IsSampleData,
	).Scan(
		&saved.OwnerID, &saved.Domain,
		&saved.SignUpDate, &saved.LastLoginDate, &saved.LastPasswordChangeDate,
		&saved.IsWarning, &saved.IsSampleData, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, model.ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to update account: %w", err)
	}

	return saved, nil
}

func (r *AccountRepository) SetWarning(ctx context.Context, ownerID uuid.UUID, domain string, warning bool) error {
	const query = `
		UPDATE accounts SET is_warning = $3, updated_at = NOW()
		WHERE owner_id = $1 AND domain = $2`

	cmd, err := r.db.Exec(ctx, query, ownerID, domain, warning)
	if err != nil {
		return fmt.Errorf("failed to set warning flag: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes the record. Deleting an absent record is not an error.
func (r *AccountRepository) Delete(ctx context.Context, ownerID uuid.UUID, domain string) error {
	const query = `DELETE FROM accounts WHERE owner_id = $1 AND domain = $2`
	if _, err := r.db.Exec(ctx, query, ownerID, domain); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE owner_id = $1
		ORDER BY is_warning DESC, domain ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		err := rows.Scan(
			&account.OwnerID, &account.Domain,
			&account.SignUpDate, &account.LastLoginDate, &account.LastPasswordChangeDate,
			&account.IsWarning, &account.IsSampleData, &account.CreatedAt, &account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}
