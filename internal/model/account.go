package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountStore defines persistence operations for per-domain account records.
// Records are keyed by (owner, canonical domain); exactly one row exists per
// key. Upsert overwrites an existing row, Update fails with ErrNotFound,
// Delete on an absent row is a no-op.
type AccountStore interface {
	Get(ctx context.Context, ownerID uuid.UUID, domain string) (Account, error)
	Upsert(ctx context.Context, account Account) (Account, error)
	Update(ctx context.Context, account Account) (Account, error)
	SetWarning(ctx context.Context, ownerID uuid.UUID, domain string, warning bool) error
	Delete(ctx context.Context, ownerID uuid.UUID, domain string) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Account, error)
}

// Account tracks the lifecycle of one website account for one user.
// The lifecycle engine and the expiry sweep are the only writers besides
// direct user edits.
type Account struct {
	OwnerID                uuid.UUID
	Domain                 string
	SignUpDate             *time.Time
	LastLoginDate          *time.Time
	LastPasswordChangeDate *time.Time
	IsWarning              bool
	IsSampleData           bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// AccountPatch carries a direct user edit. All three dates are overwritten;
// a nil field clears the date. This bypasses event classification entirely.
type AccountPatch struct {
	SignUpDate             *time.Time
	LastLoginDate          *time.Time
	LastPasswordChangeDate *time.Time
}

// ExpiredAccount is one sweep finding: a domain whose password has not been
// changed for at least the configured period.
type ExpiredAccount struct {
	Domain      string
	ElapsedDays int
}
