package repository

import (
	"context"

	"userapi/internal/model"
)

// AccountRepository defines data access for ledger accounts.
type AccountRepository interface {
	// Create inserts a new account record with the given ID, owner and timestamps.
	Create(ctx context.Context, a *model.Account) (*model.Account, error)

	// FindByID returns an account by its ID.
	FindByID(ctx context.Context, id string) (*model.Account, error)

	// ListByUser returns all accounts owned by the given user, oldest first.
	ListByUser(ctx context.Context, userID string) ([]model.Account, error)

	// ApplyDelta atomically adds delta (which may be negative) to the balance
	// of an existing account and returns the updated record.
	// Returns ErrInsufficientBalance if the delta would take the balance
	// below zero; the balance is left unchanged in that case.
	ApplyDelta(ctx context.Context, id string, delta int64) (*model.Account, error)
}
