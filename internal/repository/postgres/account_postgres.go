package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"userapi/internal/model"
	"userapi/internal/repository"
)

// AccountPostgres is a PostgreSQL implementation of repository.AccountRepository.
type AccountPostgres struct {
	db *sql.DB
}

// NewAccountPostgres creates a new AccountPostgres repository.
func NewAccountPostgres(db *sql.DB) *AccountPostgres {
	return &AccountPostgres{db: db}
}

var _ repository.AccountRepository = (*AccountPostgres)(nil)

// Create inserts a new account row and returns the stored record.
func (r *AccountPostgres) Create(ctx context.Context, a *model.Account) (*model.Account, error) {
	const q = `
		INSERT INTO accounts (id, user_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, balance, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.UserID,
		a.Balance,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return scanAccount(row)
}

// FindByID fetches a single account by its ID.
func (r *AccountPostgres) FindByID(ctx context.Context, id string) (*model.Account, error) {
	const q = `
		SELECT id, user_id, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	return scanAccount(r.db.QueryRowContext(ctx, q, id))
}

// ListByUser returns the user's accounts ordered by creation time, oldest first.
func (r *AccountPostgres) ListByUser(ctx context.Context, userID string) ([]model.Account, error) {
	const q = `
		SELECT id, user_id, balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Account, 0)
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Balance,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ApplyDelta adds delta to the balance in a single conditional UPDATE so the
// non-negative balance check is atomic at the database.
// Callers must verify the account exists before interpreting the failure: a
// conditional UPDATE that matches no row reports ErrInsufficientBalance.
func (r *AccountPostgres) ApplyDelta(ctx context.Context, id string, delta int64) (*model.Account, error) {
	const q = `
		UPDATE accounts
		SET balance = balance + $2, updated_at = $3
		WHERE id = $1 AND balance + $2 >= 0
		RETURNING id, user_id, balance, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q, id, delta, time.Now().UTC())
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrInsufficientBalance
		}
		return nil, err
	}
	return a, nil
}

func scanAccount(row *sql.Row) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Balance,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
