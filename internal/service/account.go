package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"userapi/internal/model"
	"userapi/internal/repository"
)

var (
	ErrAmountInvalid       = errors.New("amount must be positive")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// AccountService defines the use cases for ledger accounts.
// Amounts are integer cents and must be positive; direction is carried by the
// operation (deposit vs withdraw), not the sign.
type AccountService interface {
	// Open creates a zero-balance account for an existing user.
	Open(ctx context.Context, userID string) (*model.Account, error)

	// Get returns a single account by its ID.
	Get(ctx context.Context, id string) (*model.Account, error)

	// ListByUser returns all accounts owned by the user, oldest first.
	ListByUser(ctx context.Context, userID string) ([]model.Account, error)

	// Deposit adds amount to the balance.
	Deposit(ctx context.Context, id string, amount int64) (*model.Account, error)

	// Withdraw subtracts amount from the balance. Withdrawing more than the
	// balance fails with ErrInsufficientBalance and leaves it unchanged.
	Withdraw(ctx context.Context, id string, amount int64) (*model.Account, error)
}

type accountService struct {
	accounts repository.AccountRepository
	users    repository.UserRepository
}

// NewAccountService constructs a new AccountService.
// The user repository is consulted only to verify ownership on Open.
func NewAccountService(accounts repository.AccountRepository, users repository.UserRepository) AccountService {
	return &accountService{accounts: accounts, users: users}
}

func (s *accountService) Open(ctx context.Context, userID string) (*model.Account, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	a := &model.Account{
		ID:        uuid.New().String(),
		UserID:    userID,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.accounts.Create(ctx, a)
}

func (s *accountService) Get(ctx context.Context, id string) (*model.Account, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *accountService) ListByUser(ctx context.Context, userID string) ([]model.Account, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.accounts.ListByUser(ctx, userID)
}

func (s *accountService) Deposit(ctx context.Context, id string, amount int64) (*model.Account, error) {
	return s.applyDelta(ctx, id, amount, amount)
}

func (s *accountService) Withdraw(ctx context.Context, id string, amount int64) (*model.Account, error) {
	return s.applyDelta(ctx, id, amount, -amount)
}

// applyDelta validates the request, verifies the account exists, and applies
// the signed delta at the repository. Existence is checked first so a failed
// conditional update can be reported as an insufficient balance.
func (s *accountService) applyDelta(ctx context.Context, id string, amount, delta int64) (*model.Account, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if amount <= 0 {
		return nil, ErrAmountInvalid
	}
	if _, err := s.accounts.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	a, err := s.accounts.ApplyDelta(ctx, id, delta)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}
