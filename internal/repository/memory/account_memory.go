package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"userapi/internal/model"
	"userapi/internal/repository"
)

// AccountMemory is an in-memory implementation of repository.AccountRepository.
type AccountMemory struct {
	mu       sync.RWMutex
	accounts map[string]model.Account
}

// NewAccountMemory creates an empty in-memory account repository.
func NewAccountMemory() *AccountMemory {
	return &AccountMemory{accounts: make(map[string]model.Account)}
}

var _ repository.AccountRepository = (*AccountMemory)(nil)

// Create stores a copy of the given account.
func (r *AccountMemory) Create(ctx context.Context, a *model.Account) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts[a.ID] = *a
	out := *a
	return &out, nil
}

// FindByID fetches a single account by its ID.
func (r *AccountMemory) FindByID(ctx context.Context, id string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := a
	return &out, nil
}

// ListByUser returns the user's accounts ordered by creation time, oldest first.
func (r *AccountMemory) ListByUser(ctx context.Context, userID string) ([]model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]model.Account, 0)
	for _, a := range r.accounts {
		if a.UserID == userID {
			items = append(items, a)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// ApplyDelta adds delta to the balance under the write lock, refusing changes
// that would take the balance below zero.
func (r *AccountMemory) ApplyDelta(ctx context.Context, id string, delta int64) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if a.Balance+delta < 0 {
		return nil, repository.ErrInsufficientBalance
	}
	a.Balance += delta
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a

	out := a
	return &out, nil
}
