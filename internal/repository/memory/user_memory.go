package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"userapi/internal/model"
	"userapi/internal/repository"
)

// UserMemory is an in-memory implementation of repository.UserRepository.
// It keeps records in a map guarded by a mutex and needs no external services.
// Missing rows are reported as sql.ErrNoRows to match the postgres driver.
type UserMemory struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewUserMemory creates an empty in-memory user repository.
func NewUserMemory() *UserMemory {
	return &UserMemory{users: make(map[string]model.User)}
}

var _ repository.UserRepository = (*UserMemory)(nil)

// Create stores a copy of the given user.
func (r *UserMemory) Create(ctx context.Context, u *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[u.ID] = *u
	out := *u
	return &out, nil
}

// FindByID fetches a single user by its ID.
func (r *UserMemory) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := u
	return &out, nil
}

// FindByEmail fetches a single user by email, case-insensitively.
func (r *UserMemory) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

// List returns users ordered by creation time (newest first) with a total count.
func (r *UserMemory) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	// Same ordering as the postgres driver: created_at DESC, id DESC.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := len(all)
	start := pq.Offset
	if start > total {
		start = total
	}
	end := start + pq.Limit
	if pq.Limit <= 0 || end > total {
		end = total
	}

	items := make([]model.User, end-start)
	copy(items, all[start:end])

	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

// Update overwrites an existing record.
func (r *UserMemory) Update(ctx context.Context, u *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return nil, sql.ErrNoRows
	}
	r.users[u.ID] = *u
	out := *u
	return &out, nil
}

// Delete removes a user by ID. Deleting a missing row is not an error.
func (r *UserMemory) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}
