package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userapi/internal/model"
	"userapi/internal/repository"
)

func newUser(id, email string, createdAt time.Time) *model.User {
	return &model.User{
		ID:        id,
		Name:      "User " + id,
		Email:     email,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestUserMemory_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserMemory()

	now := time.Now().UTC()
	stored, err := repo.Create(ctx, newUser("u1", "a@example.com", now))
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.ID)

	got, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	// Returned values are copies; mutating them must not touch the store.
	got.Email = "mutated@example.com"
	again, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", again.Email)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserMemory_FindByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserMemory()

	now := time.Now().UTC()
	_, err := repo.Create(ctx, newUser("u1", "Ada@Example.com", now))
	require.NoError(t, err)

	got, err := repo.FindByEmail(ctx, "ada@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = repo.FindByEmail(ctx, "other@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserMemory_List(t *testing.T) {
	ctx := context.Background()
	repo := NewUserMemory()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		u := newUser(fmt.Sprintf("u%d", i), fmt.Sprintf("u%d@example.com", i), base.Add(time.Duration(i)*time.Second))
		_, err := repo.Create(ctx, u)
		require.NoError(t, err)
	}

	res, err := repo.List(ctx, repository.PageQuery{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	require.Len(t, res.Items, 2)
	// Newest first
	assert.Equal(t, "u4", res.Items[0].ID)
	assert.Equal(t, "u3", res.Items[1].ID)

	res, err = repo.List(ctx, repository.PageQuery{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "u0", res.Items[0].ID)

	// Offset past the end yields an empty page, not an error
	res, err = repo.List(ctx, repository.PageQuery{Limit: 2, Offset: 50})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 5, res.Total)
}

func TestUserMemory_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewUserMemory()

	now := time.Now().UTC()
	_, err := repo.Create(ctx, newUser("u1", "a@example.com", now))
	require.NoError(t, err)

	u := newUser("u1", "new@example.com", now)
	u.Name = "Renamed"
	stored, err := repo.Update(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)

	_, err = repo.Update(ctx, newUser("missing", "x@example.com", now))
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserMemory_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewUserMemory()

	now := time.Now().UTC()
	_, err := repo.Create(ctx, newUser("u1", "a@example.com", now))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "u1"))
	_, err = repo.FindByID(ctx, "u1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// Deleting a missing row is not an error
	assert.NoError(t, repo.Delete(ctx, "u1"))
}

func TestUserMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewUserMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("u%d", i)
			_, err := repo.Create(ctx, newUser(id, id+"@example.com", time.Now().UTC()))
			assert.NoError(t, err)
			_, err = repo.FindByID(ctx, id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	res, err := repo.List(ctx, repository.PageQuery{Limit: 100, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Total)
}
