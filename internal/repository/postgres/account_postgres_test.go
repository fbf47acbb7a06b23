package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"userapi/internal/model"
	"userapi/internal/repository"
)

func accountColumns() []string {
	return []string{"id", "user_id", "balance", "created_at", "updated_at"}
}

func TestAccountPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAccountPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	a := &model.Account{
		ID:        "acct-uuid",
		UserID:    "user-uuid",
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	rows := sqlmock.NewRows(accountColumns()).
		AddRow(a.ID, a.UserID, a.Balance, a.CreatedAt, a.UpdatedAt)

	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs(a.ID, a.UserID, a.Balance, a.CreatedAt, a.UpdatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, a)

	assert.NoError(t, err)
	assert.Equal(t, a.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAccountPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(accountColumns()).
			AddRow("acct-id", "user-id", int64(500), time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = ?").
			WithArgs("acct-id").
			WillReturnRows(rows)

		a, err := repo.FindByID(ctx, "acct-id")

		assert.NoError(t, err)
		assert.Equal(t, int64(500), a.Balance)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		a, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, a)
	})
}

func TestAccountPostgres_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAccountPostgres(db)
	ctx := context.Background()

	rows := sqlmock.NewRows(accountColumns()).
		AddRow("a1", "user-id", int64(100), time.Now(), time.Now()).
		AddRow("a2", "user-id", int64(200), time.Now(), time.Now())

	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE user_id = ?").
		WithArgs("user-id").
		WillReturnRows(rows)

	items, err := repo.ListByUser(ctx, "user-id")

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "a1", items[0].ID)
}

func TestAccountPostgres_ApplyDelta(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAccountPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		rows := sqlmock.NewRows(accountColumns()).
			AddRow("acct-id", "user-id", int64(150), time.Now(), time.Now())

		mock.ExpectQuery("UPDATE accounts").
			WithArgs("acct-id", int64(50), sqlmock.AnyArg()).
			WillReturnRows(rows)

		a, err := repo.ApplyDelta(ctx, "acct-id", 50)

		assert.NoError(t, err)
		assert.Equal(t, int64(150), a.Balance)
	})

	t.Run("overdraft maps to ErrInsufficientBalance", func(t *testing.T) {
		// The conditional UPDATE matches no row when the balance would go negative
		mock.ExpectQuery("UPDATE accounts").
			WithArgs("acct-id", int64(-500), sqlmock.AnyArg()).
			WillReturnError(sql.ErrNoRows)

		a, err := repo.ApplyDelta(ctx, "acct-id", -500)

		assert.ErrorIs(t, err, repository.ErrInsufficientBalance)
		assert.Nil(t, a)
	})
}
