package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"userapi/internal/model"
	"userapi/internal/repository"
	repoMocks "userapi/internal/repository/mocks"
)

func TestAccountService_Open(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		userID     string
		setupMocks func(mAcct *repoMocks.MockAccountRepository, mUser *repoMocks.MockUserRepository)
		wantErr    error
	}{
		{
			name:   "happy path",
			userID: "user-id",
			setupMocks: func(mAcct *repoMocks.MockAccountRepository, mUser *repoMocks.MockUserRepository) {
				mUser.On("FindByID", ctx, "user-id").Return(&model.User{ID: "user-id"}, nil)
				mAcct.On("Create", ctx, mock.MatchedBy(func(a *model.Account) bool {
					return a.ID != "" && a.UserID == "user-id" && a.Balance == 0
				})).Return(&model.Account{ID: "acct-id", UserID: "user-id"}, nil)
			},
		},
		{
			name:       "validation - empty user id",
			userID:     "",
			setupMocks: func(mAcct *repoMocks.MockAccountRepository, mUser *repoMocks.MockUserRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name:   "owner not found",
			userID: "missing-id",
			setupMocks: func(mAcct *repoMocks.MockAccountRepository, mUser *repoMocks.MockUserRepository) {
				mUser.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mAcct := new(repoMocks.MockAccountRepository)
			mUser := new(repoMocks.MockUserRepository)
			svc := NewAccountService(mAcct, mUser)

			tt.setupMocks(mAcct, mUser)

			a, err := svc.Open(ctx, tt.userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, a)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, a)
			}
			mAcct.AssertExpectations(t)
			mUser.AssertExpectations(t)
		})
	}
}

func TestAccountService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mAcct := new(repoMocks.MockAccountRepository)
		svc := NewAccountService(mAcct, nil)

		mAcct.On("FindByID", ctx, "acct-id").Return(&model.Account{ID: "acct-id", Balance: 500}, nil)

		a, err := svc.Get(ctx, "acct-id")
		assert.NoError(t, err)
		assert.Equal(t, int64(500), a.Balance)
		mAcct.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mAcct := new(repoMocks.MockAccountRepository)
		svc := NewAccountService(mAcct, nil)

		mAcct.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)

		_, err := svc.Get(ctx, "missing-id")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("validation - empty id", func(t *testing.T) {
		svc := NewAccountService(nil, nil)
		_, err := svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestAccountService_ListByUser(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mAcct := new(repoMocks.MockAccountRepository)
		mUser := new(repoMocks.MockUserRepository)
		svc := NewAccountService(mAcct, mUser)

		mUser.On("FindByID", ctx, "user-id").Return(&model.User{ID: "user-id"}, nil)
		mAcct.On("ListByUser", ctx, "user-id").
			Return([]model.Account{{ID: "a1"}, {ID: "a2"}}, nil)

		items, err := svc.ListByUser(ctx, "user-id")
		assert.NoError(t, err)
		assert.Len(t, items, 2)
		mAcct.AssertExpectations(t)
		mUser.AssertExpectations(t)
	})

	t.Run("owner not found", func(t *testing.T) {
		mAcct := new(repoMocks.MockAccountRepository)
		mUser := new(repoMocks.MockUserRepository)
		svc := NewAccountService(mAcct, mUser)

		mUser.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)

		_, err := svc.ListByUser(ctx, "missing-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAccountService_Deposit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		amount     int64
		setupMocks func(mAcct *repoMocks.MockAccountRepository)
		wantErr    error
	}{
		{
			name:   "happy path",
			id:     "acct-id",
			amount: 250,
			setupMocks: func(mAcct *repoMocks.MockAccountRepository) {
				mAcct.On("FindByID", ctx, "acct-id").Return(&model.Account{ID: "acct-id"}, nil)
				mAcct.On("ApplyDelta", ctx, "acct-id", int64(250)).
					Return(&model.Account{ID: "acct-id", Balance: 250}, nil)
			},
		},
		{
			name:       "validation - zero amount",
			id:         "acct-id",
			amount:     0,
			setupMocks: func(mAcct *repoMocks.MockAccountRepository) {},
			wantErr:    ErrAmountInvalid,
		},
		{
			name:       "validation - negative amount",
			id:         "acct-id",
			amount:     -5,
			setupMocks: func(mAcct *repoMocks.MockAccountRepository) {},
			wantErr:    ErrAmountInvalid,
		},
		{
			name:   "account not found",
			id:     "missing-id",
			amount: 100,
			setupMocks: func(mAcct *repoMocks.MockAccountRepository) {
				mAcct.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrAccountNotFound,
		},
		{
			name:   "generic repository error",
			id:     "acct-id",
			amount: 100,
			setupMocks: func(mAcct *repoMocks.MockAccountRepository) {
				mAcct.On("FindByID", ctx, "acct-id").Return(&model.Account{ID: "acct-id"}, nil)
				mAcct.On("ApplyDelta", ctx, "acct-id", int64(100)).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mAcct := new(repoMocks.MockAccountRepository)
			svc := NewAccountService(mAcct, nil)

			tt.setupMocks(mAcct)

			a, err := svc.Deposit(ctx, tt.id, tt.amount)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrAmountInvalid) || errors.Is(tt.wantErr, ErrAccountNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
				}
				assert.Nil(t, a)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, a)
			}
			mAcct.AssertExpectations(t)
		})
	}
}

func TestAccountService_Withdraw(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		amount     int64
		setupMocks func(mAcct *repoMocks.MockAccountRepository)
		wantErr    error
	}{
		{
			name:   "happy path",
			id:     "acct-id",
			amount: 100,
			setupMocks: func(mAcct *repoMocks.MockAccountRepository) {
				mAcct.On("FindByID", ctx, "acct-id").Return(&model.Account{ID: "acct-id", Balance: 250}, nil)
				mAcct.On("ApplyDelta", ctx, "acct-id", int64(-100)).
					Return(&model.Account{ID: "acct-id", Balance: 150}, nil)
			},
		},
		{
			name:   "withdrawing more than the balance",
			id:     "acct-id",
			amount: 500,
			setupMocks: func(mAcct *repoMocks.MockAccountRepository) {
				mAcct.On("FindByID", ctx, "acct-id").Return(&model.Account{ID: "acct-id", Balance: 250}, nil)
				mAcct.On("ApplyDelta", ctx, "acct-id", int64(-500)).
					Return(nil, repository.ErrInsufficientBalance)
			},
			wantErr: ErrInsufficientBalance,
		},
		{
			name:       "validation - negative amount",
			id:         "acct-id",
			amount:     -5,
			setupMocks: func(mAcct *repoMocks.MockAccountRepository) {},
			wantErr:    ErrAmountInvalid,
		},
		{
			name:   "account not found",
			id:     "missing-id",
			amount: 100,
			setupMocks: func(mAcct *repoMocks.MockAccountRepository) {
				mAcct.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mAcct := new(repoMocks.MockAccountRepository)
			svc := NewAccountService(mAcct, nil)

			tt.setupMocks(mAcct)

			a, err := svc.Withdraw(ctx, tt.id, tt.amount)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, a)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, int64(150), a.Balance)
			}
			mAcct.AssertExpectations(t)
		})
	}
}
