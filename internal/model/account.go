package model

import "time"

// Account is a simple ledger account owned by a user.
// Balance is kept in integer cents to avoid floating point drift.
type Account struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
