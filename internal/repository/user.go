package repository

import (
	"context"

	"userapi/internal/model"
)

// UserRepository defines data access for users.
// No business logic here — strictly persistence operations.
type UserRepository interface {
	// Create inserts a new user record.
	// The caller provides ID and timestamps. Returns the stored user.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by its ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by email. The lookup is case-insensitive.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns a paginated list of users and the total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.User], error)

	// Update overwrites name, email, avatar path and updated_at of an
	// existing row and returns the stored user.
	Update(ctx context.Context, u *model.User) (*model.User, error)

	// Delete removes a user by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
