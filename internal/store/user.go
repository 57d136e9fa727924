package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must carry a HashedPassword.
	// Returns ErrEmailExists if the email is already taken (case-insensitive).
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address, case-insensitively.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateLoginState writes the lockout fields of the user if, and only if,
	// the stored LoginStateVersion still equals expectedVersion. On success the
	// user's LoginStateVersion is advanced to the stored value.
	// Returns ErrLoginStateConflict when another writer got there first, and
	// ErrUserNotFound if the user does not exist.
	UpdateLoginState(ctx context.Context, user *domain.User, expectedVersion int64) error
}
