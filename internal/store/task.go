package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
// Every read and write is scoped by owner: a task that exists but belongs to
// someone else behaves exactly like a task that does not exist.
type TaskStore interface {
	// Create inserts the task and sets its store-assigned ID.
	Create(ctx context.Context, task *domain.Task) error

	// GetByIDForOwner retrieves a task by ID for the given owner.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	GetByIDForOwner(ctx context.Context, id int64, ownerID uuid.UUID) (*domain.Task, error)

	// ListByOwner returns every task of the owner, in no particular order.
	// Returns an empty slice when there are none.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)

	// Update persists the mutable fields of a task, matching on both ID and
	// OwnerID. Returns ErrTaskNotFound if no row matched.
	Update(ctx context.Context, task *domain.Task) error

	// DeleteForOwner removes a task matching both ID and owner.
	// Returns ErrTaskNotFound if no row matched.
	DeleteForOwner(ctx context.Context, id int64, ownerID uuid.UUID) error
}
