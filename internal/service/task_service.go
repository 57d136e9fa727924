package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/platform/logger"
	"github.com/phrazzld/tasklist-api/internal/store"
)

// TaskService manages the tasks of one authenticated owner at a time.
// Every method takes the caller's ID; a task owned by someone else is
// reported exactly like a task that does not exist.
type TaskService interface {
	// List returns the owner's tasks that match filter, in display order.
	List(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)

	// GetByID returns the task and true, or nil and false when the owner has
	// no task with that ID.
	GetByID(ctx context.Context, id int64, ownerID uuid.UUID) (*domain.Task, bool, error)

	// Create validates and stores a new task for the owner.
	Create(ctx context.Context, ownerID uuid.UUID, in domain.TaskInput) (*domain.Task, error)

	// Update merges patch into the task. It returns false when the owner has
	// no task with that ID.
	Update(ctx context.Context, id int64, ownerID uuid.UUID, patch domain.TaskPatch) (bool, error)

	// Delete removes the task. It returns false when nothing was removed.
	Delete(ctx context.Context, id int64, ownerID uuid.UUID) (bool, error)

	// Categories lists the distinct categories in use by the owner.
	Categories(ctx context.Context, ownerID uuid.UUID) ([]string, error)
}

type taskServiceImpl struct {
	tasks  store.TaskStore
	now    func() time.Time
	logger *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a TaskService backed by the given store.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, NewServiceError("task", "create_service", "task store cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		tasks:  tasks,
		now:    time.Now,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

func requireOwner(ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return domain.NewValidationError("ownerId", "owner is required", domain.ErrEmptyTaskOwnerID)
	}
	return nil
}

// List implements TaskService.
func (s *taskServiceImpl) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.Task, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	all, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("task", "list", "failed to list tasks", err)
	}

	tasks := domain.FilterTasks(all, filter)
	domain.SortTasks(tasks)
	return tasks, nil
}

// GetByID implements TaskService.
func (s *taskServiceImpl) GetByID(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
) (*domain.Task, bool, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, false, err
	}

	task, err := s.tasks.GetByIDForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, false, nil
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return nil, false, NewServiceError("task", "get", "failed to get task", err)
	}
	return task, true, nil
}

// Create implements TaskService.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	in domain.TaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, in)
	if err != nil {
		log.Debug("task rejected", slog.String("error", err.Error()))
		return nil, err
	}
	now := s.now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("task", "create", "failed to create task", err)
	}

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}

// Update implements TaskService.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
	patch domain.TaskPatch,
) (bool, error) {
	if err := patch.Validate(); err != nil {
		return false, err
	}
	task, found, err := s.GetByID(ctx, id, ownerID)
	if err != nil || !found {
		return false, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Apply(patch, s.now().UTC()); err != nil {
		log.Debug("task update rejected",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return false, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			// Deleted between the read and the write.
			return false, nil
		}
		log.Error("failed to update task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return false, NewServiceError("task", "update", "failed to update task", err)
	}

	log.Info("task updated", slog.Int64("task_id", id))
	return true, nil
}

// Delete implements TaskService.
func (s *taskServiceImpl) Delete(ctx context.Context, id int64, ownerID uuid.UUID) (bool, error) {
	if err := requireOwner(ownerID); err != nil {
		return false, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tasks.DeleteForOwner(ctx, id, ownerID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return false, nil
		}
		log.Error("failed to delete task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return false, NewServiceError("task", "delete", "failed to delete task", err)
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return true, nil
}

// Categories implements TaskService.
func (s *taskServiceImpl) Categories(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list categories",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("task", "categories", "failed to list tasks", err)
	}
	return domain.DistinctCategories(tasks), nil
}
