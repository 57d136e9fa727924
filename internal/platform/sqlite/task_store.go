package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/platform/logger"
	"github.com/phrazzld/tasklist-api/internal/store"
	"gorm.io/gorm"
)

// TaskStore implements store.TaskStore with gorm.
type TaskStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewTaskStore creates a gorm-backed task store.
func NewTaskStore(db *gorm.DB, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_task_store")),
	}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	rec := toTaskRecord(task)
	rec.ID = 0
	if err := s.db.WithContext(ctx).Omit("Owner").Create(&rec).Error; err != nil {
		if errors.Is(mapError(err), store.ErrInvalidEntity) {
			return fmt.Errorf("%w: user with ID %s not found", store.ErrInvalidEntity, task.OwnerID)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("owner_id", task.OwnerID.String()))
		return store.NewStoreError("task", "create", "insert failed", mapError(err))
	}

	task.ID = rec.ID
	return nil
}

// GetByIDForOwner implements store.TaskStore.GetByIDForOwner
func (s *TaskStore) GetByIDForOwner(ctx context.Context, id int64, ownerID uuid.UUID) (*domain.Task, error) {
	var rec taskRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID.String()).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, store.NewStoreError("task", "get", "query failed", mapError(err))
	}
	return fromTaskRecord(rec)
}

// ListByOwner implements store.TaskStore.ListByOwner
func (s *TaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	var recs []taskRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID.String()).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, store.NewStoreError("task", "list", "query failed", mapError(err))
	}

	tasks := make([]*domain.Task, 0, len(recs))
	for _, rec := range recs {
		task, err := fromTaskRecord(rec)
		if err != nil {
			return nil, store.NewStoreError("task", "list", "scan failed", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result := s.db.WithContext(ctx).Model(&taskRecord{}).
		Where("id = ? AND owner_id = ?", task.ID, task.OwnerID.String()).
		Updates(map[string]any{
			"title":         task.Title,
			"description":   task.Description,
			"is_complete":   task.IsComplete,
			"due_date_time": utcPtr(task.DueDateTime),
			"priority":      task.Priority,
			"category":      task.Category,
			"updated_at":    task.UpdatedAt.UTC(),
		})
	if err := result.Error; err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return store.NewStoreError("task", "update", "update failed", mapError(err))
	}
	if result.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// DeleteForOwner implements store.TaskStore.DeleteForOwner
func (s *TaskStore) DeleteForOwner(ctx context.Context, id int64, ownerID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID.String()).
		Delete(&taskRecord{})
	if err := result.Error; err != nil {
		return store.NewStoreError("task", "delete", "delete failed", mapError(err))
	}
	if result.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

func toTaskRecord(t *domain.Task) taskRecord {
	return taskRecord{
		ID:          t.ID,
		OwnerID:     t.OwnerID.String(),
		Title:       t.Title,
		Description: t.Description,
		IsComplete:  t.IsComplete,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		DueDateTime: utcPtr(t.DueDateTime),
		Priority:    t.Priority,
		Category:    t.Category,
	}
}

func fromTaskRecord(r taskRecord) (*domain.Task, error) {
	ownerID, err := parseUUID(r.OwnerID)
	if err != nil {
		return nil, err
	}
	return &domain.Task{
		ID:          r.ID,
		OwnerID:     ownerID,
		Title:       r.Title,
		Description: r.Description,
		IsComplete:  r.IsComplete,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		DueDateTime: utcPtr(r.DueDateTime),
		Priority:    r.Priority,
		Category:    r.Category,
	}, nil
}
