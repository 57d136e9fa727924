package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockTaskService is a testify mock of service.TaskService.
type MockTaskService struct {
	mock.Mock
}

var _ service.TaskService = (*MockTaskService)(nil)

// List implements service.TaskService.
func (m *MockTaskService) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.Task, error) {
	args := m.Called(ctx, ownerID, filter)
	if tasks, ok := args.Get(0).([]*domain.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByID implements service.TaskService.
func (m *MockTaskService) GetByID(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
) (*domain.Task, bool, error) {
	args := m.Called(ctx, id, ownerID)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Bool(1), args.Error(2)
}

// Create implements service.TaskService.
func (m *MockTaskService) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	in domain.TaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, in)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

// Update implements service.TaskService.
func (m *MockTaskService) Update(
	ctx context.Context,
	id int64,
	ownerID uuid.UUID,
	patch domain.TaskPatch,
) (bool, error) {
	args := m.Called(ctx, id, ownerID, patch)
	return args.Bool(0), args.Error(1)
}

// Delete implements service.TaskService.
func (m *MockTaskService) Delete(ctx context.Context, id int64, ownerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Bool(0), args.Error(1)
}

// Categories implements service.TaskService.
func (m *MockTaskService) Categories(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, ownerID)
	if cats, ok := args.Get(0).([]string); ok {
		return cats, args.Error(1)
	}
	return nil, args.Error(1)
}
