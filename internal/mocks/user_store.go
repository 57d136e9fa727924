package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/store"
)

// MockUserStore implements store.UserStore in memory. It honours the same
// contracts as the SQL stores: emails are unique case-insensitively and
// UpdateLoginState is a compare-and-swap on LoginStateVersion.
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn           func(ctx context.Context, user *domain.User) error
	GetByEmailFn       func(ctx context.Context, email string) (*domain.User, error)
	GetByIDFn          func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateLoginStateFn func(ctx context.Context, user *domain.User, expectedVersion int64) error

	// CreateError and GetByEmailError short-circuit the default implementation.
	CreateError     error
	GetByEmailError error

	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[uuid.UUID]*domain.User)}
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	for _, existing := range m.users {
		if existing.Email == email {
			return store.ErrEmailExists
		}
	}
	user.Email = email
	user.Password = ""
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	if m.GetByEmailError != nil {
		return nil, m.GetByEmailError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

// UpdateLoginState implements the UserStore interface
func (m *MockUserStore) UpdateLoginState(
	ctx context.Context,
	user *domain.User,
	expectedVersion int64,
) error {
	if m.UpdateLoginStateFn != nil {
		return m.UpdateLoginStateFn(ctx, user, expectedVersion)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if stored.LoginStateVersion != expectedVersion {
		return store.ErrLoginStateConflict
	}

	stored.FailedLoginCount = user.FailedLoginCount
	stored.LastFailedLoginAt = copyTime(user.LastFailedLoginAt)
	stored.LockoutUntil = copyTime(user.LockoutUntil)
	stored.LoginStateVersion++
	stored.UpdatedAt = time.Now().UTC()
	user.LoginStateVersion = stored.LoginStateVersion
	return nil
}

// Count returns the number of stored users.
func (m *MockUserStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
