package mocks

import (
	"context"

	"github.com/phrazzld/tasklist-api/internal/service"
)

// MockAccountService implements service.AccountService for handler tests.
type MockAccountService struct {
	RegisterFn func(ctx context.Context, email, password, confirmPassword string) error
	LoginFn    func(ctx context.Context, email, password string) (*service.LoginResult, error)
}

var _ service.AccountService = (*MockAccountService)(nil)

// Register implements service.AccountService.
func (m *MockAccountService) Register(ctx context.Context, email, password, confirmPassword string) error {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, email, password, confirmPassword)
	}
	return nil
}

// Login implements service.AccountService.
func (m *MockAccountService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, email, password)
	}
	return nil, service.ErrInvalidCredentials
}
