package mocks

import (
	"strings"
	"sync"

	"github.com/phrazzld/tasklist-api/internal/service/auth"
)

// MockPasswordHasher implements auth.PasswordHasher without bcrypt's cost.
// Hash prefixes the password with "hashed:"; Compare checks that prefix.
type MockPasswordHasher struct {
	// HashErr is returned by Hash when set.
	HashErr error
	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hashedPassword, password string) error

	mu                sync.Mutex
	compareCallCount  int
	dummyCompareCount int
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

const mockHashPrefix = "hashed:"

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return mockHashPrefix + password, nil
}

// Compare implements auth.PasswordVerifier.
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	m.mu.Lock()
	m.compareCallCount++
	m.mu.Unlock()

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if !strings.HasPrefix(hashedPassword, mockHashPrefix) {
		return auth.ErrWrongPassword
	}
	if strings.TrimPrefix(hashedPassword, mockHashPrefix) != password {
		return auth.ErrWrongPassword
	}
	return nil
}

// CompareDummy implements auth.PasswordHasher.
func (m *MockPasswordHasher) CompareDummy(string) {
	m.mu.Lock()
	m.dummyCompareCount++
	m.mu.Unlock()
}

// CompareCalls returns how many times Compare ran.
func (m *MockPasswordHasher) CompareCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compareCallCount
}

// DummyCompareCalls returns how many times CompareDummy ran.
func (m *MockPasswordHasher) DummyCompareCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dummyCompareCount
}
