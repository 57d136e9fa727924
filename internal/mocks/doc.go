// Package mocks provides test doubles for the store, auth and service
// interfaces.
//
// Two styles live side by side. In-memory fakes (MockUserStore, MockTaskStore)
// behave like a real backend, including the login-state compare-and-swap, and
// expose function fields to inject failures:
//
//	users := mocks.NewMockUserStore()
//	users.GetByEmailFn = func(ctx context.Context, email string) (*domain.User, error) {
//	    return nil, errors.New("connection reset")
//	}
//
// The Testify* types and MockTaskService are testify mocks for tests that
// assert on exact calls.
package mocks
