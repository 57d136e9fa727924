// Package service contains the application use cases: account registration and
// login with lockout, and owner-scoped task management. It orchestrates
// domain objects and repositories (defined in internal/store).
//
// Key components:
//
// 1. Service Interfaces:
//   - AccountService: Register and Login
//   - TaskService: List, GetByID, Create, Update, Delete and Categories
//
// 2. Dependency Management:
//   - Services receive dependencies through constructor injection
//   - Core dependencies are store interfaces, the password hasher and the
//     token issuer from service/auth
//
// 3. Error Handling:
//   - Expected refusals are sentinel errors (ErrInvalidCredentials, ErrAccountLocked)
//     or domain validation errors
//   - Unexpected failures are wrapped in *ServiceError
//
// The service layer depends on domain entities and repository interfaces (from store),
// but never on specific infrastructure implementations.
package service
