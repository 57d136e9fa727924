// Package domain contains the core business entities of the task list:
// users with their login-lockout state, and tasks with their validation,
// partial-update merge, filtering and ordering rules. It is independent of
// any storage or delivery mechanism.
package domain
