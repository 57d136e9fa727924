// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Two implementations exist: platform/postgres (database/sql over pgx) and
// platform/sqlite (gorm). Both honour the same error contract defined here.
package store
