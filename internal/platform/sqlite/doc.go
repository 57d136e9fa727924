// Package sqlite implements the store interfaces on an embedded SQLite
// database through gorm. It is meant for single-instance deployments and
// tests; the schema is created with gorm's AutoMigrate instead of the goose
// migrations used by the postgres backend.
package sqlite
