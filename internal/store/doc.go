// Package store defines interfaces for deck and review history persistence.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic; the SQLite and PostgreSQL implementations
// live under internal/platform.
//
// The package also holds the pieces every implementation shares: the error
// taxonomy, the DBTX abstraction, RunInTransaction and SubjectLocker.
package store
