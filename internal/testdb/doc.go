// Package testdb provides helpers for PostgreSQL integration tests.
//
// Tests that need a database call GetTestDBWithT, which skips the test when
// neither DATABASE_URL nor FLASHDECK_TEST_DB_URL is set, applies the embedded
// migrations and registers cleanup. SQLite-backed tests do not need this
// package; they open a file under t.TempDir().
package testdb
