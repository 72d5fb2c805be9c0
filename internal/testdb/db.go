package testdb

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/flashdeck/internal/platform/migrate"
	"github.com/phrazzld/flashdeck/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// Environment variables consulted for the test database URL, in order.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvTestDBURL   = "FLASHDECK_TEST_DB_URL"
)

// GetTestDatabaseURL returns the first non-empty of DATABASE_URL and
// FLASHDECK_TEST_DB_URL.
func GetTestDatabaseURL() string {
	if u := os.Getenv(EnvDatabaseURL); u != "" {
		return u
	}
	return os.Getenv(EnvTestDBURL)
}

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// GetTestDBWithT returns a migrated database with empty tables, or skips
// the test when no database is configured. The connection is closed when
// the test finishes.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("DATABASE_URL or FLASHDECK_TEST_DB_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, dbURL)
	require.NoError(t, err, "failed to connect to %s", MaskDatabaseURL(dbURL))
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database connection: %v", err)
		}
	})

	require.NoError(t, migrate.Up(ctx, db, postgres.Migrations, nil), "failed to run migrations")
	ResetTables(t, db)
	return db
}

// ResetTables removes every row written by the stores.
func ResetTables(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	_, err := db.ExecContext(ctx, `TRUNCATE review_mistakes, review_attempts, cards, decks`)
	require.NoError(t, err, "failed to truncate tables")
}

// MaskDatabaseURL hides the password of a connection URL for logging.
func MaskDatabaseURL(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil || u.User == nil {
		return dbURL
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
