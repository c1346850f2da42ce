//go:build integration

// Package testdb provides utilities specifically for database testing.
// Tests using it are skipped unless a database URL is configured.
package testdb

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/taskmaster/internal/platform/postgres"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// URL environment variables, in order of preference.
const (
	EnvTestDatabaseURL = "TASKMASTER_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// URL returns the database URL for integration tests, skipping t when none
// is set.
func URL(t testing.TB) string {
	t.Helper()
	for _, name := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if url := os.Getenv(name); url != "" {
			return url
		}
	}
	t.Skipf("%s or %s not set", EnvTestDatabaseURL, EnvDatabaseURL)
	return ""
}

// Open connects to the test database and brings the schema up to date.
// The connection is closed on cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", URL(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Ping(), "test database unreachable")

	goose.SetBaseFS(postgres.Migrations)
	goose.SetTableName(postgres.MigrationsTable)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db, postgres.MigrationsDir))
	return db
}

// Tx opens the test database and returns a transaction that is rolled back
// on cleanup, so tests leave no rows behind.
func Tx(t testing.TB) *sql.Tx {
	t.Helper()

	tx, err := Open(t).Begin()
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback() })
	return tx
}
