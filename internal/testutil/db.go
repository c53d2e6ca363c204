package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/cmdtree/internal/domain"
	"github.com/footprint-tools/cmdtree/internal/history/migrations"
)

// NewTestDB creates an in-memory SQLite database with migrations applied.
// The database is automatically closed when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err, "failed to open in-memory database")

	// Every pooled connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = db.Close()
	})

	err = migrations.Run(db)
	require.NoError(t, err, "failed to run migrations")

	return db
}

// Inserter is the write side of a history store.
type Inserter interface {
	Insert(rec domain.InvocationRecord) error
}

// SeedInvocations inserts records into store.
func SeedInvocations(t *testing.T, store Inserter, records []domain.InvocationRecord) {
	t.Helper()

	for _, rec := range records {
		err := store.Insert(rec)
		require.NoError(t, err, "failed to seed invocation: %+v", rec)
	}
}
