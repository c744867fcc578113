package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/coral-mesh/futurescope/internal/duckdb"
)

// NewTestDatabase opens a DuckDB database under the test's temp directory.
// The database is closed when the test completes.
func NewTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.duckdb")
	db, err := duckdb.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	return db
}
