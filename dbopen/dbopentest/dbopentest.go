// Package dbopentest provides test helpers for packages that need an opened
// SQLite database. It lives apart from dbopen so production binaries never
// link the testing package.
package dbopentest

import (
	"database/sql"
	"testing"

	"github.com/hazyhaar/domfence/dbopen"
)

// OpenMemory opens an in-memory database for tests and closes it on cleanup.
func OpenMemory(t *testing.T, opts ...dbopen.Option) *sql.DB {
	t.Helper()
	db, err := dbopen.Open(":memory:", opts...)
	if err != nil {
		t.Fatalf("dbopen: open memory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
