package dbopen_test

import (
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domfence/dbopen"
	"github.com/hazyhaar/domfence/dbopen/dbopentest"
)

const testSchema = `CREATE TABLE things (id TEXT PRIMARY KEY, n INTEGER)`

func TestOpenAppliesSchema(t *testing.T) {
	db := dbopentest.OpenMemory(t, dbopen.WithSchema(testSchema))

	if _, err := db.Exec(`INSERT INTO things (id, n) VALUES ('a', 1)`); err != nil {
		t.Fatalf("insert into schema table: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT n FROM things WHERE id = 'a'`).Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	db := dbopentest.OpenMemory(t)

	var fk int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("pragma foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}

	var timeout int
	if err := db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("pragma busy_timeout: %v", err)
	}
	if timeout != 10_000 {
		t.Errorf("busy_timeout = %d, want 10000", timeout)
	}
}

func TestOpenMkdirAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	db, err := dbopen.Open(path, dbopen.WithMkdirAll())
	if err != nil {
		t.Fatalf("open with mkdir: %v", err)
	}
	db.Close()
}

func TestOpenBadSchema(t *testing.T) {
	if _, err := dbopen.Open(":memory:", dbopen.WithSchema("NOT SQL")); err == nil {
		t.Error("expected error for invalid schema")
	}
}
