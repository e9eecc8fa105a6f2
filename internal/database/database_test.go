package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"kv", "backups"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %q missing: %v", table, err)
		}
	}

	v, err := SchemaVersion(context.Background(), db)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if v != 2 {
		t.Errorf("schema version = %d, want 2", v)
	}
}

func TestOpenFileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compras.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO kv (key, value) VALUES ('k', 'v')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer db.Close()

	var value string
	if err := db.QueryRow(`SELECT value FROM kv WHERE key = 'k'`).Scan(&value); err != nil {
		t.Fatalf("select: %v", err)
	}
	if value != "v" {
		t.Errorf("value = %q, want v", value)
	}
}

func TestDSN(t *testing.T) {
	if got := dsn("compras.db"); got != "compras.db?"+pragmas {
		t.Errorf("dsn = %q", got)
	}
	if got := dsn("file:x.db?mode=rwc"); got != "file:x.db?mode=rwc&"+pragmas {
		t.Errorf("dsn = %q", got)
	}
}
