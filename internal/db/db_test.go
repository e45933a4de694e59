package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitCreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	database, err := Init(dir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	if _, err := os.Stat(filepath.Join(dir, "chroni.db")); err != nil {
		t.Fatalf("database file missing: %v", err)
	}

	var journalMode string
	if err := database.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		t.Fatalf("failed to query journal mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want wal", journalMode)
	}

	v, err := GetUserVersion(database)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if v != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", v, CurrentSchemaVersion)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	database, err := Init(dir)
	if err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	if _, err := database.Exec(`INSERT INTO tracked_items (path, active) VALUES ('/a', 1)`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	database.Close()

	// Reopening an existing database must not re-run migrations or lose data.
	database, err = Init(dir)
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	defer database.Close()

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM tracked_items`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("tracked_items count = %d after reopen, want 1", count)
	}
}

func TestSchemaHasExpectedTables(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	for _, table := range []string{"tracked_items", "file_versions", "snapshots", "snapshot_files"} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}
