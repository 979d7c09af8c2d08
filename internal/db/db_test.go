package db

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestNewDBInitializesFreshSchema(t *testing.T) {
	d := openTestDB(t)

	var count int
	if err := d.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='sites'`).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 1 {
		t.Errorf("expected the sites table to exist after a fresh NewDB, got count=%d", count)
	}
}

func TestNewDBBaselinesAtLatestMigration(t *testing.T) {
	d := openTestDB(t)

	mfs, err := getMigrationsFS()
	if err != nil {
		t.Fatalf("getMigrationsFS: %v", err)
	}
	latest, err := GetLatestMigrationVersion(mfs)
	if err != nil {
		t.Fatalf("GetLatestMigrationVersion: %v", err)
	}
	version, dirty, err := d.MigrateVersion(mfs)
	if err != nil {
		t.Fatalf("MigrateVersion: %v", err)
	}
	if dirty {
		t.Error("freshly baselined database reported dirty")
	}
	if version != latest {
		t.Errorf("version = %d, want %d", version, latest)
	}
}

func TestNewDBReopenSucceedsAtLatestVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	d1, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB first open: %v", err)
	}
	d1.Close()

	d2, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB second open: %v", err)
	}
	d2.Close()
}
