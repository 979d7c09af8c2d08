package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateDownThenUpRestoresSchema(t *testing.T) {
	d := openTestDB(t)
	mfs, err := getMigrationsFS()
	if err != nil {
		t.Fatalf("getMigrationsFS: %v", err)
	}

	if err := d.MigrateDown(mfs); err != nil {
		t.Fatalf("MigrateDown: %v", err)
	}
	var count int
	if err := d.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='depth_observations'`).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 0 {
		t.Error("depth_observations table still present after rolling back the last migration")
	}

	if err := d.MigrateUp(mfs); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	if err := d.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='depth_observations'`).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 1 {
		t.Error("depth_observations table missing after MigrateUp")
	}
}

func TestGetLatestMigrationVersion(t *testing.T) {
	mfs, err := getMigrationsFS()
	if err != nil {
		t.Fatalf("getMigrationsFS: %v", err)
	}
	version, err := GetLatestMigrationVersion(mfs)
	if err != nil {
		t.Fatalf("GetLatestMigrationVersion: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
}

func TestBaselineAtVersionRejectsSecondBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.db")
	d, err := OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer d.Close()

	if err := d.BaselineAtVersion(1); err != nil {
		t.Fatalf("first BaselineAtVersion: %v", err)
	}
	if err := d.BaselineAtVersion(2); err == nil {
		t.Fatal("expected an error re-baselining an already-baselined database")
	}
}
