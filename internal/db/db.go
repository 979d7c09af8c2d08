// Package db persists the site registry and the hypocenter output-tracking
// cache (§4.3, §4.9) to SQLite. It follows the teacher's internal/db/db.go
// shape: an embedded schema.sql for fresh databases, embedded
// migrations/*.sql for everything after, WAL pragmas applied uniformly,
// and an AttachAdminRoutes that mounts tailsql for ad hoc operator queries.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

// DB wraps a *sql.DB with the domain's CRUD methods.
type DB struct {
	*sql.DB
}

//go:embed schema.sql
var schemaSQL string

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DevMode swaps the embedded migrations filesystem for the one on disk,
// for hot-reloading during local development.
var DevMode = false

func getMigrationsFS() (fs.FS, error) {
	if DevMode {
		return os.DirFS("internal/db/migrations"), nil
	}
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("sub-filesystem for embedded migrations: %w", err)
	}
	return sub, nil
}

func applyPragmas(sdb *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := sdb.Exec(p); err != nil {
			return fmt.Errorf("exec %q: %w", p, err)
		}
	}
	return nil
}

// NewDB opens path, creating and baselining a fresh schema if the
// database has no tables yet, and checking for outstanding migrations
// otherwise.
func NewDB(path string) (*DB, error) {
	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	wrapper := &DB{sdb}
	if err := applyPragmas(sdb); err != nil {
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	var migrationsTableExists bool
	err = sdb.QueryRow(`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name='schema_migrations'`).Scan(&migrationsTableExists)
	if err != nil {
		return nil, fmt.Errorf("check schema_migrations: %w", err)
	}

	mfs, err := getMigrationsFS()
	if err != nil {
		return nil, err
	}

	if migrationsTableExists {
		version, dirty, err := wrapper.MigrateVersion(mfs)
		if err != nil {
			return nil, fmt.Errorf("read migration version: %w", err)
		}
		if dirty {
			return nil, fmt.Errorf("database is in a dirty migration state at version %d", version)
		}
		latest, err := GetLatestMigrationVersion(mfs)
		if err != nil {
			return nil, err
		}
		if version < latest {
			log.Printf("database schema version %d is behind latest %d; run MigrateUp", version, latest)
			return nil, fmt.Errorf("schema out of date: at version %d, need %d", version, latest)
		}
		return wrapper, nil
	}

	var tableCount int
	err = sdb.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`).Scan(&tableCount)
	if err != nil {
		return nil, fmt.Errorf("count tables: %w", err)
	}
	if tableCount > 0 {
		return nil, fmt.Errorf("database has tables but no schema_migrations entry; cannot determine schema version")
	}

	if _, err := sdb.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	latest, err := GetLatestMigrationVersion(mfs)
	if err != nil {
		return nil, err
	}
	if err := wrapper.BaselineAtVersion(latest); err != nil {
		return nil, fmt.Errorf("baseline fresh database: %w", err)
	}
	return wrapper, nil
}

// OpenDB opens path without touching schema, for use by migration
// tooling that manages the schema independently.
func OpenDB(path string) (*DB, error) {
	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := applyPragmas(sdb); err != nil {
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	return &DB{sdb}, nil
}

// AttachAdminRoutes mounts a read-only tailsql browser under mux's debug
// handler tree (no separate database statistics endpoint), grounded on the
// teacher's db.go AttachAdminRoutes.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	tsql, err := tailsql.NewServer(tailsql.Options{RoutePrefix: "/debug/tailsql/"})
	if err != nil {
		log.Printf("failed to create tailsql server: %v", err)
		return
	}
	tsql.SetDB("sqlite://glass.db", db.DB, &tailsql.DBOptions{Label: "Nucleation DB"})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())
}
