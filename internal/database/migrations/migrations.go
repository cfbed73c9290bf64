// Package migrations holds the embedded schema of the sqlite slot store.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

var (
	// ErrDirty is returned when an earlier migration of the slots schema was interrupted.
	ErrDirty = errors.New("slots schema is dirty")

	// ErrSchemaAhead is returned when the database was migrated by a newer addrbook.
	ErrSchemaAhead = errors.New("slots schema is newer than this binary")
)

// Apply migrates the slots schema in db to the newest embedded version and
// confirms the result. db stays open; migrate is never closed because that
// would close db.
func Apply(db *sql.DB) error {
	src, err := iofsSource()
	if err != nil {
		return fmt.Errorf("reading slots schema: %w", err)
	}
	latest, err := latestVersion(src)
	if err != nil {
		src.Close()
		return fmt.Errorf("reading slots schema: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return fmt.Errorf("opening slots schema: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return fmt.Errorf("opening slots schema: %w", err)
	}

	// A newer schema has no embedded migration to step from, so check first.
	if err := checkVersion(m, latest, true); err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating slots schema to version %d: %w", latest, err)
	}
	return checkVersion(m, latest, false)
}

// checkVersion compares the recorded version with latest. A database with
// no version yet passes only when allowEmpty is set.
func checkVersion(m *migrate.Migrate, latest uint, allowEmpty bool) error {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion) && allowEmpty:
		return nil
	case err != nil:
		return fmt.Errorf("reading slots schema version: %w", err)
	case dirty:
		return fmt.Errorf("%w at version %d", ErrDirty, version)
	case version > latest:
		return fmt.Errorf("%w: database at %d, binary at %d", ErrSchemaAhead, version, latest)
	case version < latest && !allowEmpty:
		return fmt.Errorf("slots schema at version %d after migrating, want %d", version, latest)
	}
	return nil
}

func iofsSource() (source.Driver, error) {
	return iofs.New(migrationFiles, "files")
}

func latestVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			// end of the embedded migrations
			return v, nil
		}
		v = next
	}
}
