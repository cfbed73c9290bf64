package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"addrbook/internal/addrbook"
	"addrbook/internal/database/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteSlot stores slot values as rows of the slots table. Several slots may
// share one database file; each is keyed by its name.
type SQLiteSlot struct {
	db   *sql.DB
	name string
	path string
	now  func() time.Time
}

// NewSQLiteSlot opens the database at path, applies pending migrations and
// returns the slot called name. path can be ":memory:" for tests.
func NewSQLiteSlot(path, name string) (*SQLiteSlot, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Apply(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing %s: %w", path, err)
	}

	return &SQLiteSlot{
		db:   db,
		name: name,
		path: path,
		now:  time.Now,
	}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" opens a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

func (s *SQLiteSlot) Name() string { return s.name }

// Read returns the stored value, or nil if the slot has no row yet.
func (s *SQLiteSlot) Read() ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM slots WHERE name = ?", s.name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading slot %q: %w", s.name, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Write upserts the slot row.
func (s *SQLiteSlot) Write(data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.Exec(`
		INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.name, data, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing slot %q: %w", s.name, err)
	}
	return nil
}

// UpdatedAt returns when the slot was last written, or the zero time if never.
func (s *SQLiteSlot) UpdatedAt() (time.Time, error) {
	var raw string
	err := s.db.QueryRow("SELECT updated_at FROM slots WHERE name = ?", s.name).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("reading slot %q: %w", s.name, err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return t, nil
}

func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}

// Compile-time check that SQLiteSlot implements addrbook.Slot interface
var _ addrbook.Slot = (*SQLiteSlot)(nil)
