package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestApply_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := Apply(db); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	for _, table := range []string{"slots", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s was not created: %v", table, err)
		}
	}

	if v, dirty := schemaVersion(t, db); v != 1 || dirty {
		t.Errorf("schema version = %d (dirty %t), want 1", v, dirty)
	}
}

func TestApply_Idempotent(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 2; i++ {
		if err := Apply(db); err != nil {
			t.Fatalf("Apply() run %d error = %v", i+1, err)
		}
	}
	if v, _ := schemaVersion(t, db); v != 1 {
		t.Errorf("schema version = %d, want 1", v)
	}
}

func TestApply_RejectsRecordedState(t *testing.T) {
	tests := []struct {
		name    string
		mutate  string
		wantErr error
	}{
		{"newer schema", "UPDATE schema_migrations SET version = 999", ErrSchemaAhead},
		{"interrupted migration", "UPDATE schema_migrations SET dirty = 1", ErrDirty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			if err := Apply(db); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if _, err := db.Exec(tt.mutate); err != nil {
				t.Fatalf("Exec(%q) error = %v", tt.mutate, err)
			}

			if err := Apply(db); !errors.Is(err, tt.wantErr) {
				t.Errorf("Apply() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLatestVersion(t *testing.T) {
	src, err := iofsSource()
	if err != nil {
		t.Fatalf("reading embedded files: %v", err)
	}
	defer src.Close()

	v, err := latestVersion(src)
	if err != nil {
		t.Fatalf("latestVersion() error = %v", err)
	}
	if v != 1 {
		t.Errorf("latestVersion() = %d, want 1", v)
	}
}

func TestSchema_SlotNameUnique(t *testing.T) {
	db := openTestDB(t)
	if err := Apply(db); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	insert := "INSERT INTO slots (name, value, updated_at) VALUES ('savedAddresses', x'5b5d', datetime('now'))"
	if _, err := db.Exec(insert); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := db.Exec(insert); err == nil {
		t.Error("expected primary key violation for duplicate slot name")
	}
}

func TestSchema_ValueNotNull(t *testing.T) {
	db := openTestDB(t)
	if err := Apply(db); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	_, err := db.Exec("INSERT INTO slots (name, value, updated_at) VALUES ('s', NULL, datetime('now'))")
	if err == nil {
		t.Error("expected NOT NULL violation for value")
	}
}

func schemaVersion(t *testing.T, db *sql.DB) (uint, bool) {
	t.Helper()
	var v uint
	var dirty bool
	if err := db.QueryRow("SELECT version, dirty FROM schema_migrations").Scan(&v, &dirty); err != nil {
		t.Fatalf("reading schema_migrations: %v", err)
	}
	return v, dirty
}

// openTestDB opens an in-memory SQLite database that is closed with the test.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	return db
}
