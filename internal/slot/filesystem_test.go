package slot

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileSystemSlot(t *testing.T) {
	t.Run("creates directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "data")

		s, err := NewFileSystemSlot("savedAddresses", dir)
		if err != nil {
			t.Fatalf("NewFileSystemSlot() error = %v", err)
		}

		if _, err := os.Stat(dir); err != nil {
			t.Errorf("slot directory not created: %v", err)
		}
		if s.name != "savedAddresses" {
			t.Errorf("name = %q, want %q", s.name, "savedAddresses")
		}
		if want := filepath.Join(dir, "savedAddresses.json"); s.Path() != want {
			t.Errorf("Path() = %q, want %q", s.Path(), want)
		}
	})

	t.Run("works with existing directory", func(t *testing.T) {
		if _, err := NewFileSystemSlot("savedAddresses", t.TempDir()); err != nil {
			t.Fatalf("NewFileSystemSlot() error = %v", err)
		}
	})
}

func TestFileSystemSlot_ReadMissing(t *testing.T) {
	s, err := NewFileSystemSlot("savedAddresses", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemSlot() error = %v", err)
	}

	got, err := s.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != nil {
		t.Errorf("Read() = %q, want nil", got)
	}
}

func TestFileSystemSlot_WriteRead(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "collection", data: `[{"id":"1","naam":"Kantoor"}]`},
		{name: "empty collection", data: `[]`},
		{name: "not json", data: `garbage`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewFileSystemSlot("savedAddresses", t.TempDir())
			if err != nil {
				t.Fatalf("NewFileSystemSlot() error = %v", err)
			}

			if err := s.Write([]byte(tt.data)); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			got, err := s.Read()
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if string(got) != tt.data {
				t.Errorf("Read() = %q, want %q", got, tt.data)
			}

			onDisk, err := os.ReadFile(s.Path())
			if err != nil {
				t.Fatalf("reading slot file: %v", err)
			}
			if string(onDisk) != tt.data {
				t.Errorf("file contents = %q, want %q", onDisk, tt.data)
			}
		})
	}
}

func TestFileSystemSlot_OverwriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSystemSlot("savedAddresses", dir)
	if err != nil {
		t.Fatalf("NewFileSystemSlot() error = %v", err)
	}

	for _, data := range []string{`[{"id":"1"}]`, `[]`} {
		if err := s.Write([]byte(data)); err != nil {
			t.Fatalf("Write(%q) error = %v", data, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "savedAddresses.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contains %v, want only savedAddresses.json", names)
	}

	got, _ := s.Read()
	if string(got) != `[]` {
		t.Errorf("Read() = %q, want last write", got)
	}
}

func TestFileSystemSlot_ReadError(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSystemSlot("savedAddresses", dir)
	if err != nil {
		t.Fatalf("NewFileSystemSlot() error = %v", err)
	}

	// A directory where the file should be cannot be read as a slot.
	if err := os.Mkdir(s.Path(), 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	if _, err := s.Read(); err == nil {
		t.Error("Read() expected error when slot path is a directory")
	}
}
