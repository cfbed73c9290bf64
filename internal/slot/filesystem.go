package slot

import (
	"fmt"
	"os"
	"path/filepath"

	"addrbook/internal/addrbook"
)

// FileSystemSlot stores the slot value as a JSON file:
//
//	<dir>/
//	  <name>.json
//
// Writes go to a temp file in the same directory and are renamed into place,
// so a reader never sees a partially written collection.
type FileSystemSlot struct {
	name string
	dir  string
	path string
}

// NewFileSystemSlot creates a slot named name inside dir, creating dir if needed.
func NewFileSystemSlot(name, dir string) (*FileSystemSlot, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create slot directory: %w", err)
	}

	return &FileSystemSlot{
		name: name,
		dir:  dir,
		path: filepath.Join(dir, name+".json"),
	}, nil
}

func (s *FileSystemSlot) Name() string { return s.name }

// Path returns the file backing the slot.
func (s *FileSystemSlot) Path() string { return s.path }

// Read returns the file contents, or nil if the file does not exist yet.
func (s *FileSystemSlot) Read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read slot file: %w", err)
	}
	return data, nil
}

// Write replaces the file contents using an atomic write (temp file + rename).
func (s *FileSystemSlot) Write(data []byte) error {
	tmpFile, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func (s *FileSystemSlot) Close() error { return nil }

// Compile-time check that FileSystemSlot implements addrbook.Slot interface
var _ addrbook.Slot = (*FileSystemSlot)(nil)
