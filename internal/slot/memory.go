package slot

import (
	"sync"

	"addrbook/internal/addrbook"
)

// MemorySlot is an in-memory implementation of the Slot interface.
// Its contents are lost when the process exits, which makes it useful for
// tests and throwaway sessions. It is safe for concurrent use.
type MemorySlot struct {
	name string
	data []byte
	mu   sync.RWMutex
}

// NewMemorySlot creates an empty in-memory slot with the given name.
func NewMemorySlot(name string) *MemorySlot {
	return &MemorySlot{name: name}
}

func (m *MemorySlot) Name() string { return m.name }

// Read returns a copy of the stored bytes, or nil if nothing was written.
func (m *MemorySlot) Read() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

// Write replaces the stored bytes with a copy of data.
func (m *MemorySlot) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = append(make([]byte, 0, len(data)), data...)
	return nil
}

func (m *MemorySlot) Close() error { return nil }

// Compile-time check that MemorySlot implements addrbook.Slot interface
var _ addrbook.Slot = (*MemorySlot)(nil)
