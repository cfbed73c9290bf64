package testutil

import (
	"errors"
	"sync"

	"addrbook/internal/addrbook"
	"addrbook/internal/slot"
)

// ErrSlotUnavailable is returned by FailingSlot.
var ErrSlotUnavailable = errors.New("slot unavailable")

// NewTestSlot creates a new in-memory slot holding data. Pass nil for an empty slot.
func NewTestSlot(data []byte) *slot.MemorySlot {
	s := slot.NewMemorySlot(addrbook.DefaultSlotName)
	if data != nil {
		s.Write(data)
	}
	return s
}

// FailingSlot wraps a slot and fails reads or writes on demand.
// It counts writes so tests can assert on persistence side effects.
type FailingSlot struct {
	inner addrbook.Slot

	mu        sync.Mutex
	failRead  bool
	failWrite bool
	writes    int
}

func NewFailingSlot(inner addrbook.Slot) *FailingSlot {
	return &FailingSlot{inner: inner}
}

func (f *FailingSlot) FailReads(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRead = fail
}

func (f *FailingSlot) FailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrite = fail
}

// Writes returns the number of Write calls, failed ones included.
func (f *FailingSlot) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FailingSlot) Name() string { return f.inner.Name() }

func (f *FailingSlot) Read() ([]byte, error) {
	f.mu.Lock()
	fail := f.failRead
	f.mu.Unlock()
	if fail {
		return nil, ErrSlotUnavailable
	}
	return f.inner.Read()
}

func (f *FailingSlot) Write(data []byte) error {
	f.mu.Lock()
	f.writes++
	fail := f.failWrite
	f.mu.Unlock()
	if fail {
		return ErrSlotUnavailable
	}
	return f.inner.Write(data)
}

func (f *FailingSlot) Close() error { return f.inner.Close() }

var _ addrbook.Slot = (*FailingSlot)(nil)
