package addrbook

import (
	"errors"
	"fmt"
)

var (
	// ErrNotArray is returned when a collection payload is not a JSON array.
	ErrNotArray = errors.New("payload is not an array")

	// ErrNotObject is returned when an element that should be a record is not a JSON object.
	ErrNotObject = errors.New("element is not an object")

	// ErrUnexpectedStatus is returned when the catalog source answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// PersistenceReadError reports a slot that could not be read or decoded.
// The store treats it as an empty collection.
type PersistenceReadError struct {
	Slot string
	Err  error
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("reading slot %q: %v", e.Slot, e.Err)
}

func (e *PersistenceReadError) Unwrap() error { return e.Err }

// PersistenceWriteError reports a failed slot write. The in-memory change that
// triggered the write has already been applied.
type PersistenceWriteError struct {
	Slot string
	Err  error
}

func (e *PersistenceWriteError) Error() string {
	return fmt.Sprintf("writing slot %q: %v", e.Slot, e.Err)
}

func (e *PersistenceWriteError) Unwrap() error { return e.Err }

// RemoteFetchError reports a shared catalog that could not be fetched or did
// not have the expected shape. The previous shared collection is kept.
type RemoteFetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *RemoteFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetching %s (status %d): %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }
