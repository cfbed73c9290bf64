package addrbook

import "context"

// DefaultSlotName is the name of the slot holding the local collection.
const DefaultSlotName = "savedAddresses"

// Slot is a single named key-value storage location holding the serialized
// local collection. Writes always replace the whole value.
type Slot interface {
	// Name identifies the slot in diagnostics.
	Name() string

	// Read returns the stored bytes. It returns nil, nil when the slot is empty.
	Read() ([]byte, error)

	// Write replaces the stored bytes.
	Write(data []byte) error

	// Close releases any resources held by the slot.
	Close() error
}

// CatalogSource retrieves a shared catalog. Implementations must not serve
// cached responses: every call asks the origin for fresh data.
type CatalogSource interface {
	// Fetch requests url and returns the response status and body.
	// A non-nil error means no response was obtained.
	Fetch(ctx context.Context, url string) (status int, body []byte, err error)
}

// Metrics receives counters from the store. All methods must be cheap and
// safe for concurrent use.
type Metrics interface {
	SlotRead(ok bool)
	SlotWrite(ok bool)
	SharedFetch(ok bool)
	Records(local, shared int)
}

type nopMetrics struct{}

func (nopMetrics) SlotRead(bool)    {}
func (nopMetrics) SlotWrite(bool)   {}
func (nopMetrics) SharedFetch(bool) {}
func (nopMetrics) Records(int, int) {}
