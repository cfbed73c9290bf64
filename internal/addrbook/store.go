package addrbook

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// AddressStore owns the local collection, which it persists to a Slot, and a
// read-only shared collection fetched from a CatalogSource. No failure in the
// store is fatal: failed reads, writes and fetches leave the affected
// collection as it was, are logged, and are available from LastError.
//
// AddressStore is safe for concurrent use.
type AddressStore struct {
	slot    Slot
	source  CatalogSource
	logger  Logger
	clock   Clock
	idgen   IDGenerator
	metrics Metrics
	country string

	mu      sync.RWMutex
	local   []AddressRecord
	remote  []AddressRecord
	lastErr error
}

// Option configures an AddressStore.
type Option func(*AddressStore)

// WithCountry sets the country suffix used by FullAddressString.
func WithCountry(country string) Option {
	return func(s *AddressStore) { s.country = country }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(s *AddressStore) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewAddressStore creates a store and loads the local collection from slot.
// An empty or unreadable slot yields an empty collection; construction never fails.
// source may be nil, in which case LoadShared always reports failure.
func NewAddressStore(slot Slot, source CatalogSource, logger Logger, clock Clock, idgen IDGenerator, opts ...Option) *AddressStore {
	s := &AddressStore{
		slot:    slot,
		source:  source,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
		metrics: nopMetrics{},
		country: DefaultCountry,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.local = s.load()
	s.remote = []AddressRecord{}
	s.metrics.Records(len(s.local), 0)
	return s
}

// load reads the local collection from the slot.
func (s *AddressStore) load() []AddressRecord {
	data, err := s.slot.Read()
	if err != nil {
		s.readFailed(err)
		return []AddressRecord{}
	}
	if len(data) == 0 {
		s.metrics.SlotRead(true)
		return []AddressRecord{}
	}

	records, err := DecodeCollection(data)
	if err != nil {
		s.readFailed(err)
		return []AddressRecord{}
	}
	s.metrics.SlotRead(true)

	seen := make(map[string]struct{}, len(records))
	local := make([]AddressRecord, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			s.logger.Warn("dropping duplicate stored address", "id", r.ID)
			continue
		}
		seen[r.ID] = struct{}{}
		r.Origin = ""
		local = append(local, r)
	}

	s.logger.Debug("addresses loaded", "slot", s.slot.Name(), "count", len(local))
	return local
}

func (s *AddressStore) readFailed(err error) {
	rerr := &PersistenceReadError{Slot: s.slot.Name(), Err: err}
	s.lastErr = rerr
	s.metrics.SlotRead(false)
	s.logger.Warn("stored addresses unreadable, starting empty", "slot", s.slot.Name(), "error", err)
}

// Save writes the whole local collection to the slot and reports success.
func (s *AddressStore) Save() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *AddressStore) saveLocked() bool {
	data, err := EncodeCollection(s.local)
	if err == nil {
		err = s.slot.Write(data)
	}
	s.metrics.Records(len(s.local), len(s.remote))
	if err != nil {
		s.lastErr = &PersistenceWriteError{Slot: s.slot.Name(), Err: err}
		s.metrics.SlotWrite(false)
		s.logger.Warn("saving addresses failed", "slot", s.slot.Name(), "error", err)
		return false
	}
	s.metrics.SlotWrite(true)
	return true
}

// Add creates a local record from input, appends it and persists the
// collection. The record is kept in memory even if persisting fails.
func (s *AddressStore) Add(input AddressInput) AddressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.idgen.New()
	for s.indexLocked(id) >= 0 {
		id = s.idgen.New()
	}

	r := newRecord(id, s.clock.Now().UTC(), input)
	s.local = append(s.local, r)
	s.saveLocked()

	s.logger.Info("address added", "id", id)
	return r.clone()
}

// Remove deletes the local record with the given id and persists the
// collection. It returns true even when no record matched; the unchanged
// collection is still written in that case.
func (s *AddressStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.local[:0]
	removed := 0
	for _, r := range s.local {
		if r.ID == id {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	clear(s.local[len(kept):])
	s.local = kept
	s.saveLocked()

	if removed > 0 {
		s.logger.Info("address removed", "id", id)
	} else {
		s.logger.Debug("remove matched no address", "id", id)
	}
	return true
}

// Update merges patch over the local record with the given id and persists
// the collection. ID and CreatedAt are never changed. It returns false, and
// writes nothing, when no local record has the id.
func (s *AddressStore) Update(id string, patch AddressPatch) (AddressRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return AddressRecord{}, false
	}

	s.local[i] = patch.apply(s.local[i])
	s.saveLocked()

	s.logger.Info("address updated", "id", id)
	return s.local[i].clone(), true
}

// LoadShared fetches the shared catalog at sourceURL and, if it decodes to an
// array of records, replaces the shared collection with it. On any failure the
// previous shared collection is kept and false is returned.
func (s *AddressStore) LoadShared(ctx context.Context, sourceURL string) bool {
	records, err := s.fetchShared(ctx, sourceURL)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.metrics.SharedFetch(false)
		s.logger.Warn("loading shared addresses failed", "url", sourceURL, "error", err)
		return false
	}

	s.mu.Lock()
	s.remote = records
	s.metrics.Records(len(s.local), len(s.remote))
	s.mu.Unlock()

	s.metrics.SharedFetch(true)
	s.logger.Info("shared addresses loaded", "url", sourceURL, "count", len(records))
	return true
}

func (s *AddressStore) fetchShared(ctx context.Context, sourceURL string) ([]AddressRecord, error) {
	if s.source == nil {
		return nil, &RemoteFetchError{URL: sourceURL, Err: errors.New("no catalog source configured")}
	}

	status, body, err := s.source.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, &RemoteFetchError{URL: sourceURL, Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &RemoteFetchError{URL: sourceURL, Status: status, Err: ErrUnexpectedStatus}
	}

	records, err := DecodeCollection(body)
	if err != nil {
		return nil, &RemoteFetchError{URL: sourceURL, Status: status, Err: err}
	}
	for i := range records {
		records[i].Origin = OriginShared
	}
	return records, nil
}

// GetAll returns the merged view: every shared record, then every local
// record whose id is not used by a shared record. Each id appears once; when
// ids collide the first shared record wins.
func (s *AddressStore) GetAll() []AddressRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.remote)+len(s.local))
	out := make([]AddressRecord, 0, len(s.remote)+len(s.local))
	for _, r := range s.remote {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		c := r.clone()
		c.Origin = OriginShared
		out = append(out, c)
	}
	for _, r := range s.local {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		c := r.clone()
		c.Origin = OriginLocal
		out = append(out, c)
	}
	return out
}

// GetLocal returns a copy of the local collection in insertion order.
func (s *AddressStore) GetLocal() []AddressRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.local)
}

// GetShared returns a copy of the shared collection in received order.
func (s *AddressStore) GetShared() []AddressRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.remote)
}

// Get looks up a local record. Shared records are not searched.
func (s *AddressStore) Get(id string) (AddressRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return AddressRecord{}, false
	}
	return s.local[i].clone(), true
}

// FullAddressString formats r with the store's country suffix.
func (s *AddressStore) FullAddressString(r AddressRecord) string {
	return FullAddress(r, s.country)
}

// DisplayAddressString formats the postal code and city of r.
func (s *AddressStore) DisplayAddressString(r AddressRecord) string {
	return DisplayAddress(r)
}

// ListCategories returns the distinct non-empty categories of the merged view
// in ascending byte order. Comparison is case-sensitive: "Ops" and "ops" are
// different categories, and upper case sorts before lower case.
func (s *AddressStore) ListCategories() []string {
	seen := make(map[string]struct{})
	categories := []string{}
	for _, r := range s.GetAll() {
		c := r.CategoryName()
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// LastError returns the most recent non-fatal failure: a
// *PersistenceReadError, *PersistenceWriteError or *RemoteFetchError.
func (s *AddressStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *AddressStore) indexLocked(id string) int {
	for i := range s.local {
		if s.local[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(records []AddressRecord) []AddressRecord {
	out := make([]AddressRecord, len(records))
	for i, r := range records {
		out[i] = r.clone()
	}
	return out
}
