package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"addrbook/internal/addrbook"
	"addrbook/internal/addressparse"
	"addrbook/internal/catalog"
	"addrbook/internal/config"
	"addrbook/internal/encryption"
	"addrbook/internal/metrics"
	"addrbook/internal/slot"
)

// ErrStoreUnreadable is returned by mutating operations when the stored
// addresses could not be read at startup. Writing would replace them.
var ErrStoreUnreadable = errors.New("stored addresses are unreadable; refusing to overwrite them")

// PassphraseFunc supplies the passphrase that unlocks the private key of an
// encrypted slot.
type PassphraseFunc func() (string, error)

// App is the application layer between the CLI and AddressStore.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw CLI values, and flushes metrics and logs on Close.
type App struct {
	cfg     *config.Config
	slot    addrbook.Slot
	store   *addrbook.AddressStore
	metrics *metrics.Recorder
	op      *Operation
	logger  *slog.Logger
	logFile *os.File
	loadErr error
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Add", "List").
// passphrase is only called when the slot is encrypted.
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string, passphrase PassphraseFunc) (*App, error) {
	op := NewOperation(operation, time.Now())

	logger, logFile, err := newLogger(cfg.LogDir, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	s, err := slot.NewSlotFromConfig(ctx, cfg.Slot)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating slot: %w", err)
	}

	if cfg.Encryption.Enabled {
		s, err = wrapEncrypted(s, cfg.Encryption, passphrase)
		if err != nil {
			logFile.Close()
			return nil, err
		}
	}

	rec := metrics.NewRecorder()
	src := catalog.NewHTTPSource(time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second, cfg.Catalog.UserAgent)

	country := cfg.Country
	if country == "" {
		country = addrbook.DefaultCountry
	}

	store := addrbook.NewAddressStore(s, src, &slogAdapter{l: logger}, addrbook.RealClock{}, addrbook.UUIDGenerator{},
		addrbook.WithCountry(country),
		addrbook.WithMetrics(rec),
	)

	return &App{
		cfg:     cfg,
		slot:    s,
		store:   store,
		metrics: rec,
		op:      op,
		logger:  logger,
		logFile: logFile,
		loadErr: store.LastError(),
	}, nil
}

// wrapEncrypted unlocks the configured key pair and wraps s.
func wrapEncrypted(s addrbook.Slot, cfg config.EncryptionConfig, passphrase PassphraseFunc) (addrbook.Slot, error) {
	enc, err := encryption.NewEncryptorFromConfig(cfg)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if !enc.IsConfigured() {
		s.Close()
		return nil, fmt.Errorf("encryption enabled but no key pair found; run `addrbook config init --encrypt`")
	}

	var pass string
	if passphrase != nil {
		if pass, err = passphrase(); err != nil {
			s.Close()
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}
	}
	dc, err := enc.Unlock(pass)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("unlocking key: %w", err)
	}
	return slot.NewEncryptedSlot(s, enc, dc), nil
}

// Store returns the underlying store.
func (a *App) Store() *addrbook.AddressStore { return a.store }

// Country returns the suffix used for full address strings.
func (a *App) Country() string {
	if a.cfg.Country == "" {
		return addrbook.DefaultCountry
	}
	return a.cfg.Country
}

// writable fails when the slot could not be read at startup.
func (a *App) writable() error {
	var rerr *addrbook.PersistenceReadError
	if errors.As(a.loadErr, &rerr) {
		a.op.Fail()
		return fmt.Errorf("%w: %v", ErrStoreUnreadable, rerr)
	}
	return nil
}

// writeErr returns the persistence failure recorded since before, if any.
func (a *App) writeErr(before error) error {
	after := a.store.LastError()
	if after == before {
		return nil
	}
	var werr *addrbook.PersistenceWriteError
	if errors.As(after, &werr) {
		a.op.Fail()
		return werr
	}
	return nil
}

// Add creates a local address. When fullAddress is set, its parsed parts
// fill the fields left empty in in; all other fields are stored as given.
// The record is returned even when
// persisting it failed; the error then reports the failure.
func (a *App) Add(in addrbook.AddressInput, fullAddress string) (addrbook.AddressRecord, error) {
	if err := a.writable(); err != nil {
		return addrbook.AddressRecord{}, err
	}
	if fullAddress != "" {
		p := addressparse.ParseAddress(fullAddress)
		fillEmpty(&in.Street, p.Street)
		fillEmpty(&in.HouseNumber, p.HouseNumber)
		fillEmpty(&in.PostalCode, p.PostalCode)
		fillEmpty(&in.City, p.City)
	}

	a.op.Parameters = in.Name
	before := a.store.LastError()
	r := a.store.Add(in)
	return r, a.writeErr(before)
}

func fillEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// Remove deletes the local address with the given id. Removing an unknown
// id is not an error.
func (a *App) Remove(id string) error {
	if err := a.writable(); err != nil {
		return err
	}
	a.op.Parameters = id
	before := a.store.LastError()
	a.store.Remove(id)
	return a.writeErr(before)
}

// Update applies patch to the local address with the given id.
func (a *App) Update(id string, patch addrbook.AddressPatch) (addrbook.AddressRecord, error) {
	if err := a.writable(); err != nil {
		return addrbook.AddressRecord{}, err
	}
	a.op.Parameters = id
	before := a.store.LastError()
	r, ok := a.store.Update(id, patch)
	if !ok {
		a.op.Fail()
		return addrbook.AddressRecord{}, fmt.Errorf("no local address with id %q", id)
	}
	return r, a.writeErr(before)
}

// Get returns the local address with the given id, falling back to the
// shared collection.
func (a *App) Get(id string) (addrbook.AddressRecord, bool) {
	if r, ok := a.store.Get(id); ok {
		r.Origin = addrbook.OriginLocal
		return r, true
	}
	for _, r := range a.store.GetShared() {
		if r.ID == id {
			return r, true
		}
	}
	return addrbook.AddressRecord{}, false
}

// LoadShared fetches the shared catalog from url, or from the configured
// catalog URL when url is empty. It reports whether a catalog was loaded;
// with no URL at all it does nothing.
func (a *App) LoadShared(ctx context.Context, url string) (bool, error) {
	if url == "" {
		url = a.cfg.Catalog.URL
	}
	if url == "" {
		return false, nil
	}
	if !a.store.LoadShared(ctx, url) {
		return false, a.store.LastError()
	}
	return true, nil
}

// Fail marks the operation as failed, for errors raised outside the App.
func (a *App) Fail() { a.op.Fail() }

// Close logs the operation outcome, writes the metrics textfile if one is
// configured, and releases the slot and log file.
func (a *App) Close() error {
	var firstErr error

	a.logger.Info("operation finished",
		"operation", a.op.Name,
		"parameters", a.op.Parameters,
		"status", a.op.Status,
		"duration", time.Since(a.op.Started).Round(time.Millisecond))

	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			firstErr = err
		}
	}

	if err := a.slot.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing slot: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
