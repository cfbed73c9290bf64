package slot

import (
	"fmt"

	"addrbook/internal/addrbook"
	"addrbook/internal/encryption"
)

// EncryptedSlot encrypts everything written to an inner slot. Writes need only
// the public key; reads need a DecryptionContext from Encryptor.Unlock.
type EncryptedSlot struct {
	inner addrbook.Slot
	enc   encryption.Encryptor
	dc    encryption.DecryptionContext
}

// NewEncryptedSlot wraps inner. dc may be nil for a write-only slot, in which
// case reading a non-empty slot fails.
func NewEncryptedSlot(inner addrbook.Slot, enc encryption.Encryptor, dc encryption.DecryptionContext) *EncryptedSlot {
	return &EncryptedSlot{inner: inner, enc: enc, dc: dc}
}

func (s *EncryptedSlot) Name() string { return s.inner.Name() }

func (s *EncryptedSlot) Read() ([]byte, error) {
	data, err := s.inner.Read()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	if s.dc == nil {
		return nil, fmt.Errorf("slot %q is encrypted and no key was unlocked", s.inner.Name())
	}
	plain, err := encryption.Open(s.dc, data)
	if err != nil {
		return nil, fmt.Errorf("decrypting slot %q: %w", s.inner.Name(), err)
	}
	return plain, nil
}

func (s *EncryptedSlot) Write(data []byte) error {
	sealed, err := encryption.Seal(s.enc, data)
	if err != nil {
		return fmt.Errorf("encrypting slot %q: %w", s.inner.Name(), err)
	}
	return s.inner.Write(sealed)
}

func (s *EncryptedSlot) Close() error { return s.inner.Close() }

var _ addrbook.Slot = (*EncryptedSlot)(nil)
