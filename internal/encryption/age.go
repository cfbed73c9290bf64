package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"addrbook/internal/config"
)

// AgeEncryptor seals the slot to an X25519 recipient. The private key is
// stored as an age file protected by the passphrase.
type AgeEncryptor struct {
	publicKeyPath  string
	privateKeyPath string
}

var _ Encryptor = (*AgeEncryptor)(nil)

func NewAgeEncryptor(cfg config.EncryptionConfig) *AgeEncryptor {
	return &AgeEncryptor{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
	}
}

// Setup creates the key pair. An existing pair is never replaced: slots
// sealed to it would become unreadable.
func (e *AgeEncryptor) Setup(passphrase string) error {
	if e.IsConfigured() {
		return fmt.Errorf("key pair already exists at %s", e.publicKeyPath)
	}

	id, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}
	lock, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("deriving passphrase key: %w", err)
	}

	var locked bytes.Buffer
	if err := sealTo(&locked, bytes.NewBufferString(id.String()+"\n"), lock); err != nil {
		return fmt.Errorf("locking private key: %w", err)
	}

	if err := writeKeyFile(e.privateKeyPath, locked.Bytes(), 0600); err != nil {
		return err
	}
	return writeKeyFile(e.publicKeyPath, []byte(id.Recipient().String()+"\n"), 0644)
}

func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	data, err := os.ReadFile(e.publicKeyPath)
	if err != nil {
		return fmt.Errorf("reading public key: %w", err)
	}
	recipients, err := age.ParseRecipients(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parsing public key %s: %w", e.publicKeyPath, err)
	}
	return sealTo(w, r, recipients...)
}

// Unlock opens the private key file with passphrase.
func (e *AgeEncryptor) Unlock(passphrase string) (DecryptionContext, error) {
	locked, err := os.ReadFile(e.privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	unlock, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("deriving passphrase key: %w", err)
	}

	var plain bytes.Buffer
	if err := openWith(&plain, bytes.NewReader(locked), unlock); err != nil {
		return nil, fmt.Errorf("unlocking private key: %w", err)
	}
	ids, err := age.ParseIdentities(&plain)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return ageKey{ids: ids}, nil
}

// IsConfigured reports whether both key files exist.
func (e *AgeEncryptor) IsConfigured() bool {
	for _, p := range []string{e.publicKeyPath, e.privateKeyPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// ageKey is an unlocked private key.
type ageKey struct {
	ids []age.Identity
}

func (k ageKey) Decrypt(r io.Reader, w io.Writer) error {
	return openWith(w, r, k.ids...)
}

func sealTo(w io.Writer, r io.Reader, to ...age.Recipient) error {
	if len(to) == 0 {
		return errors.New("no recipient")
	}
	enc, err := age.Encrypt(w, to...)
	if err != nil {
		return err
	}
	if _, err := io.Copy(enc, r); err != nil {
		return err
	}
	return enc.Close()
}

func openWith(w io.Writer, r io.Reader, ids ...age.Identity) error {
	dec, err := age.Decrypt(r, ids...)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, dec)
	return err
}

func writeKeyFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
