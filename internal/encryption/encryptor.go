package encryption

import (
	"bytes"
	"fmt"
	"io"
)

// Encryptor encrypts slot contents at rest. Encryption needs only the public
// key; reading the slot back needs a DecryptionContext obtained with the
// passphrase that protects the private key.
type Encryptor interface {
	// Setup generates a key pair once, during `addrbook config init --encrypt`.
	// The private key is stored encrypted with passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key and returns a DecryptionContext for the
	// rest of the process. It fails on a wrong passphrase.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether both key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory only.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}

// Seal encrypts a whole byte slice.
func Seal(e Encryptor, plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Encrypt(bytes.NewReader(plaintext), &buf); err != nil {
		return nil, fmt.Errorf("sealing: %w", err)
	}
	return buf.Bytes(), nil
}

// Open decrypts a whole byte slice.
func Open(dc DecryptionContext, ciphertext []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.Decrypt(bytes.NewReader(ciphertext), &buf); err != nil {
		return nil, fmt.Errorf("opening: %w", err)
	}
	return buf.Bytes(), nil
}
