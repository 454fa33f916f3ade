// Package sealer encrypts file contents at rest with XChaCha20-Poly1305.
//
// A Sealer holds one symmetric key for its whole lifetime. The key is never
// written anywhere, so ciphertext produced before a restart cannot be opened
// afterwards.
//
// Sealed layout: nonce (24 bytes) | ciphertext | tag (16 bytes).
package sealer

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the size of the symmetric key in bytes.
const KeySize = chacha20poly1305.KeySize

// ErrCiphertextTooShort is returned when the input cannot hold a nonce and tag.
var ErrCiphertextTooShort = errors.New("sealer: ciphertext too short")

// Sealer encrypts and decrypts byte slices with a single key.
type Sealer struct {
	aead cipher.AEAD
}

// New generates a fresh random key and returns a Sealer bound to it.
func New() (*Sealer, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("sealer: generate key: %w", err)
	}
	return NewWithKey(key)
}

// NewWithKey returns a Sealer using the given 32-byte key.
func NewWithKey(key []byte) (*Sealer, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("sealer: init cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext under a random nonce and prepends the nonce.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("sealer: generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts data produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < ns+s.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := s.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("sealer: open: %w", err)
	}
	return plaintext, nil
}
