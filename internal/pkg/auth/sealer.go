package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

var (
	ErrEmptySecret    = errors.New("sealing secret must not be empty")
	ErrInvalidSealing = errors.New("invalid sealed value")
)

const (
	keySize   = 32
	nonceSize = 24
)

// Sealer encrypts values persisted outside the process.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// Options controls key derivation cost.
type Options struct {
	Salt string
	N    int
}

// SecretBox seals values with NaCl secretbox under a key derived from a
// passphrase with scrypt.
type SecretBox struct {
	key    [keySize]byte
	random io.Reader
}

// NewSecretBox derives the sealing key from secret.
func NewSecretBox(secret string, opts Options) (*SecretBox, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if opts.Salt == "" {
		opts.Salt = "eventmart/session-credentials"
	}
	if opts.N <= 1 {
		opts.N = 1 << 15
	}

	derived, err := scrypt.Key([]byte(secret), []byte(opts.Salt), opts.N, 8, 1, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive sealing key: %w", err)
	}

	box := &SecretBox{random: rand.Reader}
	copy(box.key[:], derived)
	return box, nil
}

// Seal encrypts plaintext. Empty input seals to an empty string.
func (s *SecretBox) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(s.random, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func (s *SecretBox) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrInvalidSealing
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrInvalidSealing
	}
	return string(plain), nil
}
