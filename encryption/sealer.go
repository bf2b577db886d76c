package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Sealer encrypts short text values with authenticated associated data.
// The binding string ties a ciphertext to its owner, so a value sealed
// for one session cannot be opened under another.
type Sealer interface {
	Seal(plaintext, binding string) (string, error)
	Open(sealed, binding string) (string, error)
}

// Algorithm names a supported AEAD.
type Algorithm string

const (
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
	AlgorithmAESGCM   Algorithm = "aes-256-gcm"
)

// ErrTooShort is returned when a sealed value is shorter than a nonce.
var ErrTooShort = errors.New("encryption: sealed value too short")

// Option configures New.
type Option func(*options)

type options struct {
	algorithm Algorithm
}

// WithAlgorithm selects the AEAD. ChaCha20-Poly1305 is the default.
func WithAlgorithm(alg Algorithm) Option {
	return func(o *options) { o.algorithm = alg }
}

// New derives a 32-byte key from passphrase with SHA-256.
func New(passphrase string, opts ...Option) (Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("encryption: passphrase is required")
	}
	o := &options{algorithm: AlgorithmChaCha20}
	for _, opt := range opts {
		opt(o)
	}

	key := sha256.Sum256([]byte(passphrase))

	var aead cipher.AEAD
	var err error
	switch o.algorithm {
	case AlgorithmChaCha20:
		aead, err = chacha20poly1305.New(key[:])
	case AlgorithmAESGCM:
		var block cipher.Block
		if block, err = aes.NewCipher(key[:]); err == nil {
			aead, err = cipher.NewGCM(block)
		}
	default:
		return nil, fmt.Errorf("encryption: unsupported algorithm %q", o.algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("encryption: init %s: %w", o.algorithm, err)
	}
	return &aeadSealer{aead: aead}, nil
}

type aeadSealer struct {
	aead cipher.AEAD
}

// Seal returns base64(nonce || ciphertext).
func (s *aeadSealer) Seal(plaintext, binding string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), []byte(binding))
	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *aeadSealer) Open(sealed, binding string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return "", ErrTooShort
	}
	plaintext, err := s.aead.Open(nil, data[:n], data[n:], []byte(binding))
	if err != nil {
		return "", fmt.Errorf("open sealed value: %w", err)
	}
	return string(plaintext), nil
}
