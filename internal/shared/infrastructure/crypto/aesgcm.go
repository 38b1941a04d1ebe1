package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

var (
	ErrEmptyKey        = errors.New("encryption key is empty")
	ErrKeyLength       = fmt.Errorf("encryption key must be %d bytes", KeySize)
	ErrCiphertextShort = errors.New("ciphertext too short")
)

// Sealer seals and opens small secrets, such as the session token.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// AESGCM seals with AES-256-GCM. Output is nonce || ciphertext.
type AESGCM struct {
	aead cipher.AEAD
}

var _ Sealer = (*AESGCM)(nil)

// NewAESGCM creates a sealer from a raw 32-byte key.
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	if len(key) != KeySize {
		return nil, ErrKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCM{aead: aead}, nil
}

// NewAESGCMFromBase64Key creates a sealer from a base64-encoded 32-byte key,
// the form CALSYNC_ENCRYPTION_KEY takes.
func NewAESGCMFromBase64Key(encodedKey string) (*AESGCM, error) {
	if encodedKey == "" {
		return nil, ErrEmptyKey
	}
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	return NewAESGCM(key)
}

// GenerateKey returns a random base64-encoded key.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Seal encrypts plaintext under a fresh random nonce.
func (a *AESGCM) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, a.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return a.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts the output of Seal.
func (a *AESGCM) Open(sealed []byte) ([]byte, error) {
	n := a.aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrCiphertextShort
	}
	return a.aead.Open(nil, sealed[:n], sealed[n:], nil)
}
