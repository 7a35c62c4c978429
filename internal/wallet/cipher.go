// internal/wallet/cipher.go
package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// refPrefix versions the stored ciphertext format.
const refPrefix = "v1:"

var ErrInvalidRef = errors.New("invalid private key reference")

// Cipher seals private keys with AES-256-GCM. A reference is
// "v1:" + base58(nonce || ciphertext).
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a cipher from a hex encoded 32 byte key.
func NewCipher(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create block cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts plaintext. additional binds the reference to one owner, so a
// ref copied to another user does not open.
func (c *Cipher) Seal(plaintext, additional string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), []byte(additional))
	return refPrefix + base58.Encode(sealed), nil
}

// Open decrypts a reference produced by Seal.
func (c *Cipher) Open(ref, additional string) (string, error) {
	if !strings.HasPrefix(ref, refPrefix) {
		return "", ErrInvalidRef
	}
	raw, err := base58.Decode(strings.TrimPrefix(ref, refPrefix))
	if err != nil || len(raw) < c.aead.NonceSize()+c.aead.Overhead() {
		return "", ErrInvalidRef
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, []byte(additional))
	if err != nil {
		return "", ErrInvalidRef
	}
	return string(plaintext), nil
}
