// internal/blockchain/solbc/address.go
package solbc

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ValidateAddress checks that s is a base58 encoded 32 byte public key.
func ValidateAddress(s string) error {
	if _, err := solana.PublicKeyFromBase58(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("not a valid Solana address: %w", err)
	}
	return nil
}

// Keypair is a freshly generated custody key. PrivateKey is base58.
type Keypair struct {
	PublicKey  string
	PrivateKey string
}

// GenerateKeypair creates a new random ed25519 keypair.
func GenerateKeypair() (Keypair, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return Keypair{}, fmt.Errorf("generate keypair: %w", err)
	}
	return Keypair{
		PublicKey:  key.PublicKey().String(),
		PrivateKey: key.String(),
	}, nil
}

// PublicKeyFromPrivate derives the public address from a base58 private key.
func PublicKeyFromPrivate(privateKey string) (string, error) {
	key, err := solana.PrivateKeyFromBase58(strings.TrimSpace(privateKey))
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	if len(key) != 64 {
		return "", fmt.Errorf("invalid private key length: %d", len(key))
	}
	return key.PublicKey().String(), nil
}
