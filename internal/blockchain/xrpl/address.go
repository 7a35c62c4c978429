// internal/blockchain/xrpl/address.go
package xrpl

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mr-tron/base58"
)

// rippleAlphabet is the base58 alphabet of XRP Ledger encodings.
var rippleAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

const (
	accountIDPrefix = 0x00
	accountIDLength = 20
	seedPrefix      = 0x21
	seedLength      = 16
	checksumLength  = 4
)

var (
	ErrInvalidAddress  = errors.New("not a valid XRP Ledger classic address")
	ErrInvalidSeed     = errors.New("not a valid XRP Ledger family seed")
	currencyCodeRegexp = regexp.MustCompile(`^([A-Za-z0-9?!@#$%^&*<>(){}\[\]|]{3}|[0-9A-Fa-f]{40})$`)
)

// ValidateClassicAddress checks the r-address encoding and its checksum.
func ValidateClassicAddress(s string) error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "r") || len(s) < 25 || len(s) > 35 {
		return ErrInvalidAddress
	}
	decoded, err := base58.DecodeAlphabet(s, rippleAlphabet)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != 1+accountIDLength+checksumLength || decoded[0] != accountIDPrefix {
		return ErrInvalidAddress
	}
	payload := decoded[:len(decoded)-checksumLength]
	if !bytes.Equal(checksum(payload), decoded[len(decoded)-checksumLength:]) {
		return fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
	}
	return nil
}

// EncodeClassicAddress encodes a 20 byte account id as an r-address.
func EncodeClassicAddress(accountID []byte) (string, error) {
	if len(accountID) != accountIDLength {
		return "", fmt.Errorf("account id must be %d bytes", accountIDLength)
	}
	payload := append([]byte{accountIDPrefix}, accountID...)
	return base58.EncodeAlphabet(append(payload, checksum(payload)...), rippleAlphabet), nil
}

// ValidateSeed checks an "s..." family seed. The error never contains the seed.
func ValidateSeed(s string) error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "s") {
		return ErrInvalidSeed
	}
	decoded, err := base58.DecodeAlphabet(s, rippleAlphabet)
	if err != nil || len(decoded) != 1+seedLength+checksumLength || decoded[0] != seedPrefix {
		return ErrInvalidSeed
	}
	payload := decoded[:len(decoded)-checksumLength]
	if !bytes.Equal(checksum(payload), decoded[len(decoded)-checksumLength:]) {
		return ErrInvalidSeed
	}
	return nil
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}

// Asset is an issued currency on the ledger. An empty Currency matches any
// trust line with the issuer.
type Asset struct {
	Currency string
	Issuer   string
}

func (a Asset) String() string {
	if a.Currency == "" {
		return a.Issuer
	}
	return a.Currency + "." + a.Issuer
}

// ParseAsset accepts "rIssuer" or "CUR.rIssuer".
func ParseAsset(s string) (Asset, error) {
	s = strings.TrimSpace(s)
	var a Asset
	if currency, issuer, ok := strings.Cut(s, "."); ok {
		if !currencyCodeRegexp.MatchString(currency) || strings.EqualFold(currency, "XRP") {
			return Asset{}, fmt.Errorf("invalid currency code %q", currency)
		}
		a.Currency = strings.ToUpper(currency)
		s = issuer
	}
	if err := ValidateClassicAddress(s); err != nil {
		return Asset{}, err
	}
	a.Issuer = s
	return a, nil
}
