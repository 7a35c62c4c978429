// internal/utils/logger/redact.go
package logger

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const redactedMarker = "…"

// Redact masks a secret so only its first and last four characters remain.
// Values of eight characters or fewer are masked entirely.
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + redactedMarker + secret[len(secret)-4:]
}

// Mask hides a secret completely and keeps only its length. Use it for
// cleartext key material; Redact is for ciphertext references.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "[redacted " + strconv.Itoa(len(secret)) + " chars]"
}

// Secret is a zap field that never carries any part of the value.
func Secret(key, value string) zap.Field {
	return zap.String(key, Mask(value))
}

// RedactIn replaces every occurrence of secret inside text, for upstream
// error bodies that may echo the request back.
func RedactIn(text, secret string) string {
	if secret == "" {
		return text
	}
	return strings.ReplaceAll(text, secret, Mask(secret))
}
