package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

const prefixLength = 8

// HashSecret returns the digest under which an API key secret is stored.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// SecretPrefix returns the leading characters of a secret kept for display.
func SecretPrefix(secret string) string {
	if len(secret) <= prefixLength {
		return secret
	}
	return secret[:prefixLength]
}
