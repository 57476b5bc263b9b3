package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const apiKeyBytes = 32

// GenerateAPIKey returns a new URL-safe secret built from 32 random bytes.
// The raw value is shown to the caller exactly once.
func GenerateAPIKey() (string, error) {
	raw := make([]byte, apiKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
