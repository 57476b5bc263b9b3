package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashSecret(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HashSecret("abc"))
	assert.NotEqual(t, HashSecret("a"), HashSecret("b"))
}

func TestSecretPrefix(t *testing.T) {
	assert.Equal(t, "abcdefgh", SecretPrefix("abcdefghijklmnop"))
	assert.Equal(t, "abc", SecretPrefix("abc"))
}
