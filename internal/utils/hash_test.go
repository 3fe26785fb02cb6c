package utils

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestContentHash(t *testing.T) {
    // Known SHA-256 vector.
    assert.Equal(t,
        "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
        ContentHash([]byte("hello")))
}

func TestContentHashDiffersOnSingleBitFlip(t *testing.T) {
    a := ContentHash([]byte("hello"))
    b := ContentHash([]byte("hellp"))
    assert.NotEqual(t, a, b)
    assert.Len(t, a, 64)
    assert.Len(t, b, 64)
}

func TestNormalizeHash(t *testing.T) {
    assert.Equal(t, "abc123", NormalizeHash("  ABC123 "))
    assert.Equal(t, "", NormalizeHash("   "))
}
