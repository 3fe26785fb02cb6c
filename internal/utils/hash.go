package utils

import (
    "crypto/sha256"
    "encoding/hex"
    "strings"
)

// ContentHash returns the lowercase hex SHA-256 digest of the artifact
// bytes. This is the canonical content hash anchored to the ledger and
// compared during verification.
func ContentHash(data []byte) string {
    sum := sha256.Sum256(data)
    return hex.EncodeToString(sum[:])
}

// NormalizeHash lowercases and trims a hex hash so comparisons at the
// core boundary are unambiguous.
func NormalizeHash(h string) string {
    return strings.ToLower(strings.TrimSpace(h))
}
