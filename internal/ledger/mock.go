package ledger

import (
    "context"
    "crypto/sha256"
    "encoding/hex"
    "sync"

    "github.com/scanchain/scanchain/internal/utils"
)

// MockLedger is an in-memory test double. Refs are deterministic
// digests of the (batchID, hash) pair so tests can assert idempotence.
// It is selected explicitly by configuration and is never substituted
// for the gateway backend after a failure.
type MockLedger struct {
    mu      sync.Mutex
    entries map[string]mockEntry
}

type mockEntry struct {
    hash string
    ref  string
}

// NewMockLedger returns an empty mock backend.
func NewMockLedger() *MockLedger {
    return &MockLedger{entries: make(map[string]mockEntry)}
}

// Anchor records the hash for the batch id. Re-anchoring the identical
// pair returns the original ref; a conflicting hash is rejected.
func (m *MockLedger) Anchor(ctx context.Context, batchID, contentHash string) (string, error) {
    if err := ctx.Err(); err != nil {
        return "", err
    }
    contentHash = utils.NormalizeHash(contentHash)
    m.mu.Lock()
    defer m.mu.Unlock()
    if e, ok := m.entries[batchID]; ok {
        if e.hash == contentHash {
            return e.ref, nil
        }
        return "", ErrAlreadyAnchored
    }
    sum := sha256.Sum256([]byte(batchID + contentHash))
    ref := "0x" + hex.EncodeToString(sum[:])
    m.entries[batchID] = mockEntry{hash: contentHash, ref: ref}
    return ref, nil
}

// Lookup returns the anchored hash or ErrNotAnchored. Unknown ids are
// reported as missing, never answered with a fabricated hash.
func (m *MockLedger) Lookup(ctx context.Context, batchID string) (string, error) {
    if err := ctx.Err(); err != nil {
        return "", err
    }
    m.mu.Lock()
    defer m.mu.Unlock()
    e, ok := m.entries[batchID]
    if !ok {
        return "", ErrNotAnchored
    }
    return e.hash, nil
}
