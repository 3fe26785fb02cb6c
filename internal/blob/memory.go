package blob

import (
    "context"
    "crypto/sha256"
    "encoding/hex"
    "fmt"
    "sync"
)

// MemoryStore keeps blobs in process memory. URIs are content-addressed
// (mem://<digest>), so storing identical bytes twice yields the same
// URI. Used by tests and local development.
type MemoryStore struct {
    mu      sync.RWMutex
    objects map[string][]byte
}

// NewMemoryStore returns an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
    return &MemoryStore{objects: make(map[string][]byte)}
}

// Put stores a copy of the bytes under a content-addressed URI.
func (s *MemoryStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
    if err := ctx.Err(); err != nil {
        return "", err
    }
    sum := sha256.Sum256(data)
    uri := fmt.Sprintf("mem://%s", hex.EncodeToString(sum[:]))
    cp := make([]byte, len(data))
    copy(cp, data)
    s.mu.Lock()
    s.objects[uri] = cp
    s.mu.Unlock()
    return uri, nil
}

// Get returns a copy of the stored bytes.
func (s *MemoryStore) Get(ctx context.Context, uri string) ([]byte, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    s.mu.RLock()
    data, ok := s.objects[uri]
    s.mu.RUnlock()
    if !ok {
        return nil, ErrNotFound
    }
    cp := make([]byte, len(data))
    copy(cp, data)
    return cp, nil
}
