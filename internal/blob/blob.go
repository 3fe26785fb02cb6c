// Package blob stores and retrieves raw artifact bytes. The core only
// depends on the Put/Get contract; retry or failover across storage
// provider endpoints is the bucket service's own business.
package blob

import (
    "context"
    "errors"
)

// ErrNotFound is returned by Get when no object exists at the URI.
var ErrNotFound = errors.New("blob not found")

// ErrUnavailable is returned when the backing store cannot be reached.
// It is retryable by the caller.
var ErrUnavailable = errors.New("blob store unavailable")

// Store is the blob store contract.
type Store interface {
    // Put persists the bytes and returns a URI that Get accepts.
    Put(ctx context.Context, data []byte, contentType string) (string, error)

    // Get returns the bytes stored at the URI.
    Get(ctx context.Context, uri string) ([]byte, error)
}
