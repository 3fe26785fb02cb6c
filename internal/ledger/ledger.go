// Package ledger anchors and retrieves content hashes for batch ids
// against an abstract tamper-evident, append-only store. The production
// backend talks to a ledger gateway over HTTP; the mock backend keeps
// entries in memory and exists for tests and local development only.
package ledger

import (
    "context"
    "errors"
)

// ErrNotAnchored is returned by Lookup when no entry exists for the
// batch id. Backends must never fabricate a hash for unknown ids.
var ErrNotAnchored = errors.New("batch not anchored on ledger")

// ErrAlreadyAnchored is returned by Anchor when the batch id already
// carries a different hash. It is terminal: the caller holds a batch id
// someone else registered. Re-anchoring the identical (id, hash) pair
// is not an error; the existing ref is returned so a caller that timed
// out can retry safely.
var ErrAlreadyAnchored = errors.New("batch already anchored with a different hash")

// ErrAnchorFailed is returned when the backend could not confirm the
// anchor. It is retryable; the client never claims success unless the
// backend confirmed durability.
var ErrAnchorFailed = errors.New("ledger anchor failed")

// Client is the ledger contract used by the provenance core.
type Client interface {
    // Anchor durably records contentHash (lowercase hex) against
    // batchID and returns the ledger reference.
    Anchor(ctx context.Context, batchID, contentHash string) (string, error)

    // Lookup returns the anchored hash for batchID or ErrNotAnchored.
    Lookup(ctx context.Context, batchID string) (string, error)
}
