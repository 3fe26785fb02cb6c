package service

import (
    "context"
    "errors"

    "github.com/scanchain/scanchain/internal/blob"
    "github.com/scanchain/scanchain/internal/ledger"
    "github.com/scanchain/scanchain/internal/utils"
)

// Verification verdict reasons.
const (
    ReasonNotAnchored  = "not_anchored"
    ReasonHashMismatch = "hash_mismatch"
)

// VerificationResult is the verdict of comparing an artifact against
// its anchored hash. When no blob URI was supplied the engine can only
// echo the ledger hash back; VerifiedAgainstSource is false on that
// path so callers never mistake it for a genuine re-hash comparison.
type VerificationResult struct {
    BatchID               string `json:"batch_id"`
    IsVerified            bool   `json:"is_verified"`
    StoredHash            string `json:"stored_hash,omitempty"`
    CurrentHash           string `json:"current_hash,omitempty"`
    VerifiedAgainstSource bool   `json:"verified_against_source"`
    Reason                string `json:"reason,omitempty"`
}

// VerificationEngine re-hashes a retrieved artifact and compares it
// against the ledger-anchored hash.
type VerificationEngine struct {
    Ledger ledger.Client
    Blobs  blob.Store
}

// NewVerificationEngine builds an engine over the given collaborators.
func NewVerificationEngine(l ledger.Client, b blob.Store) *VerificationEngine {
    return &VerificationEngine{Ledger: l, Blobs: b}
}

// Verify looks up the anchored hash for the batch and, when a blob URI
// is supplied, fetches the artifact, re-hashes it and compares. A
// missing ledger entry is a verdict, not an error; infrastructure
// failures (blob fetch, gateway outage) propagate as errors.
func (e *VerificationEngine) Verify(ctx context.Context, batchID, blobURI string) (VerificationResult, error) {
    storedHash, err := e.Ledger.Lookup(ctx, batchID)
    if err != nil {
        if errors.Is(err, ledger.ErrNotAnchored) {
            return VerificationResult{
                BatchID: batchID,
                Reason:  ReasonNotAnchored,
            }, nil
        }
        return VerificationResult{}, err
    }
    storedHash = utils.NormalizeHash(storedHash)

    if blobURI == "" {
        // Weak path: nothing to re-hash, the comparison is vacuous.
        return VerificationResult{
            BatchID:     batchID,
            IsVerified:  true,
            StoredHash:  storedHash,
            CurrentHash: storedHash,
        }, nil
    }

    data, err := e.Blobs.Get(ctx, blobURI)
    if err != nil {
        return VerificationResult{}, err
    }
    currentHash := utils.ContentHash(data)

    res := VerificationResult{
        BatchID:               batchID,
        StoredHash:            storedHash,
        CurrentHash:           currentHash,
        VerifiedAgainstSource: true,
    }
    if currentHash == storedHash {
        res.IsVerified = true
    } else {
        res.Reason = ReasonHashMismatch
    }
    return res, nil
}
