package service

import (
    "context"
    "errors"
    "sync"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/scanchain/scanchain/internal/blob"
    "github.com/scanchain/scanchain/internal/ledger"
    "github.com/scanchain/scanchain/internal/model"
    "github.com/scanchain/scanchain/internal/repository"
)

// fakeAssociations records AddHashAssociation calls in memory.
type fakeAssociations struct {
    mu   sync.Mutex
    rows []model.HashAssociation
}

func (f *fakeAssociations) AddHashAssociation(ctx context.Context, userID uint64, a model.HashAssociation) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    a.UserID = userID
    f.rows = append(f.rows, a)
    return nil
}

// failingLedger always rejects anchoring.
type failingLedger struct{}

func (failingLedger) Anchor(ctx context.Context, batchID, contentHash string) (string, error) {
    return "", ledger.ErrAnchorFailed
}
func (failingLedger) Lookup(ctx context.Context, batchID string) (string, error) {
    return "", ledger.ErrNotAnchored
}

func newTestOrchestrator() (*Orchestrator, *repository.MemoryBatchStore, *fakeAssociations) {
    store := repository.NewMemoryBatchStore()
    assoc := &fakeAssociations{}
    o := NewOrchestrator(store, assoc, ledger.NewMockLedger(), blob.NewMemoryStore())
    return o, store, assoc
}

func registerInput(id string) RegisterInput {
    return RegisterInput{
        BatchID:          id,
        OwnerUserID:      1,
        ManufacturerName: "Acme Pharma",
        BatchName:        "Aspirin 100mg",
        ProductType:      "pharmaceutical",
        FileName:         "certificate.pdf",
        MimeType:         "application/pdf",
        Data:             []byte("certificate of analysis for " + id),
    }
}

func TestRegisterThenVerify(t *testing.T) {
    o, store, assoc := newTestOrchestrator()
    ctx := context.Background()

    res, err := o.Register(ctx, registerInput("LOT-001"))
    require.NoError(t, err)
    assert.Equal(t, "LOT-001", res.Batch.BatchID)
    assert.Len(t, res.Batch.ContentHash, 64)
    assert.NotEmpty(t, res.Batch.LedgerTxRef)
    assert.NotEmpty(t, res.Batch.BlobURI)
    assert.Equal(t, model.BatchActive, res.Batch.Status)
    assert.NotEmpty(t, res.QRPayload)

    // Exactly one association for the owner.
    require.Len(t, assoc.rows, 1)
    assert.Equal(t, uint64(1), assoc.rows[0].UserID)
    assert.Equal(t, res.Batch.ContentHash, assoc.rows[0].ContentHash)

    b, err := store.GetBatch(ctx, "LOT-001")
    require.NoError(t, err)

    v, err := o.Verify(ctx, b.BatchID, b.BlobURI)
    require.NoError(t, err)
    assert.True(t, v.IsVerified)
    assert.True(t, v.VerifiedAgainstSource)
    assert.Equal(t, v.StoredHash, v.CurrentHash)
}

func TestVerifyDetectsTamperedArtifact(t *testing.T) {
    o, _, _ := newTestOrchestrator()
    ctx := context.Background()

    _, err := o.Register(ctx, registerInput("LOT-001"))
    require.NoError(t, err)

    // Store a different artifact and verify the batch against it, as if
    // the stored document had been swapped.
    tamperedURI, err := o.Blobs.Put(ctx, []byte("forged certificate"), "application/pdf")
    require.NoError(t, err)

    v, err := o.Verify(ctx, "LOT-001", tamperedURI)
    require.NoError(t, err)
    assert.False(t, v.IsVerified)
    assert.True(t, v.VerifiedAgainstSource)
    assert.Equal(t, ReasonHashMismatch, v.Reason)
    assert.NotEqual(t, v.StoredHash, v.CurrentHash)
}

func TestRegisterDuplicateRejected(t *testing.T) {
    o, store, _ := newTestOrchestrator()
    ctx := context.Background()

    first, err := o.Register(ctx, registerInput("LOT-001"))
    require.NoError(t, err)

    in := registerInput("LOT-001")
    in.Data = []byte("a different document entirely")
    _, err = o.Register(ctx, in)
    assert.ErrorIs(t, err, repository.ErrDuplicateBatch)

    // First registration is untouched.
    b, err := store.GetBatch(ctx, "LOT-001")
    require.NoError(t, err)
    assert.Equal(t, first.Batch.ContentHash, b.ContentHash)
}

func TestRegisterAnchorFailureLeavesNoRecord(t *testing.T) {
    store := repository.NewMemoryBatchStore()
    o := NewOrchestrator(store, &fakeAssociations{}, failingLedger{}, blob.NewMemoryStore())

    _, err := o.Register(context.Background(), registerInput("LOT-001"))
    require.Error(t, err)
    assert.ErrorIs(t, err, ledger.ErrAnchorFailed)

    _, err = store.GetBatch(context.Background(), "LOT-001")
    assert.ErrorIs(t, err, repository.ErrBatchNotFound)
}

func TestRegisterInvalidInput(t *testing.T) {
    o, _, _ := newTestOrchestrator()
    ctx := context.Background()

    in := registerInput("  ")
    _, err := o.Register(ctx, in)
    assert.ErrorIs(t, err, ErrInvalidInput)

    in = registerInput("LOT-001")
    in.Data = nil
    _, err = o.Register(ctx, in)
    assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVerifyWeakPathWithoutBlob(t *testing.T) {
    o, _, _ := newTestOrchestrator()
    ctx := context.Background()

    _, err := o.Register(ctx, registerInput("LOT-001"))
    require.NoError(t, err)

    v, err := o.Verify(ctx, "LOT-001", "")
    require.NoError(t, err)
    assert.True(t, v.IsVerified)
    // No artifact was re-hashed, and the result says so.
    assert.False(t, v.VerifiedAgainstSource)
    assert.Equal(t, v.StoredHash, v.CurrentHash)
}

func TestVerifyUnanchoredBatchIsAVerdict(t *testing.T) {
    o, _, _ := newTestOrchestrator()

    v, err := o.Verify(context.Background(), "LOT-404", "")
    require.NoError(t, err)
    assert.False(t, v.IsVerified)
    assert.Equal(t, ReasonNotAnchored, v.Reason)
}

func TestVerifyBlobFetchFailureIsAnError(t *testing.T) {
    o, _, _ := newTestOrchestrator()
    ctx := context.Background()

    _, err := o.Register(ctx, registerInput("LOT-001"))
    require.NoError(t, err)

    _, err = o.Verify(ctx, "LOT-001", "mem://does-not-exist")
    require.Error(t, err)
    assert.True(t, errors.Is(err, blob.ErrNotFound))
}
