package service

import (
    "context"
    "strings"

    "github.com/scanchain/scanchain/internal/blob"
    "github.com/scanchain/scanchain/internal/ledger"
    "github.com/scanchain/scanchain/internal/model"
    "github.com/scanchain/scanchain/internal/repository"
    "github.com/scanchain/scanchain/internal/utils"
)

// AssociationStore records the denormalized "batches I registered" view
// on the owning user. The MySQL user repository implements it.
type AssociationStore interface {
    AddHashAssociation(ctx context.Context, userID uint64, a model.HashAssociation) error
}

// RegisterInput is the metadata accompanying an uploaded artifact.
type RegisterInput struct {
    BatchID          string
    OwnerUserID      uint64
    ManufacturerName string
    BatchName        string
    ProductType      string
    Description      string
    FileName         string
    MimeType         string
    Data             []byte
}

// RegisterResult is returned after a successful registration.
type RegisterResult struct {
    Batch     model.Batch
    QRPayload string
}

// Orchestrator composes the ledger, blob store and record store into
// the two primary workflows: register batch and verify batch.
type Orchestrator struct {
    Batches      repository.BatchStore
    Associations AssociationStore
    Ledger       ledger.Client
    Blobs        blob.Store
    Verifier     *VerificationEngine
}

// NewOrchestrator wires the workflows over the given collaborators.
func NewOrchestrator(batches repository.BatchStore, assoc AssociationStore, l ledger.Client, b blob.Store) *Orchestrator {
    return &Orchestrator{
        Batches:      batches,
        Associations: assoc,
        Ledger:       l,
        Blobs:        b,
        Verifier:     NewVerificationEngine(l, b),
    }
}

// Register runs hash → store blob → anchor → persist → associate.
// Persistence is the last step and is gated on every prior step
// succeeding, so an anchor failure never leaves a batch record behind.
// A duplicate batch id fails with repository.ErrDuplicateBatch; a
// caller retrying after a timeout either completes the original
// attempt (the ledger treats the identical pair as idempotent) or
// lands on that same duplicate error once the first attempt persisted.
func (o *Orchestrator) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
    in.BatchID = strings.TrimSpace(in.BatchID)
    if in.BatchID == "" || len(in.Data) == 0 {
        return RegisterResult{}, ErrInvalidInput
    }
    if in.BatchName == "" {
        in.BatchName = in.BatchID
    }
    if in.ManufacturerName == "" {
        in.ManufacturerName = "Unknown Manufacturer"
    }

    // Fail fast on ids that already exist before any side effect.
    if _, err := o.Batches.GetBatch(ctx, in.BatchID); err == nil {
        return RegisterResult{}, repository.ErrDuplicateBatch
    } else if err != repository.ErrBatchNotFound {
        return RegisterResult{}, err
    }

    contentHash := utils.ContentHash(in.Data)

    blobURI, err := o.Blobs.Put(ctx, in.Data, in.MimeType)
    if err != nil {
        return RegisterResult{}, err
    }
    if err := ctx.Err(); err != nil {
        // Cancelled between blob storage and anchoring: nothing has
        // been persisted, so a retry with the same id is safe.
        return RegisterResult{}, err
    }

    ref, err := o.Ledger.Anchor(ctx, in.BatchID, contentHash)
    if err != nil {
        return RegisterResult{}, err
    }

    batch := model.Batch{
        BatchID:          in.BatchID,
        OwnerUserID:      in.OwnerUserID,
        ManufacturerName: in.ManufacturerName,
        BatchName:        in.BatchName,
        ProductType:      in.ProductType,
        Description:      in.Description,
        ContentHash:      contentHash,
        BlobURI:          blobURI,
        LedgerTxRef:      ref,
        Status:           model.BatchActive,
        FileName:         in.FileName,
        FileSize:         int64(len(in.Data)),
        MimeType:         in.MimeType,
    }
    if err := o.Batches.CreateBatch(ctx, &batch); err != nil {
        return RegisterResult{}, err
    }

    if err := o.Associations.AddHashAssociation(ctx, in.OwnerUserID, model.HashAssociation{
        UserID:      in.OwnerUserID,
        BatchID:     batch.BatchID,
        ContentHash: contentHash,
        LedgerTxRef: ref,
        BatchName:   batch.BatchName,
    }); err != nil {
        return RegisterResult{}, err
    }

    payload, err := EncodeQRPayload(QRPayload{
        BatchID:      batch.BatchID,
        ContentHash:  contentHash,
        LedgerRef:    ref,
        Manufacturer: batch.ManufacturerName,
        BatchName:    batch.BatchName,
        ProductType:  batch.ProductType,
    })
    if err != nil {
        return RegisterResult{}, err
    }
    return RegisterResult{Batch: batch, QRPayload: payload}, nil
}

// Verify delegates to the verification engine.
func (o *Orchestrator) Verify(ctx context.Context, batchID, blobURI string) (VerificationResult, error) {
    return o.Verifier.Verify(ctx, batchID, blobURI)
}
