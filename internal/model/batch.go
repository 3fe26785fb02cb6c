package model

import "time"

// Batch status values.  Batches are never physically deleted; revocation
// flips the status instead.
const (
    BatchActive  = "active"
    BatchRevoked = "revoked"
)

// Batch is one registered provenance record for a physical product lot
// or document.  The batch identifier is supplied by the registrant
// (e.g. a lot code) and is globally unique across the store.  Once a
// batch is created its content hash and blob URI are immutable;
// registering a new document version requires a new batch id.
//
// Fields:
//  BatchID          – externally supplied unique identifier.
//  OwnerUserID      – user who registered the batch.
//  ManufacturerName – manufacturer display name.
//  BatchName        – human-readable batch name.
//  ProductType      – free-form product category.
//  Description      – optional description.
//  ContentHash      – lowercase hex SHA-256 of the artifact.
//  BlobURI          – where the artifact bytes live in the blob store.
//  LedgerTxRef      – ledger reference returned when the hash was anchored.
//  Status           – active or revoked.
//  FileName         – original upload file name.
//  FileSize         – artifact size in bytes.
//  MimeType         – artifact content type.
//  CreatedAt        – registration timestamp.
//  LastActivityAt   – bumped on every scan append.
type Batch struct {
    BatchID          string    `json:"batch_id"`          // batches.batch_id
    OwnerUserID      uint64    `json:"owner_user_id"`     // batches.owner_user_id
    ManufacturerName string    `json:"manufacturer_name"` // batches.manufacturer_name
    BatchName        string    `json:"batch_name"`        // batches.batch_name
    ProductType      string    `json:"product_type"`      // batches.product_type
    Description      string    `json:"description"`       // batches.description
    ContentHash      string    `json:"content_hash"`      // batches.content_hash
    BlobURI          string    `json:"blob_uri"`          // batches.blob_uri
    LedgerTxRef      string    `json:"ledger_tx_ref"`     // batches.ledger_tx_ref
    Status           string    `json:"status"`            // batches.status
    FileName         string    `json:"file_name"`         // batches.file_name
    FileSize         int64     `json:"file_size"`         // batches.file_size
    MimeType         string    `json:"mime_type"`         // batches.mime_type
    CreatedAt        time.Time `json:"created_at"`        // batches.created_at
    LastActivityAt   time.Time `json:"last_activity_at"`  // batches.last_activity_at
}
