package repository

import (
    "context"

    "github.com/scanchain/scanchain/internal/model"
)

// SearchField selects which batch column a search query matches against.
type SearchField string

const (
    SearchAll          SearchField = "all"
    SearchBatchID      SearchField = "batchId"
    SearchBatchName    SearchField = "batchName"
    SearchManufacturer SearchField = "manufacturer"
    SearchProductType  SearchField = "productType"
)

// BatchStore is the provenance record store. Two implementations exist:
// an in-memory store used by tests and single-node setups, and a MySQL
// store for production. Both guarantee that a scan append and the
// batch's last-activity bump happen atomically, and that concurrent
// readers never observe a half-written batch.
type BatchStore interface {
    // CreateBatch persists a new batch. It fails with ErrDuplicateBatch
    // when the batch id is already registered; the existing record is
    // left unchanged in that case.
    CreateBatch(ctx context.Context, b *model.Batch) error

    // GetBatch returns the batch for the given id or ErrBatchNotFound.
    GetBatch(ctx context.Context, batchID string) (model.Batch, error)

    // AppendScan appends a scan event to the batch's log and bumps the
    // batch's last activity in the same atomic step. The store assigns
    // the event id and returns it on the passed event. Fails with
    // ErrBatchNotFound when the batch is absent.
    AppendScan(ctx context.Context, batchID string, s *model.ScanEvent) error

    // RevokeBatch flips the batch status to revoked. The record is
    // never physically deleted.
    RevokeBatch(ctx context.Context, batchID string) error

    // GetScan returns a single scan event by id or ErrScanNotFound.
    GetScan(ctx context.Context, scanID uint64) (model.ScanEvent, error)

    // ListBatchesByOwner returns all batches owned by the user, newest
    // first.
    ListBatchesByOwner(ctx context.Context, ownerUserID uint64) ([]model.Batch, error)

    // ListScansByBatch returns the batch's scan log in append order.
    ListScansByBatch(ctx context.Context, batchID string) ([]model.ScanEvent, error)

    // ListScansByActor returns scans whose actor id matches, or whose
    // actor name matches for rows recorded without an actor id, in
    // append order.
    ListScansByActor(ctx context.Context, actorID uint64, actorName string) ([]model.ScanEvent, error)

    // ListAllScans returns every scan event across all batches in
    // append order. Admin-facing; the stores this system runs against
    // are small enough for a full listing.
    ListAllScans(ctx context.Context) ([]model.ScanEvent, error)

    // Search returns batches whose selected field contains the query,
    // case-insensitively. SearchAll matches any of the searchable
    // fields.
    Search(ctx context.Context, query string, field SearchField) ([]model.Batch, error)
}
