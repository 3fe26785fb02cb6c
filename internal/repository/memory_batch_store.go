package repository

import (
    "context"
    "sort"
    "strings"
    "sync"
    "time"

    "github.com/scanchain/scanchain/internal/model"
)

// MemoryBatchStore keeps batches and their scan logs in process memory
// behind a single RWMutex. Writes for any batch are serialized, which
// trivially satisfies the no-lost-append requirement; readers get deep
// copies so a batch can never be observed in a torn state.
type MemoryBatchStore struct {
    mu         sync.RWMutex
    batches    map[string]*memBatch
    order      []string // batch ids in creation order
    nextScanID uint64
}

type memBatch struct {
    batch model.Batch
    scans []model.ScanEvent
}

// NewMemoryBatchStore returns an empty in-memory store.
func NewMemoryBatchStore() *MemoryBatchStore {
    return &MemoryBatchStore{batches: make(map[string]*memBatch)}
}

// CreateBatch registers a new batch. Duplicate ids are rejected and the
// existing record is left untouched.
func (s *MemoryBatchStore) CreateBatch(ctx context.Context, b *model.Batch) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.batches[b.BatchID]; ok {
        return ErrDuplicateBatch
    }
    now := time.Now().UTC()
    if b.CreatedAt.IsZero() {
        b.CreatedAt = now
    }
    if b.LastActivityAt.IsZero() {
        b.LastActivityAt = b.CreatedAt
    }
    if b.Status == "" {
        b.Status = model.BatchActive
    }
    cp := *b
    s.batches[b.BatchID] = &memBatch{batch: cp}
    s.order = append(s.order, b.BatchID)
    return nil
}

// GetBatch returns a copy of the stored batch.
func (s *MemoryBatchStore) GetBatch(ctx context.Context, batchID string) (model.Batch, error) {
    if err := ctx.Err(); err != nil {
        return model.Batch{}, err
    }
    s.mu.RLock()
    defer s.mu.RUnlock()
    mb, ok := s.batches[batchID]
    if !ok {
        return model.Batch{}, ErrBatchNotFound
    }
    return mb.batch, nil
}

// AppendScan assigns the next scan id, stamps the event into the batch
// log and bumps last activity under one lock acquisition.
func (s *MemoryBatchStore) AppendScan(ctx context.Context, batchID string, ev *model.ScanEvent) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    mb, ok := s.batches[batchID]
    if !ok {
        return ErrBatchNotFound
    }
    s.nextScanID++
    ev.ID = s.nextScanID
    ev.BatchID = batchID
    if ev.Timestamp.IsZero() {
        ev.Timestamp = time.Now().UTC()
    }
    mb.scans = append(mb.scans, *ev)
    mb.batch.LastActivityAt = ev.Timestamp
    return nil
}

// RevokeBatch flips the status to revoked.
func (s *MemoryBatchStore) RevokeBatch(ctx context.Context, batchID string) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    mb, ok := s.batches[batchID]
    if !ok {
        return ErrBatchNotFound
    }
    mb.batch.Status = model.BatchRevoked
    return nil
}

// GetScan scans all batch logs for the event id. The store is small in
// the setups that use it, so a linear walk is acceptable.
func (s *MemoryBatchStore) GetScan(ctx context.Context, scanID uint64) (model.ScanEvent, error) {
    if err := ctx.Err(); err != nil {
        return model.ScanEvent{}, err
    }
    s.mu.RLock()
    defer s.mu.RUnlock()
    for _, mb := range s.batches {
        for _, ev := range mb.scans {
            if ev.ID == scanID {
                return ev, nil
            }
        }
    }
    return model.ScanEvent{}, ErrScanNotFound
}

// ListBatchesByOwner returns the user's batches newest first.
func (s *MemoryBatchStore) ListBatchesByOwner(ctx context.Context, ownerUserID uint64) ([]model.Batch, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]model.Batch, 0)
    for _, id := range s.order {
        mb := s.batches[id]
        if mb.batch.OwnerUserID == ownerUserID {
            out = append(out, mb.batch)
        }
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
    return out, nil
}

// ListScansByBatch returns a copy of the batch's scan log in append order.
func (s *MemoryBatchStore) ListScansByBatch(ctx context.Context, batchID string) ([]model.ScanEvent, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    s.mu.RLock()
    defer s.mu.RUnlock()
    mb, ok := s.batches[batchID]
    if !ok {
        return nil, ErrBatchNotFound
    }
    out := make([]model.ScanEvent, len(mb.scans))
    copy(out, mb.scans)
    return out, nil
}

// ListScansByActor matches by actor id when the row carries one, and by
// actor name for legacy rows that do not.
func (s *MemoryBatchStore) ListScansByActor(ctx context.Context, actorID uint64, actorName string) ([]model.ScanEvent, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]model.ScanEvent, 0)
    for _, id := range s.order {
        for _, ev := range s.batches[id].scans {
            if matchesActor(ev, actorID, actorName) {
                out = append(out, ev)
            }
        }
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

// ListAllScans returns every scan event in append order.
func (s *MemoryBatchStore) ListAllScans(ctx context.Context) ([]model.ScanEvent, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]model.ScanEvent, 0)
    for _, id := range s.order {
        out = append(out, s.batches[id].scans...)
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func matchesActor(ev model.ScanEvent, actorID uint64, actorName string) bool {
    if ev.ActorID != nil {
        return *ev.ActorID == actorID
    }
    return actorName != "" && ev.ActorName == actorName
}

// Search performs a case-insensitive substring match over the selected
// field, or over every searchable field for SearchAll.
func (s *MemoryBatchStore) Search(ctx context.Context, query string, field SearchField) ([]model.Batch, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }
    q := strings.ToLower(strings.TrimSpace(query))
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]model.Batch, 0)
    for _, id := range s.order {
        b := s.batches[id].batch
        if batchMatches(b, q, field) {
            out = append(out, b)
        }
    }
    return out, nil
}

func batchMatches(b model.Batch, q string, field SearchField) bool {
    contains := func(v string) bool { return strings.Contains(strings.ToLower(v), q) }
    switch field {
    case SearchBatchID:
        return contains(b.BatchID)
    case SearchBatchName:
        return contains(b.BatchName)
    case SearchManufacturer:
        return contains(b.ManufacturerName)
    case SearchProductType:
        return contains(b.ProductType)
    default:
        return contains(b.BatchID) || contains(b.BatchName) ||
            contains(b.ManufacturerName) || contains(b.ProductType)
    }
}
