package repository

import (
    "context"
    "fmt"
    "sync"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/scanchain/scanchain/internal/model"
)

func newTestBatch(id string, owner uint64) *model.Batch {
    return &model.Batch{
        BatchID:          id,
        OwnerUserID:      owner,
        ManufacturerName: "Acme Pharma",
        BatchName:        "Aspirin " + id,
        ProductType:      "pharmaceutical",
        ContentHash:      "deadbeef",
        LedgerTxRef:      "0x1",
    }
}

func TestCreateBatchDuplicateRejected(t *testing.T) {
    s := NewMemoryBatchStore()
    ctx := context.Background()

    require.NoError(t, s.CreateBatch(ctx, newTestBatch("LOT-001", 1)))

    dup := newTestBatch("LOT-001", 2)
    dup.BatchName = "Impostor"
    assert.ErrorIs(t, s.CreateBatch(ctx, dup), ErrDuplicateBatch)

    // Existing record is untouched.
    got, err := s.GetBatch(ctx, "LOT-001")
    require.NoError(t, err)
    assert.Equal(t, uint64(1), got.OwnerUserID)
    assert.Equal(t, "Aspirin LOT-001", got.BatchName)
    assert.Equal(t, model.BatchActive, got.Status)
}

func TestAppendScanGrowsLogByOne(t *testing.T) {
    s := NewMemoryBatchStore()
    ctx := context.Background()
    require.NoError(t, s.CreateBatch(ctx, newTestBatch("LOT-001", 1)))

    ev := model.ScanEvent{ActorName: "Carol", ActorRole: model.RoleSupplier, Location: "Hamburg"}
    require.NoError(t, s.AppendScan(ctx, "LOT-001", &ev))
    assert.NotZero(t, ev.ID)

    scans, err := s.ListScansByBatch(ctx, "LOT-001")
    require.NoError(t, err)
    require.Len(t, scans, 1)
    assert.Equal(t, "Carol", scans[0].ActorName)

    // Last activity follows the scan timestamp.
    b, err := s.GetBatch(ctx, "LOT-001")
    require.NoError(t, err)
    assert.Equal(t, scans[0].Timestamp, b.LastActivityAt)
}

func TestAppendScanUnknownBatch(t *testing.T) {
    s := NewMemoryBatchStore()
    ev := model.ScanEvent{ActorName: "Carol"}
    assert.ErrorIs(t, s.AppendScan(context.Background(), "LOT-404", &ev), ErrBatchNotFound)
}

func TestAppendScanConcurrent(t *testing.T) {
    s := NewMemoryBatchStore()
    ctx := context.Background()
    require.NoError(t, s.CreateBatch(ctx, newTestBatch("LOT-001", 1)))

    const n = 50
    var wg sync.WaitGroup
    wg.Add(n)
    for i := 0; i < n; i++ {
        go func(i int) {
            defer wg.Done()
            ev := model.ScanEvent{ActorName: fmt.Sprintf("actor-%d", i)}
            _ = s.AppendScan(ctx, "LOT-001", &ev)
        }(i)
    }
    wg.Wait()

    scans, err := s.ListScansByBatch(ctx, "LOT-001")
    require.NoError(t, err)
    assert.Len(t, scans, n)

    // Every event got a distinct id.
    seen := make(map[uint64]bool, n)
    for _, ev := range scans {
        assert.False(t, seen[ev.ID])
        seen[ev.ID] = true
    }
}

func TestRevokeBatchKeepsRecordReadable(t *testing.T) {
    s := NewMemoryBatchStore()
    ctx := context.Background()
    require.NoError(t, s.CreateBatch(ctx, newTestBatch("LOT-001", 1)))

    require.NoError(t, s.RevokeBatch(ctx, "LOT-001"))
    b, err := s.GetBatch(ctx, "LOT-001")
    require.NoError(t, err)
    assert.Equal(t, model.BatchRevoked, b.Status)

    assert.ErrorIs(t, s.RevokeBatch(ctx, "LOT-404"), ErrBatchNotFound)
}

func TestGetScan(t *testing.T) {
    s := NewMemoryBatchStore()
    ctx := context.Background()
    require.NoError(t, s.CreateBatch(ctx, newTestBatch("LOT-001", 1)))

    ev := model.ScanEvent{ActorName: "Carol"}
    require.NoError(t, s.AppendScan(ctx, "LOT-001", &ev))

    got, err := s.GetScan(ctx, ev.ID)
    require.NoError(t, err)
    assert.Equal(t, "LOT-001", got.BatchID)

    _, err = s.GetScan(ctx, 9999)
    assert.ErrorIs(t, err, ErrScanNotFound)
}

func TestListScansByActorPrefersID(t *testing.T) {
    s := NewMemoryBatchStore()
    ctx := context.Background()
    require.NoError(t, s.CreateBatch(ctx, newTestBatch("LOT-001", 1)))

    carol := uint64(7)
    withID := model.ScanEvent{ActorID: &carol, ActorName: "Carol Chen"}
    require.NoError(t, s.AppendScan(ctx, "LOT-001", &withID))
    // Legacy row without an actor id falls back to a name match.
    legacy := model.ScanEvent{ActorName: "Carol Chen"}
    require.NoError(t, s.AppendScan(ctx, "LOT-001", &legacy))
    // A different user sharing the same display name must not collide
    // once their rows carry ids.
    dave := uint64(8)
    other := model.ScanEvent{ActorID: &dave, ActorName: "Carol Chen"}
    require.NoError(t, s.AppendScan(ctx, "LOT-001", &other))

    scans, err := s.ListScansByActor(ctx, carol, "Carol Chen")
    require.NoError(t, err)
    require.Len(t, scans, 2)
    assert.Equal(t, withID.ID, scans[0].ID)
    assert.Equal(t, legacy.ID, scans[1].ID)
}

func TestListAllScansSpansBatches(t *testing.T) {
    s := NewMemoryBatchStore()
    ctx := context.Background()
    require.NoError(t, s.CreateBatch(ctx, newTestBatch("LOT-001", 1)))
    require.NoError(t, s.CreateBatch(ctx, newTestBatch("LOT-002", 1)))

    for _, id := range []string{"LOT-001", "LOT-002", "LOT-001"} {
        ev := model.ScanEvent{ActorName: "Carol"}
        require.NoError(t, s.AppendScan(ctx, id, &ev))
    }

    scans, err := s.ListAllScans(ctx)
    require.NoError(t, err)
    require.Len(t, scans, 3)
    // Append order across batches.
    assert.Equal(t, uint64(1), scans[0].ID)
    assert.Equal(t, uint64(3), scans[2].ID)
}

func TestSearchFields(t *testing.T) {
    s := NewMemoryBatchStore()
    ctx := context.Background()

    a := newTestBatch("LOT-001", 1)
    a.ProductType = "pharmaceutical"
    b := newTestBatch("PKG-002", 1)
    b.BatchName = "Vitamin C"
    b.ManufacturerName = "NutriCo"
    b.ProductType = "supplement"
    require.NoError(t, s.CreateBatch(ctx, a))
    require.NoError(t, s.CreateBatch(ctx, b))

    got, err := s.Search(ctx, "lot", SearchBatchID)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, "LOT-001", got[0].BatchID)

    got, err = s.Search(ctx, "vitamin", SearchBatchName)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, "PKG-002", got[0].BatchID)

    got, err = s.Search(ctx, "nutri", SearchManufacturer)
    require.NoError(t, err)
    assert.Len(t, got, 1)

    got, err = s.Search(ctx, "supplement", SearchProductType)
    require.NoError(t, err)
    assert.Len(t, got, 1)

    // SearchAll spans every field.
    got, err = s.Search(ctx, "acme", SearchAll)
    require.NoError(t, err)
    assert.Len(t, got, 1)

    got, err = s.Search(ctx, "nomatch", SearchAll)
    require.NoError(t, err)
    assert.Empty(t, got)
}

func TestListBatchesByOwnerNewestFirst(t *testing.T) {
    s := NewMemoryBatchStore()
    ctx := context.Background()
    require.NoError(t, s.CreateBatch(ctx, newTestBatch("LOT-001", 1)))
    require.NoError(t, s.CreateBatch(ctx, newTestBatch("LOT-002", 1)))
    require.NoError(t, s.CreateBatch(ctx, newTestBatch("LOT-003", 2)))

    got, err := s.ListBatchesByOwner(ctx, 1)
    require.NoError(t, err)
    require.Len(t, got, 2)
    assert.False(t, got[1].CreatedAt.After(got[0].CreatedAt))
}
