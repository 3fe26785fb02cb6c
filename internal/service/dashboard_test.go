package service

import (
    "context"
    "database/sql"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/scanchain/scanchain/internal/model"
    "github.com/scanchain/scanchain/internal/repository"
)

// fakeUsers is an in-memory UserDirectory.
type fakeUsers struct {
    users map[uint64]model.User
}

func (f *fakeUsers) GetByID(ctx context.Context, id uint64) (model.User, error) {
    u, ok := f.users[id]
    if !ok {
        return model.User{}, sql.ErrNoRows
    }
    return u, nil
}

// hidingStore wraps a BatchStore and pretends one batch does not exist,
// simulating a scan whose batch record is gone.
type hidingStore struct {
    repository.BatchStore
    hidden string
}

func (h *hidingStore) GetBatch(ctx context.Context, batchID string) (model.Batch, error) {
    if batchID == h.hidden {
        return model.Batch{}, repository.ErrBatchNotFound
    }
    return h.BatchStore.GetBatch(ctx, batchID)
}

func dashboardFixture(t *testing.T) (*repository.MemoryBatchStore, *fakeUsers) {
    t.Helper()
    ctx := context.Background()
    store := repository.NewMemoryBatchStore()

    users := &fakeUsers{users: map[uint64]model.User{
        1: {ID: 1, FullName: "Mia Torres", Role: model.RoleManufacturer, CompanyName: "Acme Pharma"},
        7: {ID: 7, FullName: "Carol Chen", Role: model.RoleSupplier},
        8: {ID: 8, FullName: "Dave Kim", Role: model.RoleSupplier},
        9: {ID: 9, FullName: "Uma Patel", Role: model.RoleUser},
    }}

    require.NoError(t, store.CreateBatch(ctx, &model.Batch{
        BatchID: "LOT-001", OwnerUserID: 1, ManufacturerName: "Acme Pharma", BatchName: "Aspirin 100mg",
    }))
    require.NoError(t, store.CreateBatch(ctx, &model.Batch{
        BatchID: "LOT-002", OwnerUserID: 1, ManufacturerName: "Acme Pharma", BatchName: "Ibuprofen 200mg",
    }))

    base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
    carol, dave := uint64(7), uint64(8)
    appendScan := func(batchID string, actorID *uint64, name string, offset time.Duration) {
        ev := model.ScanEvent{ActorID: actorID, ActorName: name, ActorRole: model.RoleSupplier, Timestamp: base.Add(offset)}
        require.NoError(t, store.AppendScan(ctx, batchID, &ev))
    }
    appendScan("LOT-001", &carol, "Carol Chen", 0)
    appendScan("LOT-001", &dave, "Dave Kim", time.Minute)
    appendScan("LOT-001", &carol, "Carol Chen", 2*time.Minute)
    appendScan("LOT-002", &dave, "Dave Kim", 3*time.Minute)

    return store, users
}

func TestDashboardManufacturerView(t *testing.T) {
    store, users := dashboardFixture(t)
    a := NewDashboardAggregator(store, users)

    d, err := a.Dashboard(context.Background(), 1)
    require.NoError(t, err)
    assert.Equal(t, model.RoleManufacturer, d.Role)
    assert.Nil(t, d.Supplier)
    assert.Nil(t, d.Viewer)
    require.NotNil(t, d.Manufacturer)

    v := d.Manufacturer
    assert.Equal(t, 2, v.TotalBatches)
    assert.Equal(t, 4, v.TotalScans)
    assert.Equal(t, 2, v.TotalSuppliers)
    assert.ElementsMatch(t, []string{"Carol Chen", "Dave Kim"}, v.SupplierList)

    // Newest first across batches.
    require.Len(t, v.AllScans, 4)
    for i := 1; i < len(v.AllScans); i++ {
        assert.False(t, v.AllScans[i].Timestamp.After(v.AllScans[i-1].Timestamp))
    }
    assert.Equal(t, "Ibuprofen 200mg", v.AllScans[0].BatchName)
    assert.LessOrEqual(t, len(v.RecentScans), 10)
}

func TestDashboardSupplierView(t *testing.T) {
    store, users := dashboardFixture(t)
    a := NewDashboardAggregator(store, users)

    d, err := a.Dashboard(context.Background(), 7)
    require.NoError(t, err)
    assert.Equal(t, model.RoleSupplier, d.Role)
    assert.Nil(t, d.Manufacturer)
    require.NotNil(t, d.Supplier)

    v := d.Supplier
    assert.Equal(t, 2, v.TotalScans)
    assert.Equal(t, 1, v.TotalBatches)
    assert.Equal(t, 1, v.TotalManufacturers)
    assert.Equal(t, []string{"Acme Pharma"}, v.ManufacturerList)

    require.Len(t, v.ScannedBatches, 1)
    sb := v.ScannedBatches[0]
    assert.Equal(t, "LOT-001", sb.BatchID)
    assert.Equal(t, 2, sb.ScanCount)
    // Last scanned reflects Carol's later scan.
    assert.Equal(t, time.Date(2026, 3, 1, 12, 2, 0, 0, time.UTC), sb.LastScanned)
}

func TestDashboardViewerRole(t *testing.T) {
    store, users := dashboardFixture(t)
    a := NewDashboardAggregator(store, users)

    d, err := a.Dashboard(context.Background(), 9)
    require.NoError(t, err)
    assert.Equal(t, model.RoleUser, d.Role)
    require.NotNil(t, d.Viewer)
    assert.Equal(t, 0, d.Viewer.TotalScans)
    assert.NotNil(t, d.Viewer.AllScans)
}

func TestDashboardUnknownUser(t *testing.T) {
    store, users := dashboardFixture(t)
    a := NewDashboardAggregator(store, users)

    _, err := a.Dashboard(context.Background(), 404)
    assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDashboardKeepsOrphanedScans(t *testing.T) {
    store, users := dashboardFixture(t)
    a := NewDashboardAggregator(&hidingStore{BatchStore: store, hidden: "LOT-002"}, users)

    d, err := a.Dashboard(context.Background(), 8)
    require.NoError(t, err)
    require.NotNil(t, d.Supplier)

    v := d.Supplier
    // Dave scanned LOT-001 and the now-unresolvable LOT-002; the orphan
    // keeps its row without enrichment.
    assert.Equal(t, 2, v.TotalScans)
    assert.Equal(t, 1, v.TotalBatches)

    var orphan *EnrichedScan
    for i := range v.AllScans {
        if v.AllScans[i].ScanEvent.BatchID == "LOT-002" {
            orphan = &v.AllScans[i]
        }
    }
    require.NotNil(t, orphan)
    assert.Empty(t, orphan.BatchName)
    assert.Empty(t, orphan.ManufacturerName)
}
