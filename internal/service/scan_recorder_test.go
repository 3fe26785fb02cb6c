package service

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/scanchain/scanchain/internal/model"
    "github.com/scanchain/scanchain/internal/queue"
    "github.com/scanchain/scanchain/internal/repository"
)

// capturingPublisher records published events.
type capturingPublisher struct {
    mu     sync.Mutex
    events []queue.ScanRecordedEvent
    fail   bool
}

func (p *capturingPublisher) PublishScanRecorded(ctx context.Context, ev queue.ScanRecordedEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.fail {
        return errors.New("broker down")
    }
    p.events = append(p.events, ev)
    return nil
}

func seededStore(t *testing.T) *repository.MemoryBatchStore {
    t.Helper()
    store := repository.NewMemoryBatchStore()
    require.NoError(t, store.CreateBatch(context.Background(), &model.Batch{
        BatchID:          "LOT-001",
        OwnerUserID:      1,
        ManufacturerName: "Acme Pharma",
        BatchName:        "Aspirin 100mg",
    }))
    return store
}

func TestRecordStampsServerTimestamp(t *testing.T) {
    store := seededStore(t)
    r := NewScanRecorder(store, nil)

    carol := uint64(7)
    before := time.Now().UTC()
    ev, err := r.Record(context.Background(), "LOT-001",
        Actor{ID: &carol, Name: "Carol Chen", Role: model.RoleSupplier},
        ScanContext{Location: "Hamburg", IPAddress: "10.0.0.1", UserAgent: "scanner/1.0"})
    after := time.Now().UTC()

    require.NoError(t, err)
    assert.NotZero(t, ev.ID)
    assert.Equal(t, "Hamburg", ev.Location)
    require.NotNil(t, ev.ActorID)
    assert.Equal(t, carol, *ev.ActorID)
    // The timestamp is server-assigned, never taken from the client.
    assert.False(t, ev.Timestamp.Before(before))
    assert.False(t, ev.Timestamp.After(after))
}

func TestRecordDefaultsLocation(t *testing.T) {
    store := seededStore(t)
    r := NewScanRecorder(store, nil)

    ev, err := r.Record(context.Background(), "LOT-001",
        Actor{Name: "Carol Chen", Role: model.RoleSupplier}, ScanContext{})
    require.NoError(t, err)
    assert.Equal(t, "Unknown", ev.Location)
}

func TestRecordRejectsBlankActor(t *testing.T) {
    store := seededStore(t)
    r := NewScanRecorder(store, nil)

    _, err := r.Record(context.Background(), "LOT-001", Actor{Name: "   "}, ScanContext{})
    assert.ErrorIs(t, err, ErrInvalidActor)

    // Nothing was appended.
    scans, err := store.ListScansByBatch(context.Background(), "LOT-001")
    require.NoError(t, err)
    assert.Empty(t, scans)
}

func TestRecordUnknownBatch(t *testing.T) {
    r := NewScanRecorder(repository.NewMemoryBatchStore(), nil)
    _, err := r.Record(context.Background(), "LOT-404", Actor{Name: "Carol"}, ScanContext{})
    assert.ErrorIs(t, err, repository.ErrBatchNotFound)
}

func TestRecordPublishesEvent(t *testing.T) {
    store := seededStore(t)
    pub := &capturingPublisher{}
    r := NewScanRecorder(store, pub)

    ev, err := r.Record(context.Background(), "LOT-001",
        Actor{Name: "Carol Chen", Role: model.RoleSupplier},
        ScanContext{Location: "Hamburg"})
    require.NoError(t, err)

    require.Len(t, pub.events, 1)
    got := pub.events[0]
    assert.Equal(t, ev.ID, got.ScanID)
    assert.Equal(t, "LOT-001", got.BatchID)
    assert.Equal(t, "Aspirin 100mg", got.BatchName)
    assert.Equal(t, "Acme Pharma", got.ManufacturerName)
    assert.Equal(t, "Hamburg", got.Location)
}

func TestRecordSurvivesPublishFailure(t *testing.T) {
    store := seededStore(t)
    r := NewScanRecorder(store, &capturingPublisher{fail: true})

    ev, err := r.Record(context.Background(), "LOT-001",
        Actor{Name: "Carol Chen"}, ScanContext{})
    require.NoError(t, err)
    assert.NotZero(t, ev.ID)

    scans, err := store.ListScansByBatch(context.Background(), "LOT-001")
    require.NoError(t, err)
    assert.Len(t, scans, 1)
}
