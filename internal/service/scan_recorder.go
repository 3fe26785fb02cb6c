package service

import (
    "context"
    "log"
    "strings"
    "time"

    "github.com/scanchain/scanchain/internal/model"
    "github.com/scanchain/scanchain/internal/queue"
    "github.com/scanchain/scanchain/internal/repository"
)

// Actor identifies who performed a scan. The stable user id is carried
// through so dashboards can join on it instead of the display name.
type Actor struct {
    ID   *uint64
    Name string
    Role string
}

// ScanContext carries request-scoped scan metadata. There is no client
// timestamp field on purpose: timestamps are stamped server-side.
type ScanContext struct {
    Location  string
    IPAddress string
    UserAgent string
}

// EventPublisher pushes domain events to the message broker. Publishing
// is best-effort; a broker outage never fails the scan.
type EventPublisher interface {
    PublishScanRecorded(ctx context.Context, ev queue.ScanRecordedEvent) error
}

// ScanRecorder validates and appends scan events.
type ScanRecorder struct {
    Batches   repository.BatchStore
    Publisher EventPublisher // optional
}

// NewScanRecorder builds a recorder. publisher may be nil.
func NewScanRecorder(batches repository.BatchStore, publisher EventPublisher) *ScanRecorder {
    return &ScanRecorder{Batches: batches, Publisher: publisher}
}

// Record validates the batch and actor, stamps a server-side UTC
// timestamp and appends the event through the store. Past events are
// never touched.
func (r *ScanRecorder) Record(ctx context.Context, batchID string, actor Actor, sc ScanContext) (model.ScanEvent, error) {
    if strings.TrimSpace(actor.Name) == "" {
        return model.ScanEvent{}, ErrInvalidActor
    }
    batch, err := r.Batches.GetBatch(ctx, batchID)
    if err != nil {
        return model.ScanEvent{}, err
    }

    location := strings.TrimSpace(sc.Location)
    if location == "" {
        location = "Unknown"
    }
    ev := model.ScanEvent{
        BatchID:   batchID,
        ActorID:   actor.ID,
        ActorName: strings.TrimSpace(actor.Name),
        ActorRole: actor.Role,
        Location:  location,
        IPAddress: sc.IPAddress,
        UserAgent: sc.UserAgent,
        Timestamp: time.Now().UTC(),
    }
    if err := r.Batches.AppendScan(ctx, batchID, &ev); err != nil {
        return model.ScanEvent{}, err
    }

    if r.Publisher != nil {
        pubEv := queue.ScanRecordedEvent{
            ScanID:           ev.ID,
            BatchID:          batchID,
            BatchName:        batch.BatchName,
            ManufacturerName: batch.ManufacturerName,
            ActorName:        ev.ActorName,
            ActorRole:        ev.ActorRole,
            Location:         ev.Location,
            IPAddress:        ev.IPAddress,
            ScannedAt:        ev.Timestamp.Format(time.RFC3339),
        }
        if ev.ActorID != nil {
            pubEv.ActorID = *ev.ActorID
        }
        if err := r.Publisher.PublishScanRecorded(ctx, pubEv); err != nil {
            log.Printf("scan-recorder: publish scan.recorded failed: %v", err)
        }
    }
    return ev, nil
}
