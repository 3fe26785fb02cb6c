// Package queue defines message payloads exchanged over the message broker.
package queue

// ScanRecordedEvent is published when a scan event is successfully
// appended to a batch's log. It carries enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary database.
type ScanRecordedEvent struct {
    ScanID           uint64 `json:"scan_id"`
    BatchID          string `json:"batch_id"`
    BatchName        string `json:"batch_name"`
    ManufacturerName string `json:"manufacturer_name"`
    ActorID          uint64 `json:"actor_id,omitempty"`
    ActorName        string `json:"actor_name"`
    ActorRole        string `json:"actor_role"`
    Location         string `json:"location"`
    IPAddress        string `json:"ip_address,omitempty"`
    ScannedAt        string `json:"scanned_at"`
}
