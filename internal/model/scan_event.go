package model

import "time"

// ScanEvent is a timestamped record of an actor inspecting a batch.
// Events are append-only: they are never mutated or deleted once
// recorded.  Timestamps are always stamped server-side; anything a
// client sends is ignored.
//
// Fields:
//  ID        – monotonic identifier assigned by the store.
//  BatchID   – batch that was scanned.
//  ActorID   – stable user id of the scanning actor (null for rows
//              recorded before actor ids were carried through).
//  ActorName – display name of the actor at scan time.
//  ActorRole – role of the actor at scan time.
//  Location  – free-form location reported by the scanner.
//  IPAddress – remote address of the scanning request.
//  UserAgent – user agent of the scanning client.
//  Timestamp – server-side UTC time of the scan.
type ScanEvent struct {
    ID        uint64    `json:"id"`                 // scan_events.id
    BatchID   string    `json:"batch_id"`           // scan_events.batch_id
    ActorID   *uint64   `json:"actor_id,omitempty"` // scan_events.actor_id (nullable)
    ActorName string    `json:"actor_name"`         // scan_events.actor_name
    ActorRole string    `json:"actor_role"`         // scan_events.actor_role
    Location  string    `json:"location"`           // scan_events.location
    IPAddress string    `json:"ip_address"`         // scan_events.ip_address
    UserAgent string    `json:"user_agent"`         // scan_events.user_agent
    Timestamp time.Time `json:"timestamp"`          // scan_events.scanned_at
}
