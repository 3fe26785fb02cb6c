package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/scanchain/scanchain/internal/model"
)

// MySQLBatchStore is the production record store backed by the
// `batches` and `scan_events` tables. Scan appends run inside a
// transaction that locks the batch row, so two concurrent appends for
// the same batch id serialize instead of losing an event. All
// timestamp columns are stored in UTC.
type MySQLBatchStore struct {
    db *sql.DB
}

// NewMySQLBatchStore returns a store bound to the given database.
func NewMySQLBatchStore(db *sql.DB) *MySQLBatchStore { return &MySQLBatchStore{db: db} }

const batchColumns = `batch_id, owner_user_id, manufacturer_name, batch_name, product_type,
    description, content_hash, blob_uri, ledger_tx_ref, status,
    file_name, file_size, mime_type, created_at, last_activity_at`

// CreateBatch inserts a new batch row. The unique key on batch_id turns
// a duplicate registration into MySQL error 1062, which is mapped to
// ErrDuplicateBatch without touching the existing row.
func (s *MySQLBatchStore) CreateBatch(ctx context.Context, b *model.Batch) error {
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
    const q = `INSERT INTO batches (` + batchColumns + `) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
    _, err := s.db.ExecContext(ctx, q,
        b.BatchID, b.OwnerUserID, b.ManufacturerName, b.BatchName, b.ProductType,
        b.Description, b.ContentHash, b.BlobURI, b.LedgerTxRef, b.Status,
        b.FileName, b.FileSize, b.MimeType, b.CreatedAt, b.LastActivityAt)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrDuplicateBatch
        }
        return err
    }
    return nil
}

// GetBatch fetches a batch by id.
func (s *MySQLBatchStore) GetBatch(ctx context.Context, batchID string) (model.Batch, error) {
    const q = `SELECT ` + batchColumns + ` FROM batches WHERE batch_id=? LIMIT 1`
    b, err := scanBatch(s.db.QueryRowContext(ctx, q, batchID))
    if err == sql.ErrNoRows {
        return model.Batch{}, ErrBatchNotFound
    }
    return b, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanBatch(r rowScanner) (model.Batch, error) {
    var b model.Batch
    err := r.Scan(
        &b.BatchID, &b.OwnerUserID, &b.ManufacturerName, &b.BatchName, &b.ProductType,
        &b.Description, &b.ContentHash, &b.BlobURI, &b.LedgerTxRef, &b.Status,
        &b.FileName, &b.FileSize, &b.MimeType, &b.CreatedAt, &b.LastActivityAt)
    return b, err
}

// AppendScan inserts the scan event and bumps the batch's last activity
// in one transaction. The batch row is locked first so concurrent
// appends for the same batch serialize.
func (s *MySQLBatchStore) AppendScan(ctx context.Context, batchID string, ev *model.ScanEvent) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback() }()

    var exists string
    err = tx.QueryRowContext(ctx,
        `SELECT batch_id FROM batches WHERE batch_id=? FOR UPDATE`, batchID).Scan(&exists)
    if err == sql.ErrNoRows {
        return ErrBatchNotFound
    }
    if err != nil {
        return err
    }

    if ev.Timestamp.IsZero() {
        ev.Timestamp = time.Now().UTC()
    }
    res, err := tx.ExecContext(ctx,
        `INSERT INTO scan_events (batch_id, actor_id, actor_name, actor_role, location, ip_address, user_agent, scanned_at)
         VALUES (?,?,?,?,?,?,?,?)`,
        batchID, ev.ActorID, ev.ActorName, ev.ActorRole, ev.Location, ev.IPAddress, ev.UserAgent, ev.Timestamp)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    ev.ID = uint64(id)
    ev.BatchID = batchID

    if _, err := tx.ExecContext(ctx,
        `UPDATE batches SET last_activity_at=? WHERE batch_id=?`, ev.Timestamp, batchID); err != nil {
        return err
    }
    return tx.Commit()
}

// RevokeBatch flips the batch status to revoked.
func (s *MySQLBatchStore) RevokeBatch(ctx context.Context, batchID string) error {
    res, err := s.db.ExecContext(ctx,
        `UPDATE batches SET status=? WHERE batch_id=?`, model.BatchRevoked, batchID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Either absent or already revoked; distinguish with a lookup.
        if _, err := s.GetBatch(ctx, batchID); err != nil {
            return err
        }
    }
    return nil
}

const scanColumns = `id, batch_id, actor_id, actor_name, actor_role, location, ip_address, user_agent, scanned_at`

// GetScan fetches a single scan event by id.
func (s *MySQLBatchStore) GetScan(ctx context.Context, scanID uint64) (model.ScanEvent, error) {
    const q = `SELECT ` + scanColumns + ` FROM scan_events WHERE id=? LIMIT 1`
    ev, err := scanEvent(s.db.QueryRowContext(ctx, q, scanID))
    if err == sql.ErrNoRows {
        return model.ScanEvent{}, ErrScanNotFound
    }
    return ev, err
}

func scanEvent(r rowScanner) (model.ScanEvent, error) {
    var ev model.ScanEvent
    var actorID sql.NullInt64
    err := r.Scan(&ev.ID, &ev.BatchID, &actorID, &ev.ActorName, &ev.ActorRole,
        &ev.Location, &ev.IPAddress, &ev.UserAgent, &ev.Timestamp)
    if err != nil {
        return model.ScanEvent{}, err
    }
    if actorID.Valid {
        id := uint64(actorID.Int64)
        ev.ActorID = &id
    }
    return ev, nil
}

// ListBatchesByOwner returns the user's batches newest first.
func (s *MySQLBatchStore) ListBatchesByOwner(ctx context.Context, ownerUserID uint64) ([]model.Batch, error) {
    const q = `SELECT ` + batchColumns + ` FROM batches WHERE owner_user_id=? ORDER BY created_at DESC, batch_id`
    rows, err := s.db.QueryContext(ctx, q, ownerUserID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Batch, 0)
    for rows.Next() {
        b, err := scanBatch(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}

// ListScansByBatch returns the batch's scan log in append order.
func (s *MySQLBatchStore) ListScansByBatch(ctx context.Context, batchID string) ([]model.ScanEvent, error) {
    if _, err := s.GetBatch(ctx, batchID); err != nil {
        return nil, err
    }
    const q = `SELECT ` + scanColumns + ` FROM scan_events WHERE batch_id=? ORDER BY id`
    return s.queryScans(ctx, q, batchID)
}

// ListScansByActor matches by actor id when the row carries one and by
// actor name otherwise.
func (s *MySQLBatchStore) ListScansByActor(ctx context.Context, actorID uint64, actorName string) ([]model.ScanEvent, error) {
    const q = `SELECT ` + scanColumns + ` FROM scan_events
        WHERE actor_id=? OR (actor_id IS NULL AND actor_name=?)
        ORDER BY id`
    return s.queryScans(ctx, q, actorID, actorName)
}

// ListAllScans returns every scan event in append order.
func (s *MySQLBatchStore) ListAllScans(ctx context.Context) ([]model.ScanEvent, error) {
    const q = `SELECT ` + scanColumns + ` FROM scan_events ORDER BY id`
    return s.queryScans(ctx, q)
}

func (s *MySQLBatchStore) queryScans(ctx context.Context, q string, args ...any) ([]model.ScanEvent, error) {
    rows, err := s.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.ScanEvent, 0)
    for rows.Next() {
        ev, err := scanEvent(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, ev)
    }
    return out, rows.Err()
}

// Search performs a case-insensitive LIKE match over the selected field.
func (s *MySQLBatchStore) Search(ctx context.Context, query string, field SearchField) ([]model.Batch, error) {
    pat := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
    var cond string
    args := []any{}
    switch field {
    case SearchBatchID:
        cond = "LOWER(batch_id) LIKE ?"
        args = append(args, pat)
    case SearchBatchName:
        cond = "LOWER(batch_name) LIKE ?"
        args = append(args, pat)
    case SearchManufacturer:
        cond = "LOWER(manufacturer_name) LIKE ?"
        args = append(args, pat)
    case SearchProductType:
        cond = "LOWER(product_type) LIKE ?"
        args = append(args, pat)
    default:
        cond = `LOWER(batch_id) LIKE ? OR LOWER(batch_name) LIKE ?
            OR LOWER(manufacturer_name) LIKE ? OR LOWER(product_type) LIKE ?`
        args = append(args, pat, pat, pat, pat)
    }
    q := `SELECT ` + batchColumns + ` FROM batches WHERE ` + cond + ` ORDER BY created_at DESC, batch_id`
    rows, err := s.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Batch, 0)
    for rows.Next() {
        b, err := scanBatch(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}
