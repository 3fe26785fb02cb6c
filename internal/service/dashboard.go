package service

import (
    "context"
    "database/sql"
    "errors"
    "sort"
    "time"

    "github.com/scanchain/scanchain/internal/model"
    "github.com/scanchain/scanchain/internal/repository"
)

// UserDirectory resolves user ids to user records. The MySQL user
// repository implements it; tests use a fake.
type UserDirectory interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// EnrichedScan is a scan event annotated with batch context. The
// enrichment fields stay empty when the scan references a batch that no
// longer resolves; the scan itself is never dropped.
type EnrichedScan struct {
    model.ScanEvent
    BatchName        string `json:"batch_name,omitempty"`
    ManufacturerName string `json:"manufacturer_name,omitempty"`
}

// ScannedBatch is a batch a supplier or viewer has interacted with,
// annotated with their scan activity against it.
type ScannedBatch struct {
    model.Batch
    LastScanned time.Time `json:"last_scanned"`
    ScanCount   int       `json:"scan_count"`
}

// ManufacturerView summarizes a manufacturer's registered batches and
// who scanned them.
type ManufacturerView struct {
    TotalBatches   int            `json:"total_batches"`
    TotalScans     int            `json:"total_scans"`
    TotalSuppliers int            `json:"total_suppliers"`
    Batches        []model.Batch  `json:"batches"`
    RecentScans    []EnrichedScan `json:"recent_scans"`
    SupplierList   []string       `json:"supplier_list"`
    AllScans       []EnrichedScan `json:"all_scans"`
}

// SupplierView summarizes batches a supplier has scanned. The viewer
// variant shares the shape; only the semantics ("batches I viewed")
// differ.
type SupplierView struct {
    TotalScans         int            `json:"total_scans"`
    TotalBatches       int            `json:"total_batches"`
    TotalManufacturers int            `json:"total_manufacturers"`
    ScannedBatches     []ScannedBatch `json:"scanned_batches"`
    RecentScans        []EnrichedScan `json:"recent_scans"`
    ManufacturerList   []string       `json:"manufacturer_list"`
    AllScans           []EnrichedScan `json:"all_scans"`
}

// Dashboard is the role-scoped read view for one user. Role decides
// which exactly-one view pointer is set; the role set is closed.
type Dashboard struct {
    UserID       uint64            `json:"user_id"`
    UserName     string            `json:"user_name"`
    Role         string            `json:"role"`
    Manufacturer *ManufacturerView `json:"manufacturer,omitempty"`
    Supplier     *SupplierView     `json:"supplier,omitempty"`
    Viewer       *SupplierView     `json:"viewer,omitempty"`
}

// recentScanLimit caps the recent-scans list on every view.
const recentScanLimit = 10

// DashboardAggregator derives role views by joining batches, scan
// events and user identity. It is read-only and tolerates a slightly
// stale cross-batch snapshot, but never a torn single batch.
type DashboardAggregator struct {
    Batches repository.BatchStore
    Users   UserDirectory
}

// NewDashboardAggregator builds an aggregator over the given stores.
func NewDashboardAggregator(batches repository.BatchStore, users UserDirectory) *DashboardAggregator {
    return &DashboardAggregator{Batches: batches, Users: users}
}

// Dashboard resolves the user once and dispatches on their role.
func (a *DashboardAggregator) Dashboard(ctx context.Context, userID uint64) (Dashboard, error) {
    u, err := a.Users.GetByID(ctx, userID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return Dashboard{}, ErrUserNotFound
        }
        return Dashboard{}, err
    }

    d := Dashboard{UserID: u.ID, UserName: u.FullName, Role: u.Role}
    switch u.Role {
    case model.RoleManufacturer:
        view, err := a.manufacturerView(ctx, u)
        if err != nil {
            return Dashboard{}, err
        }
        d.Manufacturer = view
    case model.RoleSupplier:
        view, err := a.actorView(ctx, u)
        if err != nil {
            return Dashboard{}, err
        }
        d.Supplier = view
    default:
        // Generic users (and admins browsing their own activity) get
        // the "batches I viewed" shape.
        view, err := a.actorView(ctx, u)
        if err != nil {
            return Dashboard{}, err
        }
        d.Viewer = view
    }
    return d, nil
}

// manufacturerView joins the user's batches with every scan recorded
// against them.
func (a *DashboardAggregator) manufacturerView(ctx context.Context, u model.User) (*ManufacturerView, error) {
    batches, err := a.Batches.ListBatchesByOwner(ctx, u.ID)
    if err != nil {
        return nil, err
    }

    all := make([]EnrichedScan, 0)
    suppliers := make(map[string]struct{})
    for _, b := range batches {
        scans, err := a.Batches.ListScansByBatch(ctx, b.BatchID)
        if err != nil {
            if errors.Is(err, repository.ErrBatchNotFound) {
                continue // revoked/raced away between the two reads
            }
            return nil, err
        }
        for _, s := range scans {
            all = append(all, EnrichedScan{
                ScanEvent:        s,
                BatchName:        b.BatchName,
                ManufacturerName: b.ManufacturerName,
            })
            if s.ActorName != "" {
                suppliers[s.ActorName] = struct{}{}
            }
        }
    }
    sortScansNewestFirst(all)

    return &ManufacturerView{
        TotalBatches:   len(batches),
        TotalScans:     len(all),
        TotalSuppliers: len(suppliers),
        Batches:        batches,
        RecentScans:    head(all, recentScanLimit),
        SupplierList:   keys(suppliers),
        AllScans:       all,
    }, nil
}

// actorView collects the scans attributed to the user and derives the
// distinct batches they touched. Orphaned scans keep their row with
// empty enrichment.
func (a *DashboardAggregator) actorView(ctx context.Context, u model.User) (*SupplierView, error) {
    scans, err := a.Batches.ListScansByActor(ctx, u.ID, u.FullName)
    if err != nil {
        return nil, err
    }

    enriched := make([]EnrichedScan, 0, len(scans))
    manufacturers := make(map[string]struct{})
    perBatch := make(map[string]*ScannedBatch)
    batchOrder := make([]string, 0)

    for _, s := range scans {
        es := EnrichedScan{ScanEvent: s}
        b, err := a.Batches.GetBatch(ctx, s.BatchID)
        switch {
        case err == nil:
            es.BatchName = b.BatchName
            es.ManufacturerName = b.ManufacturerName
            manufacturers[b.ManufacturerName] = struct{}{}
            sb, ok := perBatch[s.BatchID]
            if !ok {
                sb = &ScannedBatch{Batch: b}
                perBatch[s.BatchID] = sb
                batchOrder = append(batchOrder, s.BatchID)
            }
            sb.ScanCount++
            if s.Timestamp.After(sb.LastScanned) {
                sb.LastScanned = s.Timestamp
            }
        case errors.Is(err, repository.ErrBatchNotFound):
            // Orphaned scan: keep the row, omit enrichment.
        default:
            return nil, err
        }
        enriched = append(enriched, es)
    }
    sortScansNewestFirst(enriched)

    batches := make([]ScannedBatch, 0, len(batchOrder))
    for _, id := range batchOrder {
        batches = append(batches, *perBatch[id])
    }

    return &SupplierView{
        TotalScans:         len(enriched),
        TotalBatches:       len(batches),
        TotalManufacturers: len(manufacturers),
        ScannedBatches:     batches,
        RecentScans:        head(enriched, recentScanLimit),
        ManufacturerList:   keys(manufacturers),
        AllScans:           enriched,
    }, nil
}

// sortScansNewestFirst orders by timestamp descending. The input is in
// store append order, so the stable sort keeps insertion order on ties.
func sortScansNewestFirst(scans []EnrichedScan) {
    sort.SliceStable(scans, func(i, j int) bool {
        return scans[i].Timestamp.After(scans[j].Timestamp)
    })
}

func head(scans []EnrichedScan, n int) []EnrichedScan {
    if len(scans) <= n {
        out := make([]EnrichedScan, len(scans))
        copy(out, scans)
        return out
    }
    out := make([]EnrichedScan, n)
    copy(out, scans[:n])
    return out
}

func keys(set map[string]struct{}) []string {
    out := make([]string, 0, len(set))
    for k := range set {
        out = append(out, k)
    }
    sort.Strings(out)
    return out
}
