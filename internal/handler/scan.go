package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/scanchain/scanchain/internal/repository"
    "github.com/scanchain/scanchain/internal/service"
)

// ScanHandler serves scan recording and scan detail endpoints.
type ScanHandler struct {
    Recorder *service.ScanRecorder
    Batches  repository.BatchStore
    Users    *repository.UserRepo
}

func NewScanHandler(r *service.ScanRecorder, batches repository.BatchStore, users *repository.UserRepo) *ScanHandler {
    return &ScanHandler{Recorder: r, Batches: batches, Users: users}
}

type scanReq struct {
    // Either a raw QR payload captured by the scanner or an explicit
    // batch id. QRData wins when both are present.
    QRData   string `json:"qr_data"`
    BatchID  string `json:"batch_id"`
    Location string `json:"location"`
}

// Record appends a scan event to a batch's log. The actor identity
// comes from the JWT, never from the request body, and the timestamp
// is stamped server-side.
func (h *ScanHandler) Record(c echo.Context) error {
    uid, role, ok := currentUser(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var req scanReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    batchID := strings.TrimSpace(req.BatchID)
    if qr := strings.TrimSpace(req.QRData); qr != "" {
        payload, err := service.DecodeQRPayload(qr)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable qr payload"})
        }
        batchID = strings.TrimSpace(payload.BatchID)
    }
    if batchID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_data or batch_id required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }

    actorID := uid
    ev, err := h.Recorder.Record(ctx, batchID,
        service.Actor{ID: &actorID, Name: u.FullName, Role: role},
        service.ScanContext{
            Location:  req.Location,
            IPAddress: c.RealIP(),
            UserAgent: c.Request().UserAgent(),
        })
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrBatchNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "batch not found"})
        case errors.Is(err, service.ErrInvalidActor):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid actor"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record scan failed"})
        }
    }
    return c.JSON(http.StatusCreated, ev)
}

// Get returns a single scan event with its batch context attached when
// the batch still resolves.
func (h *ScanHandler) Get(c echo.Context) error {
    scanID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid scan id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ev, err := h.Batches.GetScan(ctx, scanID)
    if err != nil {
        if errors.Is(err, repository.ErrScanNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "scan not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    enriched := service.EnrichedScan{ScanEvent: ev}
    if b, err := h.Batches.GetBatch(ctx, ev.BatchID); err == nil {
        enriched.BatchName = b.BatchName
        enriched.ManufacturerName = b.ManufacturerName
    }
    return c.JSON(http.StatusOK, enriched)
}

// ListAll returns every scan event across all batches. Admin only.
func (h *ScanHandler) ListAll(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    scans, err := h.Batches.ListAllScans(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"scans": scans, "count": len(scans)})
}

// ListByBatch returns a batch's full scan log in append order.
func (h *ScanHandler) ListByBatch(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id := c.Param("id")
    if _, err := h.Batches.GetBatch(ctx, id); err != nil {
        if errors.Is(err, repository.ErrBatchNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "batch not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    scans, err := h.Batches.ListScansByBatch(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"batch_id": id, "scans": scans, "count": len(scans)})
}
