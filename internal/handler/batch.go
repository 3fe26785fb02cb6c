package handler

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/scanchain/scanchain/internal/config"
    "github.com/scanchain/scanchain/internal/model"
    "github.com/scanchain/scanchain/internal/repository"
    "github.com/scanchain/scanchain/internal/service"
)

// BatchHandler serves batch registration and lifecycle endpoints.
type BatchHandler struct {
    Cfg          config.Config
    Orchestrator *service.Orchestrator
    Batches      repository.BatchStore
    Users        *repository.UserRepo
}

func NewBatchHandler(cfg config.Config, o *service.Orchestrator, batches repository.BatchStore, users *repository.UserRepo) *BatchHandler {
    return &BatchHandler{Cfg: cfg, Orchestrator: o, Batches: batches, Users: users}
}

type registerResp struct {
    Batch     model.Batch `json:"batch"`
    QRPayload string      `json:"qr_payload"`
    QRImage   string      `json:"qr_image"` // base64 PNG data URL
}

// Register accepts a multipart upload (field "file") plus batch
// metadata form fields and runs the full registration workflow:
// hash, store, anchor, persist, issue QR.
func (h *BatchHandler) Register(c echo.Context) error {
    uid, _, ok := currentUser(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    fh, err := c.FormFile("file")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
    }
    if fh.Size > h.Cfg.MaxUploadBytes {
        return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{
            "error": fmt.Sprintf("file exceeds %d byte limit", h.Cfg.MaxUploadBytes),
        })
    }
    src, err := fh.Open()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read file"})
    }
    defer src.Close()
    // LimitReader guards against a lying Content-Length.
    data, err := io.ReadAll(io.LimitReader(src, h.Cfg.MaxUploadBytes+1))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read file"})
    }
    if int64(len(data)) > h.Cfg.MaxUploadBytes {
        return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{
            "error": fmt.Sprintf("file exceeds %d byte limit", h.Cfg.MaxUploadBytes),
        })
    }
    if len(data) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "empty file"})
    }

    batchID := strings.TrimSpace(c.FormValue("batch_id"))
    if batchID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "batch_id required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    manufacturer := strings.TrimSpace(c.FormValue("manufacturer_name"))
    if manufacturer == "" {
        if u, err := h.Users.GetByID(ctx, uid); err == nil {
            if u.CompanyName != "" {
                manufacturer = u.CompanyName
            } else {
                manufacturer = u.FullName
            }
        }
    }

    res, err := h.Orchestrator.Register(ctx, service.RegisterInput{
        BatchID:          batchID,
        OwnerUserID:      uid,
        ManufacturerName: manufacturer,
        BatchName:        strings.TrimSpace(c.FormValue("batch_name")),
        ProductType:      strings.TrimSpace(c.FormValue("product_type")),
        Description:      strings.TrimSpace(c.FormValue("description")),
        FileName:         fh.Filename,
        MimeType:         fh.Header.Get("Content-Type"),
        Data:             data,
    })
    if err != nil {
        switch {
        case errors.Is(err, service.ErrInvalidInput):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "batch_id and file required"})
        case errors.Is(err, repository.ErrDuplicateBatch):
            return c.JSON(http.StatusConflict, echo.Map{"error": "batch id already registered"})
        default:
            return c.JSON(http.StatusBadGateway, echo.Map{"error": "registration failed"})
        }
    }

    img, err := service.RenderQRDataURL(res.QRPayload)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render qr failed"})
    }
    return c.JSON(http.StatusCreated, registerResp{Batch: res.Batch, QRPayload: res.QRPayload, QRImage: img})
}

// Get returns a single batch record.
func (h *BatchHandler) Get(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.Batches.GetBatch(ctx, c.Param("id"))
    if err != nil {
        if errors.Is(err, repository.ErrBatchNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "batch not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, b)
}

// ListMine returns the caller's registered batches, newest first.
func (h *BatchHandler) ListMine(c echo.Context) error {
    uid, _, ok := currentUser(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    batches, err := h.Batches.ListBatchesByOwner(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"batches": batches, "count": len(batches)})
}

// Revoke flips a batch to revoked. Only the owner or an admin may do
// it; the record stays readable afterwards.
func (h *BatchHandler) Revoke(c echo.Context) error {
    uid, role, ok := currentUser(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id := c.Param("id")
    b, err := h.Batches.GetBatch(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrBatchNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "batch not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if b.OwnerUserID != uid && role != model.RoleAdmin {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    if err := h.Batches.RevokeBatch(ctx, id); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"batch_id": id, "status": model.BatchRevoked})
}

// QR re-issues the QR payload for an existing batch and returns it with
// an embedded PNG data URL. Re-issuing never re-anchors; the payload is
// rebuilt from the persisted record.
func (h *BatchHandler) QR(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    payload, b, err := h.qrPayloadFor(ctx, c.Param("id"))
    if err != nil {
        return h.qrError(c, err)
    }
    img, err := service.RenderQRDataURL(payload)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render qr failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "batch_id":   b.BatchID,
        "qr_payload": payload,
        "qr_image":   img,
    })
}

// QRDownload streams the QR code as a PNG attachment.
func (h *BatchHandler) QRDownload(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    payload, b, err := h.qrPayloadFor(ctx, c.Param("id"))
    if err != nil {
        return h.qrError(c, err)
    }
    img, err := service.RenderQRPNG(payload)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render qr failed"})
    }
    c.Response().Header().Set(echo.HeaderContentDisposition,
        fmt.Sprintf(`attachment; filename="qr_%s.png"`, b.BatchID))
    return c.Blob(http.StatusOK, "image/png", img)
}

func (h *BatchHandler) qrPayloadFor(ctx context.Context, batchID string) (string, model.Batch, error) {
    b, err := h.Batches.GetBatch(ctx, batchID)
    if err != nil {
        return "", model.Batch{}, err
    }
    payload, err := service.EncodeQRPayload(service.QRPayload{
        BatchID:      b.BatchID,
        ContentHash:  b.ContentHash,
        LedgerRef:    b.LedgerTxRef,
        Manufacturer: b.ManufacturerName,
        BatchName:    b.BatchName,
        ProductType:  b.ProductType,
        IssuedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
    })
    if err != nil {
        return "", model.Batch{}, err
    }
    return payload, b, nil
}

func (h *BatchHandler) qrError(c echo.Context, err error) error {
    if errors.Is(err, repository.ErrBatchNotFound) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "batch not found"})
    }
    if errors.Is(err, sql.ErrNoRows) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "batch not found"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "qr failed"})
}
