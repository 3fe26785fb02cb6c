package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/scanchain/scanchain/internal/model"
    "github.com/scanchain/scanchain/internal/repository"
    "github.com/scanchain/scanchain/internal/service"
)

// VerifyHandler serves document verification.
type VerifyHandler struct {
    Engine  *service.VerificationEngine
    Batches repository.BatchStore
}

func NewVerifyHandler(e *service.VerificationEngine, batches repository.BatchStore) *VerifyHandler {
    return &VerifyHandler{Engine: e, Batches: batches}
}

type verifyReq struct {
    QRData  string `json:"qr_data"`
    BatchID string `json:"batch_id"`
}

type verifyResp struct {
    service.VerificationResult
    BatchStatus string `json:"batch_status,omitempty"`
}

// Verify re-hashes the stored artifact and compares it against the
// ledger-anchored hash. When the batch record carries no stored
// artifact the result is only a ledger echo and is flagged as such via
// verified_against_source=false.
func (h *VerifyHandler) Verify(c echo.Context) error {
    var req verifyReq
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
    return h.verify(c, batchID)
}

// VerifyByID is the GET variant addressed by batch id.
func (h *VerifyHandler) VerifyByID(c echo.Context) error {
    return h.verify(c, c.Param("id"))
}

func (h *VerifyHandler) verify(c echo.Context, batchID string) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    var blobURI, status string
    b, err := h.Batches.GetBatch(ctx, batchID)
    switch {
    case err == nil:
        blobURI = b.BlobURI
        status = b.Status
    case errors.Is(err, repository.ErrBatchNotFound):
        // No local record: fall through to a ledger-only lookup.
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    res, err := h.Engine.Verify(ctx, batchID, blobURI)
    if err != nil {
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "verification unavailable"})
    }
    if status == model.BatchRevoked {
        // A revoked batch keeps its provenance trail but must not pass.
        res.IsVerified = false
        if res.Reason == "" {
            res.Reason = "revoked"
        }
    }
    return c.JSON(http.StatusOK, verifyResp{VerificationResult: res, BatchStatus: status})
}
