package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/scanchain/scanchain/internal/blob"
    "github.com/scanchain/scanchain/internal/ledger"
    "github.com/scanchain/scanchain/internal/model"
    "github.com/scanchain/scanchain/internal/repository"
    "github.com/scanchain/scanchain/internal/service"
    "github.com/scanchain/scanchain/internal/utils"
)

func verifyFixture(t *testing.T) *VerifyHandler {
    t.Helper()
    ctx := context.Background()

    store := repository.NewMemoryBatchStore()
    mock := ledger.NewMockLedger()
    blobs := blob.NewMemoryStore()

    data := []byte("certificate of analysis")
    hash := utils.ContentHash(data)
    uri, err := blobs.Put(ctx, data, "application/pdf")
    require.NoError(t, err)
    ref, err := mock.Anchor(ctx, "LOT-001", hash)
    require.NoError(t, err)
    require.NoError(t, store.CreateBatch(ctx, &model.Batch{
        BatchID:     "LOT-001",
        ContentHash: hash,
        BlobURI:     uri,
        LedgerTxRef: ref,
    }))

    return NewVerifyHandler(service.NewVerificationEngine(mock, blobs), store)
}

func doVerify(t *testing.T, h *VerifyHandler, body string) (int, map[string]any) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/verify", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    require.NoError(t, h.Verify(e.NewContext(req, rec)))

    var out map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
    return rec.Code, out
}

func TestVerifyEndpointByBatchID(t *testing.T) {
    h := verifyFixture(t)
    code, out := doVerify(t, h, `{"batch_id":"LOT-001"}`)
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, true, out["is_verified"])
    assert.Equal(t, true, out["verified_against_source"])
}

func TestVerifyEndpointByQRPayload(t *testing.T) {
    h := verifyFixture(t)
    payload, err := service.EncodeQRPayload(service.QRPayload{BatchID: "LOT-001"})
    require.NoError(t, err)
    body, err := json.Marshal(map[string]string{"qr_data": payload})
    require.NoError(t, err)

    code, out := doVerify(t, h, string(body))
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, true, out["is_verified"])
}

func TestVerifyEndpointUnknownBatch(t *testing.T) {
    h := verifyFixture(t)
    code, out := doVerify(t, h, `{"batch_id":"LOT-404"}`)
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, false, out["is_verified"])
    assert.Equal(t, "not_anchored", out["reason"])
}

func TestVerifyEndpointRevokedBatchFails(t *testing.T) {
    h := verifyFixture(t)
    require.NoError(t, h.Batches.RevokeBatch(context.Background(), "LOT-001"))

    code, out := doVerify(t, h, `{"batch_id":"LOT-001"}`)
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, false, out["is_verified"])
    assert.Equal(t, "revoked", out["reason"])
    assert.Equal(t, model.BatchRevoked, out["batch_status"])
}

func TestVerifyEndpointMissingInput(t *testing.T) {
    h := verifyFixture(t)
    code, _ := doVerify(t, h, `{}`)
    assert.Equal(t, http.StatusBadRequest, code)
}
