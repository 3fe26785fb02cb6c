package service

import (
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestEncodeQRPayloadFillsDefaults(t *testing.T) {
    s, err := EncodeQRPayload(QRPayload{
        BatchID:      "LOT-001",
        ContentHash:  "deadbeef",
        LedgerRef:    "0x1",
        Manufacturer: "Acme Pharma",
    })
    require.NoError(t, err)

    p, err := DecodeQRPayload(s)
    require.NoError(t, err)
    assert.Equal(t, "LOT-001", p.BatchID)
    assert.Equal(t, "1.0", p.Version)
    assert.NotEmpty(t, p.IssuedAt)
}

func TestDecodeQRPayloadRejectsGarbage(t *testing.T) {
    _, err := DecodeQRPayload("not json at all")
    assert.Error(t, err)
}

func TestRenderQRPNG(t *testing.T) {
    s, err := EncodeQRPayload(QRPayload{BatchID: "LOT-001", ContentHash: "deadbeef"})
    require.NoError(t, err)

    img, err := RenderQRPNG(s)
    require.NoError(t, err)
    // PNG magic bytes.
    require.True(t, len(img) > 8)
    assert.Equal(t, "\x89PNG", string(img[:4]))

    url, err := RenderQRDataURL(s)
    require.NoError(t, err)
    assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}
