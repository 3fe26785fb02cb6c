package service

import (
    "bytes"
    "encoding/base64"
    "encoding/json"
    "image/png"
    "time"

    "github.com/boombuler/barcode"
    "github.com/boombuler/barcode/qr"
)

// QRPayload is the JSON document encoded into a batch's QR code. It
// carries enough information for a scanner to identify the batch and
// to verify the document without a prior API call.
type QRPayload struct {
    BatchID      string `json:"productId"`
    ContentHash  string `json:"contentHash"`
    LedgerRef    string `json:"ledgerRef"`
    Manufacturer string `json:"manufacturer"`
    BatchName    string `json:"batchName"`
    ProductType  string `json:"productType"`
    IssuedAt     string `json:"timestamp"`
    Version      string `json:"version"`
}

const qrPayloadVersion = "1.0"

// qrImageSize is the rendered PNG edge length in pixels.
const qrImageSize = 256

// EncodeQRPayload serializes the payload to its canonical JSON form.
func EncodeQRPayload(p QRPayload) (string, error) {
    if p.Version == "" {
        p.Version = qrPayloadVersion
    }
    if p.IssuedAt == "" {
        p.IssuedAt = time.Now().UTC().Format(time.RFC3339)
    }
    b, err := json.Marshal(p)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// DecodeQRPayload parses a scanned payload string.
func DecodeQRPayload(data string) (QRPayload, error) {
    var p QRPayload
    if err := json.Unmarshal([]byte(data), &p); err != nil {
        return QRPayload{}, err
    }
    return p, nil
}

// RenderQRPNG encodes the payload string into a QR code PNG.
func RenderQRPNG(data string) ([]byte, error) {
    code, err := qr.Encode(data, qr.L, qr.Auto)
    if err != nil {
        return nil, err
    }
    code, err = barcode.Scale(code, qrImageSize, qrImageSize)
    if err != nil {
        return nil, err
    }
    var buf bytes.Buffer
    if err := png.Encode(&buf, code); err != nil {
        return nil, err
    }
    return buf.Bytes(), nil
}

// RenderQRDataURL renders the payload as a base64 PNG data URL, the
// form embedded directly in API responses.
func RenderQRDataURL(data string) (string, error) {
    img, err := RenderQRPNG(data)
    if err != nil {
        return "", err
    }
    return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img), nil
}
