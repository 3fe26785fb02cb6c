package ledger

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/url"
    "time"

    "github.com/scanchain/scanchain/internal/utils"
)

// GatewayLedger talks to a ledger gateway that fronts the real chain.
// The gateway exposes POST /anchors and GET /anchors/{batchID} with
// JSON bodies. Every call is bounded by the caller's context plus the
// client timeout; a request that cannot confirm durability surfaces
// ErrAnchorFailed rather than a fake success.
type GatewayLedger struct {
    baseURL string
    client  *http.Client
}

// NewGatewayLedger builds a gateway client. A zero timeout falls back
// to 10 seconds.
func NewGatewayLedger(baseURL string, timeout time.Duration) *GatewayLedger {
    if timeout <= 0 {
        timeout = 10 * time.Second
    }
    return &GatewayLedger{
        baseURL: baseURL,
        client:  &http.Client{Timeout: timeout},
    }
}

type anchorRequest struct {
    BatchID     string `json:"batch_id"`
    ContentHash string `json:"content_hash"`
}

type anchorResponse struct {
    Ref         string `json:"ref"`
    ContentHash string `json:"content_hash"`
}

// Anchor posts the (batchID, hash) pair to the gateway. A 409 means the
// id already carries an entry: the existing hash decides between a safe
// retry (identical pair, return existing ref) and ErrAlreadyAnchored.
func (g *GatewayLedger) Anchor(ctx context.Context, batchID, contentHash string) (string, error) {
    contentHash = utils.NormalizeHash(contentHash)
    body, err := json.Marshal(anchorRequest{BatchID: batchID, ContentHash: contentHash})
    if err != nil {
        return "", err
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/anchors", bytes.NewReader(body))
    if err != nil {
        return "", err
    }
    req.Header.Set("Content-Type", "application/json")

    resp, err := g.client.Do(req)
    if err != nil {
        return "", fmt.Errorf("%w: %v", ErrAnchorFailed, err)
    }
    defer resp.Body.Close()

    switch resp.StatusCode {
    case http.StatusOK, http.StatusCreated:
        var ar anchorResponse
        if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
            return "", fmt.Errorf("%w: decode response: %v", ErrAnchorFailed, err)
        }
        if ar.Ref == "" {
            return "", fmt.Errorf("%w: gateway confirmed no ref", ErrAnchorFailed)
        }
        return ar.Ref, nil
    case http.StatusConflict:
        var ar anchorResponse
        if err := json.NewDecoder(resp.Body).Decode(&ar); err == nil &&
            utils.NormalizeHash(ar.ContentHash) == contentHash && ar.Ref != "" {
            return ar.Ref, nil // our own earlier anchor; retry is safe
        }
        return "", ErrAlreadyAnchored
    default:
        return "", fmt.Errorf("%w: gateway returned %d", ErrAnchorFailed, resp.StatusCode)
    }
}

// Lookup fetches the anchored hash for the batch id. A 404 maps to
// ErrNotAnchored.
func (g *GatewayLedger) Lookup(ctx context.Context, batchID string) (string, error) {
    u := g.baseURL + "/anchors/" + url.PathEscape(batchID)
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
    if err != nil {
        return "", err
    }
    resp, err := g.client.Do(req)
    if err != nil {
        return "", fmt.Errorf("ledger lookup: %w", err)
    }
    defer resp.Body.Close()

    switch resp.StatusCode {
    case http.StatusOK:
        var ar anchorResponse
        if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
            return "", fmt.Errorf("ledger lookup: decode response: %w", err)
        }
        return utils.NormalizeHash(ar.ContentHash), nil
    case http.StatusNotFound:
        return "", ErrNotAnchored
    default:
        return "", fmt.Errorf("ledger lookup: gateway returned %d", resp.StatusCode)
    }
}
