package blob

import (
    "bytes"
    "context"
    "crypto/sha256"
    "encoding/hex"
    "fmt"
    "io"
    "net/http"
    "time"
)

// BucketStore talks to an object bucket over HTTP. Objects are written
// with PUT {base}/objects/{name} and read back from the URI the write
// returned. Object names are content-addressed so a retried upload of
// the same bytes is idempotent.
type BucketStore struct {
    baseURL string
    client  *http.Client
}

// NewBucketStore builds a bucket client. A zero timeout falls back to
// 30 seconds; uploads can be large.
func NewBucketStore(baseURL string, timeout time.Duration) *BucketStore {
    if timeout <= 0 {
        timeout = 30 * time.Second
    }
    return &BucketStore{
        baseURL: baseURL,
        client:  &http.Client{Timeout: timeout},
    }
}

// Put uploads the bytes and returns the object URI.
func (s *BucketStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
    sum := sha256.Sum256(data)
    uri := fmt.Sprintf("%s/objects/%s", s.baseURL, hex.EncodeToString(sum[:]))
    req, err := http.NewRequestWithContext(ctx, http.MethodPut, uri, bytes.NewReader(data))
    if err != nil {
        return "", err
    }
    if contentType == "" {
        contentType = "application/octet-stream"
    }
    req.Header.Set("Content-Type", contentType)

    resp, err := s.client.Do(req)
    if err != nil {
        return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
        return "", fmt.Errorf("%w: bucket returned %d", ErrUnavailable, resp.StatusCode)
    }
    return uri, nil
}

// Get downloads the object at the URI.
func (s *BucketStore) Get(ctx context.Context, uri string) ([]byte, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
    if err != nil {
        return nil, err
    }
    resp, err := s.client.Do(req)
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
    }
    defer resp.Body.Close()
    switch resp.StatusCode {
    case http.StatusOK:
        return io.ReadAll(resp.Body)
    case http.StatusNotFound:
        return nil, ErrNotFound
    default:
        return nil, fmt.Errorf("%w: bucket returned %d", ErrUnavailable, resp.StatusCode)
    }
}
