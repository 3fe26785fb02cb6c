package blob

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
    s := NewMemoryStore()
    ctx := context.Background()

    uri, err := s.Put(ctx, []byte("certificate"), "application/pdf")
    require.NoError(t, err)
    assert.Contains(t, uri, "mem://")

    got, err := s.Get(ctx, uri)
    require.NoError(t, err)
    assert.Equal(t, []byte("certificate"), got)
}

func TestMemoryStoreContentAddressed(t *testing.T) {
    s := NewMemoryStore()
    ctx := context.Background()

    a, err := s.Put(ctx, []byte("same bytes"), "")
    require.NoError(t, err)
    b, err := s.Put(ctx, []byte("same bytes"), "")
    require.NoError(t, err)
    assert.Equal(t, a, b)

    c, err := s.Put(ctx, []byte("other bytes"), "")
    require.NoError(t, err)
    assert.NotEqual(t, a, c)
}

func TestMemoryStoreGetCopies(t *testing.T) {
    s := NewMemoryStore()
    ctx := context.Background()

    uri, err := s.Put(ctx, []byte("original"), "")
    require.NoError(t, err)

    got, _ := s.Get(ctx, uri)
    got[0] = 'X' // mutating the returned slice must not corrupt the store

    again, err := s.Get(ctx, uri)
    require.NoError(t, err)
    assert.Equal(t, []byte("original"), again)
}

func TestMemoryStoreMissing(t *testing.T) {
    s := NewMemoryStore()
    _, err := s.Get(context.Background(), "mem://nope")
    assert.ErrorIs(t, err, ErrNotFound)
}
