package ledger

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestMockLedgerAnchorAndLookup(t *testing.T) {
    m := NewMockLedger()
    ctx := context.Background()

    ref, err := m.Anchor(ctx, "LOT-001", "aa11")
    require.NoError(t, err)
    assert.NotEmpty(t, ref)
    assert.Contains(t, ref, "0x")

    hash, err := m.Lookup(ctx, "LOT-001")
    require.NoError(t, err)
    assert.Equal(t, "aa11", hash)
}

func TestMockLedgerIdempotentReAnchor(t *testing.T) {
    m := NewMockLedger()
    ctx := context.Background()

    ref1, err := m.Anchor(ctx, "LOT-001", "aa11")
    require.NoError(t, err)
    ref2, err := m.Anchor(ctx, "LOT-001", "AA11") // hash comparison is case-insensitive
    require.NoError(t, err)
    assert.Equal(t, ref1, ref2)
}

func TestMockLedgerConflictingHashRejected(t *testing.T) {
    m := NewMockLedger()
    ctx := context.Background()

    _, err := m.Anchor(ctx, "LOT-001", "aa11")
    require.NoError(t, err)

    _, err = m.Anchor(ctx, "LOT-001", "bb22")
    assert.ErrorIs(t, err, ErrAlreadyAnchored)

    // The original entry survives the rejected attempt.
    hash, err := m.Lookup(ctx, "LOT-001")
    require.NoError(t, err)
    assert.Equal(t, "aa11", hash)
}

func TestMockLedgerLookupUnknown(t *testing.T) {
    m := NewMockLedger()
    _, err := m.Lookup(context.Background(), "LOT-404")
    assert.ErrorIs(t, err, ErrNotAnchored)
}
