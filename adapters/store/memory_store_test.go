package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	val, err := s.GetItem(ctx, "wallet:address")
	require.NoError(t, err)
	assert.Empty(t, val, "missing key reads as empty string")

	require.NoError(t, s.SetItem(ctx, "wallet:address", "addr1"))
	require.NoError(t, s.SetItem(ctx, "wallet:auth_token", "tok1"))

	val, err = s.GetItem(ctx, "wallet:address")
	require.NoError(t, err)
	assert.Equal(t, "addr1", val)

	require.NoError(t, s.RemoveItem(ctx, "wallet:address"))
	val, err = s.GetItem(ctx, "wallet:address")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, s.SetItem(ctx, "wallet:address", "addr1"))
	require.NoError(t, s.MultiRemove(ctx, []string{"wallet:address", "wallet:auth_token"}))

	for _, key := range []string{"wallet:address", "wallet:auth_token"} {
		val, err = s.GetItem(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, val)
	}
}
