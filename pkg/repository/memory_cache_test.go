package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpires(t *testing.T) {
	clock := t0
	c := NewMemoryCache(time.Minute).WithClock(func() time.Time { return clock })
	ctx := context.Background()

	require.NoError(t, c.StoreIf(ctx, "order:A", 0, map[string]string{"status": "new"}))
	var got map[string]string
	require.NoError(t, c.Load(ctx, "order:A", &got))
	assert.Equal(t, "new", got["status"])

	clock = t0.Add(59 * time.Second)
	assert.True(t, c.Has("order:A"))

	clock = t0.Add(time.Minute)
	assert.False(t, c.Has("order:A"))
	assert.ErrorIs(t, c.Load(ctx, "order:A", &got), ErrCacheMiss)
}

func TestMemoryCacheStoreIfLosesToInvalidate(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()

	v, err := c.Version(ctx, "order:A")
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, c.Invalidate(ctx, "order:A"))
	require.NoError(t, c.StoreIf(ctx, "order:A", v, "stale"))
	assert.False(t, c.Has("order:A"))

	v, err = c.Version(ctx, "order:A")
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
	require.NoError(t, c.StoreIf(ctx, "order:A", v, "fresh"))
	var got string
	require.NoError(t, c.Load(ctx, "order:A", &got))
	assert.Equal(t, "fresh", got)
}
