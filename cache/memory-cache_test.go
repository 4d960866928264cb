package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("f"), 0))

	value, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = c.Get(ctx, "forever")
	assert.True(t, ok)

	_, ok, _ = c.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestMemoryCache_SetCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	value, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), value)
}

func TestMemoryCache_Generations(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	g1, err := c.Generation(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "0.0", g1)

	require.NoError(t, c.Bump(ctx, "d1"))
	g1, _ = c.Generation(ctx, "d1")
	g2, _ := c.Generation(ctx, "d2")
	assert.Equal(t, "1.0", g1)
	assert.Equal(t, "0.0", g2)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Bump(ctx, ""))
	g1, _ = c.Generation(ctx, "d1")
	g2, _ = c.Generation(ctx, "d2")
	assert.Equal(t, "1.1", g1)
	assert.Equal(t, "0.1", g2)

	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestCounterValue(t *testing.T) {
	assert.Equal(t, "7", counterValue("7"))
	assert.Equal(t, "0", counterValue(nil))
	assert.Equal(t, "3.0", generationToken("3", "0"))
}
