package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	ctx := context.Background()

	_, ok, err := c.Get(ctx, "pricerec:1:range")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "pricerec:1:range", []byte(`{"min":100,"mid":150,"max":200}`), time.Minute))

	b, ok, err := c.Get(ctx, "pricerec:1:range")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`{"min":100,"mid":150,"max":200}`), b)

	// Entries land under the service namespace on the shared instance.
	raw, err := mr.Get("quotedesk:pricerec:1:range")
	require.NoError(t, err)
	require.Equal(t, `{"min":100,"mid":150,"max":200}`, raw)
}

func TestRateLimiter_AllowPerMinute(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr())

	ctx := context.Background()
	at := time.Date(2026, 3, 10, 9, 0, 30, 0, time.UTC)

	ok, n, err := rl.AllowPerMinute(ctx, "pricing", 2, at)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	ok, n, _ = rl.AllowPerMinute(ctx, "pricing", 2, at)
	require.True(t, ok)
	require.Equal(t, int64(2), n)

	ok, n, _ = rl.AllowPerMinute(ctx, "pricing", 2, at)
	require.False(t, ok)
	require.Equal(t, int64(3), n)

	// The next minute is a fresh bucket.
	ok, n, _ = rl.AllowPerMinute(ctx, "pricing", 2, at.Add(time.Minute))
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	// Operations count independently.
	ok, n, _ = rl.AllowPerMinute(ctx, "geocoding", 2, at)
	require.True(t, ok)
	require.Equal(t, int64(1), n)
}
