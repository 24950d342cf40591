package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
)

func TestStatementKey(t *testing.T) {
	assert.Equal(t, "2024-01-01:2024-01-31:*", StatementKey("2024-01-01", "2024-01-31", ""))
	assert.Equal(t, "2024-01-01:2024-01-31:cus-1", StatementKey("2024-01-01", "2024-01-31", "cus-1"))
}

func TestNoopStatementCacheNeverHits(t *testing.T) {
	var c StatementCache = NoopStatementCache{}
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "owner", "k", 0, &domain.Statement{}, time.Minute))
	_, _, ok, err := c.Get(ctx, "owner", "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx, "owner"))
}

func TestRedisStatementCacheInvalidate(t *testing.T) {
	c := newRedisTestCache(t)
	ctx := context.Background()

	owner := fmt.Sprintf("owner-%d", time.Now().UnixNano())
	key := StatementKey("2024-01-01", "2024-01-31", "")
	statement := &domain.Statement{From: "2024-01-01", To: "2024-01-31", GrandTotal: decimal.NewFromInt(150)}

	_, gen, ok, err := c.Get(ctx, owner, key)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Set(ctx, owner, key, gen, statement, time.Minute))
	got, _, ok, err := c.Get(ctx, owner, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.GrandTotal.Equal(decimal.NewFromInt(150)))

	require.NoError(t, c.Invalidate(ctx, owner))
	_, _, ok, err = c.Get(ctx, owner, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStatementCacheSetAfterInvalidateIsOrphaned(t *testing.T) {
	c := newRedisTestCache(t)
	ctx := context.Background()

	owner := fmt.Sprintf("owner-%d", time.Now().UnixNano())
	key := StatementKey("2024-01-01", "2024-01-31", "")

	_, staleGen, ok, err := c.Get(ctx, owner, key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Invalidate(ctx, owner))
	stale := &domain.Statement{From: "2024-01-01", To: "2024-01-31", GrandPaid: decimal.Zero}
	require.NoError(t, c.Set(ctx, owner, key, staleGen, stale, time.Minute))

	_, gen, ok, err := c.Get(ctx, owner, key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, int64(gen), int64(staleGen))
}

func newRedisTestCache(t *testing.T) *RedisStatementCache {
	t.Helper()
	addr := os.Getenv("JAYGOGA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set JAYGOGA_TEST_REDIS_ADDR to run redis cache test")
	}
	client := NewRedisClient(addr, "", 0)
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisStatementCache(client)
	require.NoError(t, c.Ping(context.Background()))
	return c
}
