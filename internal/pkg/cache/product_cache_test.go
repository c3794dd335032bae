package cache

import (
	"context"
	"testing"
	"time"

	"laptoppro-service/internal/domain/product"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCache(t *testing.T) (*ProductCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewProductCache(client, time.Minute, zap.NewNop()), mr
}

func TestProductCacheListingRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	_, ok := c.GetAll(ctx)
	assert.False(t, ok)

	products := []product.Product{
		{ID: 1, SKU: "SSD-512", Name: "SSD 512GB", Price: decimal.RequireFromString("199.90"), Stock: 3},
	}
	c.SetAll(ctx, products, c.Version(ctx))

	got, ok := c.GetAll(ctx)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.True(t, products[0].Price.Equal(got[0].Price))
	assert.Equal(t, "SSD-512", got[0].SKU)

	mr.FastForward(2 * time.Minute)
	_, ok = c.GetAll(ctx)
	assert.False(t, ok)
}

func TestProductCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	p := &product.Product{ID: 5, SKU: "BAT-1", Name: "Battery", Price: decimal.NewFromInt(120), Stock: 2}
	v := c.Version(ctx)
	c.Set(ctx, p, v)
	c.SetAll(ctx, []product.Product{*p}, v)
	_, ok := c.Get(ctx, 5)
	require.True(t, ok)

	c.Invalidate(ctx, 5)

	_, ok = c.Get(ctx, 5)
	assert.False(t, ok)
	_, ok = c.GetAll(ctx)
	assert.False(t, ok)
}

func TestProductCacheTreatsRedisOutageAsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	mr.Close()

	_, ok := c.GetAll(ctx)
	assert.False(t, ok)
	assert.Empty(t, c.Version(ctx))
	c.SetAll(ctx, nil, "")
	c.Invalidate(ctx, 1)
}

func TestProductCacheDropsWritesLoadedBeforeInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	stale := []product.Product{{ID: 7, SKU: "SSD-1T", Name: "SSD 1TB", Price: decimal.NewFromInt(329), Stock: 5}}

	// a listing read from storage, then a sale commits and invalidates
	before := c.Version(ctx)
	c.Invalidate(ctx, 7)
	c.SetAll(ctx, stale, before)
	c.Set(ctx, &stale[0], before)

	_, ok := c.GetAll(ctx)
	assert.False(t, ok)
	_, ok = c.Get(ctx, 7)
	assert.False(t, ok)

	after := c.Version(ctx)
	assert.NotEqual(t, before, after)

	fresh := []product.Product{{ID: 7, SKU: "SSD-1T", Name: "SSD 1TB", Price: decimal.NewFromInt(329), Stock: 2}}
	c.SetAll(ctx, fresh, after)
	got, ok := c.GetAll(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, got[0].Stock)
}
