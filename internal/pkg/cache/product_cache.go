// internal/pkg/cache/product_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"laptoppro-service/internal/domain/product"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	productsAllKey     = "products:all"
	productsVersionKey = "products:version"
)

// setIfCurrent writes KEYS[2] only while the cache version still equals ARGV[1].
var setIfCurrent = redis.NewScript(`
if (redis.call('GET', KEYS[1]) or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// ProductCache holds the catalog listing and single products in Redis.
// Every failure is logged and reported as a miss; callers fall back to storage.
// Writes carry the version read before the storage lookup and are dropped if
// an invalidation happened in between.
type ProductCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewProductCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{redis: client, ttl: ttl, logger: logger}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// Version returns the current cache version, or "" when Redis is unavailable.
func (c *ProductCache) Version(ctx context.Context) string {
	v, err := c.redis.Get(ctx, productsVersionKey).Result()
	switch {
	case err == nil:
		return v
	case errors.Is(err, redis.Nil):
		return "0"
	default:
		c.logger.Warn("failed to read product cache version", zap.Error(err))
		return ""
	}
}

func (c *ProductCache) GetAll(ctx context.Context) ([]product.Product, bool) {
	var products []product.Product
	if !c.get(ctx, productsAllKey, &products) {
		return nil, false
	}
	return products, true
}

func (c *ProductCache) SetAll(ctx context.Context, products []product.Product, version string) {
	c.set(ctx, productsAllKey, products, version)
}

func (c *ProductCache) Get(ctx context.Context, id int64) (*product.Product, bool) {
	var p product.Product
	if !c.get(ctx, productKey(id), &p) {
		return nil, false
	}
	return &p, true
}

func (c *ProductCache) Set(ctx context.Context, p *product.Product, version string) {
	c.set(ctx, productKey(p.ID), p, version)
}

// Invalidate bumps the version and drops the listing and the given products.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...int64) {
	keys := []string{productsAllKey}
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, productsVersionKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		c.logger.Warn("failed to invalidate product cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *ProductCache) get(ctx context.Context, key string, dst interface{}) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		return false
	default:
		c.logger.Warn("redis error, continuing with storage", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("failed to unmarshal cached value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *ProductCache) set(ctx context.Context, key string, value interface{}, version string) {
	if version == "" {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("failed to marshal cache value", zap.String("key", key), zap.Error(err))
		return
	}

	keys := []string{productsVersionKey, key}
	stored, err := setIfCurrent.Run(ctx, c.redis, keys, version, data, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.logger.Warn("failed to cache value", zap.String("key", key), zap.Error(err))
		return
	}
	if stored == 0 {
		c.logger.Debug("skipped stale cache write", zap.String("key", key), zap.String("version", version))
	}
}
