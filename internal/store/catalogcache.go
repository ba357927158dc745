// internal/store/catalogcache.go
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"sales-browser/internal/common/logger"
	"sales-browser/internal/sales"
)

const catalogCacheKey = "sales:filter-catalog"

// CachedCatalogStore wraps an external backend with a Redis-backed
// FilterCatalog cache. The catalog only changes when the underlying data is
// reseeded, so a TTL read-through is enough; any cache failure degrades to a
// direct store read.
type CachedCatalogStore struct {
	Store

	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedCatalogStore(inner Store, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedCatalogStore {
	return &CachedCatalogStore{
		Store:  inner,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-cache"}),
	}
}

func (c *CachedCatalogStore) FilterCatalog(ctx context.Context) (*sales.FilterCatalog, error) {
	cached, err := c.redis.Get(ctx, catalogCacheKey).Result()
	if err == nil {
		var catalog sales.FilterCatalog
		if err := json.Unmarshal([]byte(cached), &catalog); err == nil {
			return &catalog, nil
		}
		// Unreadable payload: fall through and overwrite it.
		c.logger.Warn("discarding malformed cached catalog", map[string]interface{}{
			"key": catalogCacheKey,
		})
	} else if err != redis.Nil {
		c.logger.Warn("catalog cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	catalog, err := c.Store.FilterCatalog(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(catalog); err == nil {
		if err := c.redis.Set(ctx, catalogCacheKey, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("catalog cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return catalog, nil
}

// Invalidate drops the cached catalog, e.g. after a reseed.
func (c *CachedCatalogStore) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, catalogCacheKey).Err()
}
