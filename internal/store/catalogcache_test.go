// internal/store/catalogcache_test.go
package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-browser/internal/common/logger"
	"sales-browser/internal/sales"
)

// countingStore records how often the inner catalog is computed.
type countingStore struct {
	Store
	catalog      sales.FilterCatalog
	catalogCalls int
}

func (s *countingStore) FilterCatalog(_ context.Context) (*sales.FilterCatalog, error) {
	s.catalogCalls++
	catalog := s.catalog
	return &catalog, nil
}

func newCacheFixture(t *testing.T) (*CachedCatalogStore, *countingStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	minAge := 22
	inner := &countingStore{catalog: sales.FilterCatalog{
		Regions: []string{"North", "South"},
		MinAge:  &minAge,
	}}

	cached := NewCachedCatalogStore(inner, rdb, time.Minute, logger.NewTestLogger(t))
	return cached, inner, mr
}

func TestCachedCatalogReadThrough(t *testing.T) {
	cached, inner, mr := newCacheFixture(t)
	ctx := context.Background()

	catalog, err := cached.FilterCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, catalog.Regions)
	assert.Equal(t, 1, inner.catalogCalls)

	// second read is served from the cache
	catalog, err = cached.FilterCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, catalog.Regions)
	require.NotNil(t, catalog.MinAge)
	assert.Equal(t, 22, *catalog.MinAge)
	assert.Equal(t, 1, inner.catalogCalls)

	assert.True(t, mr.Exists("sales:filter-catalog"))
}

func TestCachedCatalogMalformedPayload(t *testing.T) {
	cached, inner, mr := newCacheFixture(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("sales:filter-catalog", "{not json"))

	catalog, err := cached.FilterCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, catalog.Regions)
	assert.Equal(t, 1, inner.catalogCalls)

	// overwritten with a readable payload
	stored, err := mr.Get("sales:filter-catalog")
	require.NoError(t, err)
	var repaired sales.FilterCatalog
	require.NoError(t, json.Unmarshal([]byte(stored), &repaired))
	assert.Equal(t, []string{"North", "South"}, repaired.Regions)
}

func TestCachedCatalogRedisDown(t *testing.T) {
	cached, inner, mr := newCacheFixture(t)
	ctx := context.Background()

	mr.Close()

	catalog, err := cached.FilterCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, catalog.Regions)
	assert.Equal(t, 1, inner.catalogCalls)
}

func TestCachedCatalogInvalidate(t *testing.T) {
	cached, inner, mr := newCacheFixture(t)
	ctx := context.Background()

	_, err := cached.FilterCatalog(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("sales:filter-catalog"))

	require.NoError(t, cached.Invalidate(ctx))
	assert.False(t, mr.Exists("sales:filter-catalog"))

	_, err = cached.FilterCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.catalogCalls)
}

func TestCachedCatalogExpiry(t *testing.T) {
	cached, inner, mr := newCacheFixture(t)
	ctx := context.Background()

	_, err := cached.FilterCatalog(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cached.FilterCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.catalogCalls)
}
