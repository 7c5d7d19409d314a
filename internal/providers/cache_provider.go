package providers

import (
	"fmt"

	"github.com/coocood/freecache"

	"onlinesync/internal/structures"
)

// MinCacheSizeMB is the smallest cache.size accepted when caching is on. It
// allows single entries of about 16KB, enough for a tag table of roughly
// 900 nicknames.
const MinCacheSizeMB = 16

// freecache splits memory into 256 segments and refuses entries larger than a
// quarter of a segment.
const cacheSegments = 256

type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// CacheProvider keeps side-table snapshots and cycle reports between reads.
// Entries expire after cache.ttl.
type CacheProvider struct {
	cache    *freecache.Cache
	ttl      int
	maxEntry int
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 || conf.Cache.TTL <= 0 {
		logger.Debugf(TypeApp, "Cache disabled")
		return &noopCache{}
	}

	sizeBytes := conf.Cache.Size * 1024 * 1024
	ttl := max(int(conf.Cache.TTL.Seconds()), 1)
	maxEntry := MaxCacheEntry(conf.Cache.Size)

	logger.Infof(TypeApp, "Cache initialized: %dMB, TTL=%ds, max entry %dKB", conf.Cache.Size, ttl, maxEntry/1024)

	return &CacheProvider{
		cache:    freecache.NewCache(sizeBytes),
		ttl:      ttl,
		maxEntry: maxEntry,
	}
}

// MaxCacheEntry is the largest key plus value, in bytes, a cache of sizeMB
// accepts.
func MaxCacheEntry(sizeMB int) int {
	return sizeMB * 1024 * 1024 / cacheSegments / 4
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores value under key. Values too large for the cache are rejected
// with freecache.ErrLargeEntry.
func (c *CacheProvider) Set(key string, value []byte) error {
	if err := c.cache.Set([]byte(key), value, c.ttl); err != nil {
		return fmt.Errorf("cache %s (%d bytes, limit %d): %w", key, len(value), c.maxEntry, err)
	}
	return nil
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool)  { return nil, false }
func (n *noopCache) Set(_ string, _ []byte) error { return nil }
