package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/defectscan/internal/geometry"
)

// MemoryCache is an in-process cache with expiry
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(ttl time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Get retrieves a geometry from the cache
func (c *MemoryCache) Get(key string) (*geometry.Geometry, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	g, ok := val.(*geometry.Geometry)
	return g, ok
}

// Set stores a geometry with the default expiry
func (c *MemoryCache) Set(key string, g *geometry.Geometry) error {
	c.cache.SetDefault(key, g)
	return nil
}

// Delete removes a geometry from the cache
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes all entries
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}

// Len returns the number of entries, expired ones included until cleanup
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
