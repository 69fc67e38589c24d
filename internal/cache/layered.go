package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/defectscan/internal/geometry"
	"github.com/ppiankov/defectscan/internal/logging"
)

// LayeredCache checks memory first, then disk
type LayeredCache struct {
	memory Cache
	disk   Cache
	logger *zap.Logger
}

// NewLayeredCache creates a memory + disk cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration, logger *zap.Logger) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
		logger: logging.OrNop(logger),
	}
}

// Get returns a geometry, promoting disk hits to memory
func (c *LayeredCache) Get(key string) (*geometry.Geometry, bool) {
	if g, found := c.memory.Get(key); found {
		return g, true
	}

	if g, found := c.disk.Get(key); found {
		if err := c.memory.Set(key, g); err != nil {
			c.logger.Debug("promote cache entry", zap.String("key", key), zap.Error(err))
		}
		return g, true
	}

	return nil, false
}

// Set stores a geometry in both layers. A disk failure is logged and not
// returned since the memory layer still serves the entry
func (c *LayeredCache) Set(key string, g *geometry.Geometry) error {
	if err := c.memory.Set(key, g); err != nil {
		return err
	}

	if err := c.disk.Set(key, g); err != nil {
		c.logger.Warn("disk cache write failed", zap.String("key", key), zap.Error(err))
	}

	return nil
}

// Delete removes a geometry from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear empties both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
