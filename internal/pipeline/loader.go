package pipeline

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ppiankov/defectscan/internal/cache"
	"github.com/ppiankov/defectscan/internal/geometry"
	"github.com/ppiankov/defectscan/internal/logging"
)

// Loader reads geometry files, consulting the cache when one is configured
type Loader struct {
	cache  cache.Cache
	logger *zap.Logger
}

// NewLoader creates a loader. A nil cache disables caching
func NewLoader(c cache.Cache, logger *zap.Logger) *Loader {
	return &Loader{
		cache:  c,
		logger: logging.OrNop(logger),
	}
}

// Load returns the parsed geometry at path
func (l *Loader) Load(path string) (*geometry.Geometry, error) {
	if l.cache == nil {
		return geometry.Load(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", geometry.ErrFileUnreadable, path, err)
	}

	key := cache.Key(path, info)
	if g, found := l.cache.Get(key); found {
		l.logger.Debug("geometry cache hit", zap.String("path", path), zap.Int("atoms", g.Len()))
		return g, nil
	}

	g, err := geometry.Load(path)
	if err != nil {
		return nil, err
	}

	if err := l.cache.Set(key, g); err != nil {
		l.logger.Warn("cache geometry", zap.String("path", path), zap.Error(err))
	}
	l.logger.Debug("geometry loaded", zap.String("path", path), zap.Int("atoms", g.Len()), zap.Int("skipped", g.Skipped))

	return g, nil
}
