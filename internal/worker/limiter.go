package worker

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles geometry reads per directory, so a batch spread over
// several mounts is not limited by its slowest one
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter allowing filesPerSecond reads per directory
func NewLimiter(filesPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(filesPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until a read of path is allowed
func (l *Limiter) Wait(ctx context.Context, path string) error {
	return l.getLimiter(dirKey(path)).Wait(ctx)
}

func (l *Limiter) getLimiter(dir string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[dir]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[dir]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[dir] = limiter

	return limiter
}

func dirKey(path string) string {
	return filepath.Dir(filepath.Clean(path))
}
