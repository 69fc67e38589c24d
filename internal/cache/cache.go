// Package cache keeps parsed geometries so batch runs and repeated analyses
// against the same host do not re-read the file
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ppiankov/defectscan/internal/geometry"
)

// Cache stores parsed geometries by key. Cached geometries are shared and
// must not be modified by callers
type Cache interface {
	Get(key string) (*geometry.Geometry, bool)
	Set(key string, g *geometry.Geometry) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from a file path and its stat info, so an edited
// file never hits a stale entry
func Key(path string, info fs.FileInfo) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	raw := fmt.Sprintf("%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano())
	hash := sha256.Sum256([]byte(raw))
	return "defectscan:v1:" + hex.EncodeToString(hash[:])
}
