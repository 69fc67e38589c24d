package model

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config is the complete defectscan configuration
type Config struct {
	Analysis    AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// AnalysisConfig controls defect classification and location
type AnalysisConfig struct {
	// StrictSpecies rejects inputs where more than one species shows the
	// same count delta. When false the last species in census order wins
	StrictSpecies bool `yaml:"strict_species" mapstructure:"strict_species"`
	// Workers bounds the concurrent nearest-neighbour searches per analysis
	Workers int `yaml:"workers" mapstructure:"workers"`
	// RequireLattice fails the analysis when the host has no lattice vectors
	// instead of omitting boundary distances
	RequireLattice bool `yaml:"require_lattice" mapstructure:"require_lattice"`
	// BoundaryMargin is the face distance in Angstrom below which a site
	// loses boundary confidence, since distances are not minimum-image
	BoundaryMargin float64 `yaml:"boundary_margin" mapstructure:"boundary_margin"`
	// CellTolerance bounds off-diagonal lattice components and how far
	// atoms may sit outside the box, in Angstrom
	CellTolerance float64 `yaml:"cell_tolerance" mapstructure:"cell_tolerance"`
	// MinSeparation flags atom pairs closer than this, in Angstrom
	MinSeparation float64 `yaml:"min_separation" mapstructure:"min_separation"`
}

// CacheConfig controls caching of parsed geometries
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	BatchWorkers   int     `yaml:"batch_workers" mapstructure:"batch_workers"`
	FilesPerSecond float64 `yaml:"files_per_second" mapstructure:"files_per_second"` // 0 disables throttling
	Burst          int     `yaml:"burst" mapstructure:"burst"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeCensus bool `yaml:"include_census" mapstructure:"include_census"` // Census table in Markdown
}

// LogConfig controls structured logging
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	cacheDir := filepath.Join(os.TempDir(), "defectscan-cache")
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "defectscan")
	}

	return &Config{
		Analysis: AnalysisConfig{
			StrictSpecies:  true,
			Workers:        1,
			RequireLattice: false,
			BoundaryMargin: 2.0,
			CellTolerance:  0.01,
			MinSeparation:  0.5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskDir:   cacheDir,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers:   runtime.NumCPU(),
			FilesPerSecond: 0,
			Burst:          1,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeCensus: true,
		},
		Log: LogConfig{
			Level:       "warn",
			Development: false,
		},
	}
}
