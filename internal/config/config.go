package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Config is the engine configuration, usually read from voxcore.yaml.
type Config struct {
	Seed int64 `yaml:"seed"`

	// Generator selects the terrain generator: "noise" or "flat".
	Generator  string `yaml:"generator"`
	FlatHeight int    `yaml:"flat_height"`

	// Load radius in chunks around the viewer's chunk.
	HorizontalRadius int `yaml:"horizontal_radius"`
	VerticalRadius   int `yaml:"vertical_radius"`

	// Concurrency ceilings for the two worker pipelines.
	MaxConcurrentLoads  int `yaml:"max_concurrent_loads"`
	MaxConcurrentMeshes int `yaml:"max_concurrent_meshes"`

	// Viewer is the initial viewer position in world units.
	Viewer [3]float32 `yaml:"viewer"`

	TickRateHz int    `yaml:"tick_rate_hz"`
	Listen     string `yaml:"listen"`
	StorePath  string `yaml:"store_path"`

	// EditsPerSecond limits edit requests per websocket connection.
	EditsPerSecond float64 `yaml:"edits_per_second"`
	EditBurst      int     `yaml:"edit_burst"`

	ForceBlocky bool `yaml:"force_blocky"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Seed:                1337,
		Generator:           "noise",
		FlatHeight:          8,
		HorizontalRadius:    6,
		VerticalRadius:      3,
		MaxConcurrentLoads:  8,
		MaxConcurrentMeshes: 4,
		Viewer:              [3]float32{0, 48, 0},
		TickRateHz:          20,
		Listen:              ":8080",
		EditsPerSecond:      20,
		EditBurst:           40,
	}
}

// Load reads a YAML file over the defaults and normalizes the result.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize clamps radii and ceilings to workable values.
func (c *Config) Normalize() {
	c.HorizontalRadius = clamp(c.HorizontalRadius, 1, 32)
	c.VerticalRadius = clamp(c.VerticalRadius, 0, 16)
	c.MaxConcurrentLoads = clamp(c.MaxConcurrentLoads, 1, 64)
	c.MaxConcurrentMeshes = clamp(c.MaxConcurrentMeshes, 1, 64)
	c.TickRateHz = clamp(c.TickRateHz, 1, 240)
	if c.Generator == "" {
		c.Generator = "noise"
	}
	if c.EditBurst < 1 {
		c.EditBurst = 1
	}
	if c.EditsPerSecond <= 0 {
		c.EditsPerSecond = 1
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Runtime debug settings shared by every package.

var forceBlocky atomic.Bool

// ForceBlocky reports whether every voxel should be treated as a cube.
func ForceBlocky() bool {
	return forceBlocky.Load()
}

// SetForceBlocky toggles the blocky debug override.
func SetForceBlocky(enabled bool) {
	forceBlocky.Store(enabled)
}
