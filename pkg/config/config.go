// Package config holds slicing profiles. A profile is a JSON file whose
// fields are all optional; omitted fields fall back to the defaults.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/chazu/lignin-slicer/pkg/slicer"
	"github.com/chazu/lignin-slicer/pkg/toolpath"
)

// maxProfileSize caps profile files at 1MB.
const maxProfileSize = 1 * 1024 * 1024

// Profile is the on-disk form. Nil fields are unset.
type Profile struct {
	LayerHeight    *float64 `json:"layer_height,omitempty"`    // mm
	Workers        *int     `json:"workers,omitempty"`         // concurrent plane scans
	KeepDegenerate *bool    `json:"keep_degenerate,omitempty"` // emit in-plane edge starts
	Output         *string  `json:"output,omitempty"`          // G-code path, "-" for stdout
	PreviewDir     *string  `json:"preview_dir,omitempty"`     // layer PNGs, empty disables
}

// Config is a resolved profile.
type Config struct {
	LayerHeight    float64
	Workers        int
	KeepDegenerate bool
	Output         string
	PreviewDir     string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LayerHeight: toolpath.DefaultLayerHeight,
		Workers:     1,
		Output:      "-",
	}
}

// Load reads a JSON profile and overlays it on Default.
func Load(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxProfileSize {
		return Config{}, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxProfileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Config{}, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	cfg := p.Apply(Default())
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Apply returns base with every set field of p overriding it.
func (p Profile) Apply(base Config) Config {
	if p.LayerHeight != nil {
		base.LayerHeight = *p.LayerHeight
	}
	if p.Workers != nil {
		base.Workers = *p.Workers
	}
	if p.KeepDegenerate != nil {
		base.KeepDegenerate = *p.KeepDegenerate
	}
	if p.Output != nil {
		base.Output = *p.Output
	}
	if p.PreviewDir != nil {
		base.PreviewDir = *p.PreviewDir
	}
	return base
}

// Validate checks that the configuration values are usable.
func (c Config) Validate() error {
	if !(c.LayerHeight > 0) || math.IsInf(c.LayerHeight, 0) {
		return fmt.Errorf("layer_height must be a positive number, got %v", c.LayerHeight)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// SliceOptions translates the config into slicer options.
func (c Config) SliceOptions() []slicer.Option {
	policy := slicer.SkipDegenerate
	if c.KeepDegenerate {
		policy = slicer.KeepDegenerate
	}
	return []slicer.Option{
		slicer.WithDegeneratePolicy(policy),
		slicer.WithWorkers(c.Workers),
	}
}
