// Package pipeline runs mesh bytes through slicing, toolpath generation and
// command emission. Every stage either completes or the run fails; no
// partial command stream is returned.
package pipeline

import (
	"fmt"
	"time"

	"github.com/chazu/lignin-slicer/pkg/config"
	"github.com/chazu/lignin-slicer/pkg/gcode"
	"github.com/chazu/lignin-slicer/pkg/logging"
	"github.com/chazu/lignin-slicer/pkg/mesh"
	"github.com/chazu/lignin-slicer/pkg/slicer"
	"github.com/chazu/lignin-slicer/pkg/stl"
	"github.com/chazu/lignin-slicer/pkg/toolpath"
)

// Result is the output of one run.
type Result struct {
	GCode     string
	Layers    []slicer.Layer
	Toolpaths []toolpath.Toolpath
	Moves     int
}

// Run parses STL data and slices it with cfg.
func Run(data []byte, cfg config.Config) (*Result, error) {
	m, err := stl.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pipeline: parse: %w", err)
	}
	return RunMesh(m, cfg)
}

// RunMesh slices an already constructed mesh with cfg.
func RunMesh(m *mesh.Mesh, cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: config: %w", err)
	}
	start := time.Now()

	layers, err := slicer.Slice(m, cfg.LayerHeight, cfg.SliceOptions()...)
	if err != nil {
		return nil, fmt.Errorf("pipeline: slice: %w", err)
	}
	tps := toolpath.Generate(layers, toolpath.WithLayerHeight(cfg.LayerHeight))

	res := &Result{
		GCode:     gcode.Emit(tps),
		Layers:    layers,
		Toolpaths: tps,
	}
	for _, tp := range tps {
		res.Moves += tp.MoveCount()
	}

	logging.Logger().Info("slice complete",
		"triangles", m.TriangleCount(),
		"layers", len(layers),
		"moves", res.Moves,
		"elapsed", time.Since(start))
	return res, nil
}
