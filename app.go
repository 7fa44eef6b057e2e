package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/lignin-slicer/pkg/config"
	"github.com/chazu/lignin-slicer/pkg/logging"
	"github.com/chazu/lignin-slicer/pkg/pipeline"
)

// genericFailure is the only failure text callers ever see. The cause is
// logged instead.
const genericFailure = "slicing failed"

// App slices meshes kept in a store directory and writes the resulting
// G-code back into it, the way an upload/slice endpoint would.
type App struct {
	root string
	cfg  config.Config
}

// SliceRequest names a stored mesh relative to the store root. A zero
// LayerHeight keeps the configured one.
type SliceRequest struct {
	File        string  `json:"filePath"`
	LayerHeight float64 `json:"layerHeight,omitempty"`
}

// SliceResult is the JSON-serializable response.
type SliceResult struct {
	Success bool   `json:"success"`
	FileURL string `json:"fileUrl,omitempty"`
	Error   string `json:"error,omitempty"`
	Layers  int    `json:"layers,omitempty"`
	Moves   int    `json:"moves,omitempty"`
}

// NewApp creates an App serving files below root.
func NewApp(root string, cfg config.Config) *App {
	return &App{root: root, cfg: cfg}
}

// Slice reads the requested mesh, slices it and stores <name>.gcode next to
// it. Any failure is reported as a generic error.
func (a *App) Slice(req SliceRequest) SliceResult {
	url, res, err := a.slice(req)
	if err != nil {
		logging.Logger().Error("slice request failed", "file", req.File, "err", err)
		return SliceResult{Success: false, Error: genericFailure}
	}
	return SliceResult{
		Success: true,
		FileURL: url,
		Layers:  len(res.Layers),
		Moves:   res.Moves,
	}
}

func (a *App) slice(req SliceRequest) (string, *pipeline.Result, error) {
	if req.File == "" {
		return "", nil, fmt.Errorf("empty file path")
	}
	// Rooting the cleaned path keeps ".." from escaping the store.
	rel := filepath.Clean(string(filepath.Separator) + req.File)
	src := filepath.Join(a.root, rel)

	data, err := os.ReadFile(src)
	if err != nil {
		return "", nil, fmt.Errorf("read mesh: %w", err)
	}

	cfg := a.cfg
	if req.LayerHeight != 0 {
		cfg.LayerHeight = req.LayerHeight
	}
	res, err := pipeline.Run(data, cfg)
	if err != nil {
		return "", nil, err
	}

	outRel := strings.TrimSuffix(rel, filepath.Ext(rel)) + ".gcode"
	if err := writeAtomic(filepath.Join(a.root, outRel), []byte(res.GCode)); err != nil {
		return "", nil, fmt.Errorf("store gcode: %w", err)
	}
	return filepath.ToSlash(outRel), res, nil
}

// writeAtomic writes via a temp file and rename so readers never see a
// partial command stream.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".gcode-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
