// Package preview renders sliced layers as 2D plots so a slice can be
// inspected without a viewer. Every intersection group is drawn as its own
// polyline since groups are not stitched into contours.
package preview

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/chazu/lignin-slicer/pkg/logging"
	"github.com/chazu/lignin-slicer/pkg/slicer"
)

// Size is the width and height of rendered images.
const Size = 6 * vg.Inch

// Layer builds the plot for one layer.
func Layer(l slicer.Layer) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Layer %d (z=%.2f)", l.Index, l.Z)
	p.X.Label.Text = "X (mm)"
	p.Y.Label.Text = "Y (mm)"
	p.Add(plotter.NewGrid())

	for i, g := range l.Groups {
		pts := make(plotter.XYs, len(g))
		for j, v := range g {
			pts[j] = plotter.XY{X: v.X, Y: v.Y}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("preview: layer %d group %d: %w", l.Index, i, err)
		}
		line.Width = vg.Points(1)
		p.Add(line)
	}
	return p, nil
}

// WriteLayer renders l to w. format is any gonum/plot image format, such as
// "png" or "svg".
func WriteLayer(w io.Writer, l slicer.Layer, format string) error {
	p, err := Layer(l)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(Size, Size, format)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("preview: write layer %d: %w", l.Index, err)
	}
	return nil
}

// SaveLayers writes layer_NNNN.png for every layer into dir, creating it if
// needed, and returns the written paths.
func SaveLayers(dir string, layers []slicer.Layer) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	paths := make([]string, 0, len(layers))
	for _, l := range layers {
		path := filepath.Join(dir, fmt.Sprintf("layer_%04d.png", l.Index))
		f, err := os.Create(path)
		if err != nil {
			return paths, fmt.Errorf("preview: %w", err)
		}
		err = WriteLayer(f, l, "png")
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	logging.Logger().Debug("wrote layer previews", "dir", dir, "count", len(paths))
	return paths, nil
}
