// Package toolpath turns sliced layers into motion points carrying
// position, cumulative extrusion and feed rate.
package toolpath

import (
	"math"

	"github.com/chazu/lignin-slicer/pkg/slicer"
)

const (
	// DefaultLayerHeight is the stacking height used for a point's Z when
	// no layer height is supplied.
	DefaultLayerHeight = 0.2
	// ExtrusionMultiplier is filament length fed per unit of travel.
	ExtrusionMultiplier = 0.05
	// FeedRate is the feed rate stamped on every motion point.
	FeedRate = 1500
)

// MotionPoint is one extruding move target. E is cumulative since the first
// point of the whole run.
type MotionPoint struct {
	X, Y, Z float64
	E       float64
	F       int
}

// Path is the motion derived from one intersection group.
type Path []MotionPoint

// Toolpath is the motion for one layer.
type Toolpath struct {
	LayerIndex int
	Paths      []Path
}

// MoveCount returns the number of motion points across all paths.
func (tp Toolpath) MoveCount() int {
	n := 0
	for _, p := range tp.Paths {
		n += len(p)
	}
	return n
}

type options struct {
	layerHeight float64
}

// Option configures Generate.
type Option func(*options)

// WithLayerHeight sets the height used to stamp Z = layerIndex*h.
func WithLayerHeight(h float64) Option {
	return func(o *options) { o.layerHeight = h }
}

// extruder is the fold state threaded through the traversal: the last
// emitted point, if any.
type extruder struct {
	prev    MotionPoint
	started bool
}

// next returns the motion point for (x, y, z) and the advanced state.
func (ex extruder) next(x, y, z float64) (MotionPoint, extruder) {
	p := MotionPoint{X: x, Y: y, Z: z, F: FeedRate}
	if ex.started {
		d := math.Sqrt(sq(x-ex.prev.X) + sq(y-ex.prev.Y) + sq(z-ex.prev.Z))
		p.E = ex.prev.E + d*ExtrusionMultiplier
	}
	return p, extruder{prev: p, started: true}
}

func sq(v float64) float64 { return v * v }

// Generate walks layers, groups and points in order. Layers are numbered
// by their position in layers, and Z is that number times the layer
// height, not the geometric intersection height. Extrusion accumulates
// across the whole run, so layers must be supplied in order.
func Generate(layers []slicer.Layer, opts ...Option) []Toolpath {
	o := options{layerHeight: DefaultLayerHeight}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		out []Toolpath
		ex  extruder
	)
	for li, l := range layers {
		z := float64(li) * o.layerHeight
		tp := Toolpath{LayerIndex: li, Paths: make([]Path, 0, len(l.Groups))}
		for _, g := range l.Groups {
			path := make(Path, 0, len(g))
			for _, pt := range g {
				var mp MotionPoint
				mp, ex = ex.next(pt.X, pt.Y, z)
				path = append(path, mp)
			}
			tp.Paths = append(tp.Paths, path)
		}
		out = append(out, tp)
	}
	return out
}
