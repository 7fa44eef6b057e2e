// Package slicer intersects a triangle mesh with evenly spaced horizontal
// planes. Each triangle that straddles a plane contributes one unconnected
// group of intersection points; no contour stitching is performed.
package slicer

import (
	"errors"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/lignin-slicer/pkg/logging"
	"github.com/chazu/lignin-slicer/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrInvalidLayerHeight is returned when the layer height is not a
	// finite positive number.
	ErrInvalidLayerHeight = errors.New("slicer: layer height must be finite and > 0")
	// ErrNilMesh is returned when Slice is given no mesh.
	ErrNilMesh = errors.New("slicer: nil mesh")
	// ErrTooManyLayers is returned when the mesh height divided by the
	// layer height is not finite or exceeds MaxCandidates.
	ErrTooManyLayers = errors.New("slicer: too many layers")
)

// MaxCandidates caps the number of plane heights scanned in one call.
const MaxCandidates = 1_000_000

// IntersectionGroup holds the 0-3 points where one triangle crosses one
// plane, in edge order. Duplicate points are kept.
type IntersectionGroup []v3.Vec

// Layer is one non-empty cross-section. Index counts emitted layers from 0
// with no gaps; Plane is the candidate index i of the cutting height
// Z = zMin + i*layerHeight.
type Layer struct {
	Index  int
	Plane  int
	Z      float64
	Groups []IntersectionGroup
}

// DegeneratePolicy decides what an edge lying inside the cutting plane
// contributes, since its interpolation parameter is 0/0.
type DegeneratePolicy int

const (
	// SkipDegenerate drops in-plane edges. A triangle lying entirely in
	// the plane then contributes nothing.
	SkipDegenerate DegeneratePolicy = iota
	// KeepDegenerate emits the start vertex of an in-plane edge as a
	// zero-length intersection.
	KeepDegenerate
)

func (p DegeneratePolicy) String() string {
	switch p {
	case SkipDegenerate:
		return "skip"
	case KeepDegenerate:
		return "keep"
	default:
		return "unknown"
	}
}

type options struct {
	policy  DegeneratePolicy
	workers int
}

// Option configures Slice.
type Option func(*options)

// WithDegeneratePolicy sets the in-plane edge policy.
func WithDegeneratePolicy(p DegeneratePolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithWorkers scans up to n plane heights concurrently. Output order is the
// same as a sequential scan. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// CandidateCount returns how many plane heights z = zMin + i*h satisfy
// z <= zMax. It never exceeds floor((zMax-zMin)/h) + 1.
func CandidateCount(m *mesh.Mesh, layerHeight float64) (int, error) {
	if m == nil || m.IsEmpty() || !validHeight(layerHeight) {
		return 0, nil
	}
	z0, z1 := m.Bounds.Min.Z, m.Bounds.Max.Z
	steps := math.Floor((z1 - z0) / layerHeight)
	// Checked before the int conversion, which is undefined out of range.
	if math.IsNaN(steps) || steps >= MaxCandidates {
		return 0, ErrTooManyLayers
	}
	limit := int(steps)
	n := 0
	for i := 0; i <= limit && z0+float64(i)*layerHeight <= z1; i++ {
		n++
	}
	return n, nil
}

func validHeight(h float64) bool {
	return h > 0 && !math.IsInf(h, 0) && !math.IsNaN(h)
}

// Slice cuts m at every candidate height and returns the layers that have
// at least one intersection group, in increasing height order.
func Slice(m *mesh.Mesh, layerHeight float64, opts ...Option) ([]Layer, error) {
	if m == nil {
		return nil, ErrNilMesh
	}
	if !validHeight(layerHeight) {
		return nil, ErrInvalidLayerHeight
	}
	o := options{policy: SkipDegenerate, workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}

	n, err := CandidateCount(m, layerHeight)
	if err != nil {
		return nil, err
	}
	z0 := m.Bounds.Min.Z
	slots := make([][]IntersectionGroup, n)

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			slots[i] = groupsAt(m.Triangles, z0+float64(i)*layerHeight, o.policy)
			return nil
		})
	}
	// Workers never fail; Wait only joins them.
	_ = g.Wait()

	var layers []Layer
	for i, groups := range slots {
		if len(groups) == 0 {
			continue
		}
		layers = append(layers, Layer{
			Index:  len(layers),
			Plane:  i,
			Z:      z0 + float64(i)*layerHeight,
			Groups: groups,
		})
	}

	logging.Logger().Debug("sliced mesh",
		"triangles", m.TriangleCount(),
		"candidates", n,
		"layers", len(layers),
		"layer_height", layerHeight,
		"policy", o.policy.String())
	return layers, nil
}

// groupsAt tests every triangle against the plane at z.
func groupsAt(tris []mesh.Triangle, z float64, policy DegeneratePolicy) []IntersectionGroup {
	var groups []IntersectionGroup
	for _, t := range tris {
		if !crosses(t[0], t[1], z) && !crosses(t[1], t[2], z) && !crosses(t[2], t[0], z) {
			continue
		}
		if pts := intersect(t, z, policy); len(pts) > 0 {
			groups = append(groups, pts)
		}
	}
	return groups
}

// crosses is the inclusive straddle test; touching a vertex counts.
func crosses(a, b v3.Vec, z float64) bool {
	return (a.Z <= z && z <= b.Z) || (b.Z <= z && z <= a.Z)
}

// intersect interpolates each crossing edge (v[i], v[(i+1)%3]) at z.
func intersect(t mesh.Triangle, z float64, policy DegeneratePolicy) IntersectionGroup {
	var pts IntersectionGroup
	for i := 0; i < 3; i++ {
		a, b := t[i], t[(i+1)%3]
		if !crosses(a, b, z) {
			continue
		}
		if a.Z == b.Z {
			// Only reachable when the edge lies in the plane.
			if policy == KeepDegenerate {
				pts = append(pts, v3.Vec{X: a.X, Y: a.Y, Z: z})
			}
			continue
		}
		s := (z - a.Z) / (b.Z - a.Z)
		pts = append(pts, v3.Vec{
			X: a.X + s*(b.X-a.X),
			Y: a.Y + s*(b.Y-a.Y),
			Z: z,
		})
	}
	return pts
}
