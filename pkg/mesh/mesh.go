package mesh

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle is three vertex positions. Vertex order only matters for
// traversal (and for the facet normal when written back out as STL).
type Triangle [3]v3.Vec

// Normal returns the unit face normal using the right-hand rule.
// Degenerate triangles return the zero vector.
func (t Triangle) Normal() v3.Vec {
	e1 := t[1].Sub(t[0])
	e2 := t[2].Sub(t[0])
	n := v3.Vec{
		X: e1.Y*e2.Z - e1.Z*e2.Y,
		Y: e1.Z*e2.X - e1.X*e2.Z,
		Z: e1.X*e2.Y - e1.Y*e2.X,
	}
	l := n.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return v3.Vec{X: n.X / l, Y: n.Y / l, Z: n.Z / l}
}

// Mesh is an immutable triangle soup with a precomputed bounding box.
type Mesh struct {
	Triangles []Triangle
	Bounds    sdf.Box3
}

// New builds a Mesh from tris. The slice is copied so later changes by the
// caller do not leak into the mesh. An empty input yields a zero-value box.
func New(tris []Triangle) *Mesh {
	m := &Mesh{Triangles: make([]Triangle, len(tris))}
	copy(m.Triangles, tris)
	m.Bounds = bounds(m.Triangles)
	return m
}

func bounds(tris []Triangle) sdf.Box3 {
	if len(tris) == 0 {
		return sdf.Box3{}
	}
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, t := range tris {
		for _, v := range t {
			lo.X, hi.X = math.Min(lo.X, v.X), math.Max(hi.X, v.X)
			lo.Y, hi.Y = math.Min(lo.Y, v.Y), math.Max(hi.Y, v.Y)
			lo.Z, hi.Z = math.Min(lo.Z, v.Z), math.Max(hi.Z, v.Z)
		}
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Triangles) == 0
}

// Height returns the extent of the mesh along Z.
func (m *Mesh) Height() float64 {
	return m.Bounds.Max.Z - m.Bounds.Min.Z
}
