// Package kernel defines the solid modeling interface used to synthesize
// meshes without an STL file: calibration shapes from the command line and
// closed test objects. The sdfx subpackage implements it.
package kernel

import "github.com/chazu/lignin-slicer/pkg/mesh"

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds solids and tessellates them.
type Kernel interface {
	// Box has its minimum corner at the origin.
	Box(x, y, z float64) Solid
	// Cylinder stands on the XY plane, centered on the Z axis.
	Cylinder(height, radius float64) Solid

	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Translate(s Solid, x, y, z float64) Solid

	// ToMesh tessellates s into a triangle mesh.
	ToMesh(s Solid) (*mesh.Mesh, error)
}
