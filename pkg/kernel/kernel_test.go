package kernel

import (
	"testing"

	"github.com/chazu/lignin-slicer/pkg/mesh"
)

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel proves the interface is satisfiable with trivial results.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{maxBB: [3]float64{x, y, z}}
}

func (k *stubKernel) Cylinder(height, radius float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, 0},
		maxBB: [3]float64{radius, radius, height},
	}
}

func (k *stubKernel) Union(a, _ Solid) Solid                    { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid               { return a }
func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }

func (k *stubKernel) ToMesh(_ Solid) (*mesh.Mesh, error) {
	return mesh.New(nil), nil
}

var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernel(t *testing.T) {
	var k Kernel = &stubKernel{}
	min, max := k.Cylinder(10, 2).BoundingBox()
	if min != [3]float64{-2, -2, 0} || max != [3]float64{2, 2, 10} {
		t.Errorf("Cylinder bounds = %v..%v", min, max)
	}
	m, err := k.ToMesh(k.Box(1, 1, 1))
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if !m.IsEmpty() {
		t.Error("stub ToMesh() should return empty mesh")
	}
}
