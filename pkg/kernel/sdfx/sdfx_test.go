package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/lignin-slicer/pkg/slicer"
)

func TestBox(t *testing.T) {
	k := New(40)
	mesh, err := k.ToMesh(k.Box(20, 10, 5))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	// The box has its minimum corner at the origin.
	const tol = 0.5
	if math.Abs(mesh.Bounds.Min.Z) > tol || math.Abs(mesh.Bounds.Max.Z-5) > tol {
		t.Errorf("Z bounds = [%f, %f], want ~[0, 5]", mesh.Bounds.Min.Z, mesh.Bounds.Max.Z)
	}
	if math.Abs(mesh.Bounds.Max.X-20) > tol {
		t.Errorf("max X = %f, want ~20", mesh.Bounds.Max.X)
	}
	t.Logf("box triangle count: %d", mesh.TriangleCount())
}

func TestCylinderRestsOnBed(t *testing.T) {
	k := New(40)
	min, max := k.Cylinder(30, 5).BoundingBox()
	const tol = 0.01
	if math.Abs(min[2]) > tol || math.Abs(max[2]-30) > tol {
		t.Errorf("Z bounds = [%f, %f], want [0, 30]", min[2], max[2])
	}
}

func TestDifference(t *testing.T) {
	k := New(40)
	box := k.Box(40, 40, 10)
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}

	hole := k.Translate(k.Cylinder(20, 8), 20, 20, -5)
	diffMesh, err := k.ToMesh(k.Difference(box, hole))
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

func TestTranslate(t *testing.T) {
	k := New(0)
	min, max := k.Translate(k.Box(10, 10, 10), 100, 200, 300).BoundingBox()

	const tol = 0.5
	expectMin := [3]float64{100, 200, 300}
	expectMax := [3]float64{110, 210, 310}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestUnionSlices(t *testing.T) {
	k := New(40)
	u := k.Union(k.Box(10, 10, 4), k.Translate(k.Box(4, 4, 8), 3, 3, 0))
	m, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	layers, err := slicer.Slice(m, 1)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if len(layers) == 0 {
		t.Fatal("closed union mesh produced no layers")
	}
}

func TestToMeshNil(t *testing.T) {
	if _, err := New(10).ToMesh(nil); err == nil {
		t.Error("ToMesh(nil) returned nil error")
	}
}
