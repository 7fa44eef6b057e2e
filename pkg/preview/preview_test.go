package preview

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/lignin-slicer/pkg/slicer"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func sampleLayer(index int) slicer.Layer {
	return slicer.Layer{
		Index: index,
		Z:     float64(index) * 2,
		Groups: []slicer.IntersectionGroup{
			{{X: 6, Y: 4, Z: 2}, {X: 0, Y: 4, Z: 2}},
			{{X: 1, Y: 1, Z: 2}, {X: 2, Y: 3, Z: 2}, {X: 1, Y: 1, Z: 2}},
		},
	}
}

func TestLayerPlot(t *testing.T) {
	p, err := Layer(sampleLayer(1))
	if err != nil {
		t.Fatalf("Layer() error = %v", err)
	}
	if !strings.Contains(p.Title.Text, "Layer 1") {
		t.Errorf("title = %q", p.Title.Text)
	}
}

func TestWriteLayerPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLayer(&buf, sampleLayer(0), "png"); err != nil {
		t.Fatalf("WriteLayer() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestWriteLayerBadFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLayer(&buf, sampleLayer(0), "bogus"); err == nil {
		t.Error("WriteLayer() with unknown format returned nil error")
	}
}

func TestSaveLayers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "preview")
	single := slicer.Layer{Index: 3, Groups: []slicer.IntersectionGroup{{v3.Vec{X: 1, Y: 1}}}}
	paths, err := SaveLayers(dir, []slicer.Layer{sampleLayer(0), single})
	if err != nil {
		t.Fatalf("SaveLayers() error = %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[1]) != "layer_0003.png" {
		t.Fatalf("paths = %v", paths)
	}
	for _, p := range paths {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Errorf("%s missing or empty: %v", p, err)
		}
	}
}
