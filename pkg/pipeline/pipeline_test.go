package pipeline_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/lignin-slicer/pkg/config"
	"github.com/chazu/lignin-slicer/pkg/gcode"
	"github.com/chazu/lignin-slicer/pkg/mesh"
	"github.com/chazu/lignin-slicer/pkg/pipeline"
	"github.com/chazu/lignin-slicer/pkg/slicer"
	"github.com/chazu/lignin-slicer/pkg/stl"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const wedgeASCII = `solid wedge
facet normal 0 0 1
 outer loop
  vertex 0 0 0
  vertex 10 0 0
  vertex 0 10 5
 endloop
endfacet
endsolid wedge
`

func TestRunWedge(t *testing.T) {
	cfg := config.Default()
	cfg.LayerHeight = 2

	res, err := pipeline.Run([]byte(wedgeASCII), cfg)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(res.GCode, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 18)
	assert.Equal(t, gcode.Preamble, lines[:9])
	assert.Equal(t, gcode.Postamble, lines[len(lines)-9:])

	var comments []string
	for _, l := range lines[9 : len(lines)-9] {
		if strings.HasPrefix(l, "; Layer ") {
			comments = append(comments, l)
		}
	}
	assert.Equal(t, []string{"; Layer 0", "; Layer 1", "; Layer 2"}, comments)
	assert.Equal(t, 6, res.Moves)
	assert.Contains(t, res.GCode, "G1 X6.00 Y4.00 Z2.00")
	assert.Contains(t, res.GCode, "G1 X0.00 Y4.00 Z2.00")
}

func TestRunEmptyMeshes(t *testing.T) {
	point := mesh.New([]mesh.Triangle{{{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}}})
	var buf bytes.Buffer
	require.NoError(t, stl.Write(&buf, point))

	inputs := map[string][]byte{
		"zero triangles": []byte("solid e\nendsolid e\n"),
		"point bounds":   buf.Bytes(),
	}
	want := gcode.Emit(nil)
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			res, err := pipeline.Run(data, config.Default())
			require.NoError(t, err)
			assert.Empty(t, res.Layers)
			assert.Empty(t, res.Toolpaths)
			assert.Equal(t, want, res.GCode)
		})
	}
}

func TestRunParseFailure(t *testing.T) {
	res, err := pipeline.Run([]byte("solid broken\nvertex 1 2\n"), config.Default())
	require.Error(t, err)
	assert.Nil(t, res)
	var pe *stl.ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestRunMeshInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LayerHeight = -1
	_, err := pipeline.RunMesh(mesh.New([]mesh.Triangle{{v3.Vec{}, v3.Vec{X: 1}, v3.Vec{Z: 1}}}), cfg)
	require.Error(t, err)
}

func TestRunRejectsUnsliceableHeights(t *testing.T) {
	tests := []struct {
		apex string
		want error
	}{
		{"inf", stl.ErrNonFinite},
		{"nan", stl.ErrNonFinite},
		{"1e30", slicer.ErrTooManyLayers},
	}
	for _, tt := range tests {
		t.Run(tt.apex, func(t *testing.T) {
			src := strings.Replace(wedgeASCII, "vertex 0 10 5", "vertex 0 10 "+tt.apex, 1)
			res, err := pipeline.Run([]byte(src), config.Default())
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.want), "err = %v", err)
		})
	}
}

func TestRunGapMeshStartsAtLayerZero(t *testing.T) {
	gap := mesh.New([]mesh.Triangle{
		{{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 5, Y: 6}},
		{{Z: 1}, {X: 2, Z: 2}, {Y: 2, Z: 2}},
	})
	res, err := pipeline.RunMesh(gap, config.Default())
	require.NoError(t, err)
	require.NotEmpty(t, res.Toolpaths)
	assert.Equal(t, 0, res.Toolpaths[0].LayerIndex)

	body := strings.Split(res.GCode, "\n")[len(gcode.Preamble):]
	assert.Equal(t, "; Layer 0", body[0])
	assert.True(t, strings.HasPrefix(body[1], "G1 X0.00 Y0.00 Z0.00 "), "first move %q", body[1])
}
