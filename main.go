// Command lignin-slicer converts an STL mesh into G-code.
//
//	lignin-slicer -in part.stl -out part.gcode -layer-height 0.2
//	lignin-slicer -box 20,20,10 -preview previews/
//	lignin-slicer -box 20,20,4 -hole 3 -cylinder 6,2
//	lignin-slicer -store ./public -in model.stl
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/lignin-slicer/pkg/config"
	"github.com/chazu/lignin-slicer/pkg/kernel"
	"github.com/chazu/lignin-slicer/pkg/kernel/sdfx"
	"github.com/chazu/lignin-slicer/pkg/logging"
	"github.com/chazu/lignin-slicer/pkg/mesh"
	"github.com/chazu/lignin-slicer/pkg/pipeline"
	"github.com/chazu/lignin-slicer/pkg/preview"
	"github.com/chazu/lignin-slicer/pkg/stl"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lignin-slicer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		in          = fs.String("in", "", "input STL file (\"-\" for stdin)")
		out         = fs.String("out", "", "output G-code file (default from config, \"-\" for stdout)")
		profile     = fs.String("config", "", "JSON slicing profile")
		layerHeight = fs.Float64("layer-height", 0, "layer height in mm (overrides profile)")
		workers     = fs.Int("workers", 0, "concurrent plane scans (overrides profile)")
		keepDegen   = fs.Bool("keep-degenerate", false, "emit in-plane edges as zero-length intersections")
		previewDir  = fs.String("preview", "", "directory for per-layer PNG previews")
		box         = fs.String("box", "", "slice a generated box X,Y,Z instead of a file")
		cylinder    = fs.String("cylinder", "", "slice a generated cylinder HEIGHT,RADIUS instead of a file (with -box: stacked on its top center)")
		hole        = fs.Float64("hole", 0, "bore a vertical hole of this radius through the generated shape")
		cells       = fs.Int("cells", sdfx.DefaultMeshCells, "marching cubes resolution for generated shapes")
		store       = fs.String("store", "", "treat -in as a file inside this store directory and save the G-code next to it")
		verbose     = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *profile != "" {
		var err error
		if cfg, err = config.Load(*profile); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}
	if *layerHeight != 0 {
		cfg.LayerHeight = *layerHeight
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}
	if *keepDegen {
		cfg.KeepDegenerate = true
	}
	if *out != "" {
		cfg.Output = *out
	}
	if *previewDir != "" {
		cfg.PreviewDir = *previewDir
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if *store != "" {
		res := NewApp(*store, cfg).Slice(SliceRequest{File: *in})
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(stderr, "error writing result: %v\n", err)
			return 1
		}
		if !res.Success {
			return 1
		}
		return 0
	}

	m, err := loadMesh(*in, shape{box: *box, cylinder: *cylinder, hole: *hole, cells: *cells}, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	res, err := pipeline.RunMesh(m, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if len(res.Layers) == 0 {
		fmt.Fprintln(stderr, "warning: mesh produced no layers")
	}

	if err := writeOutput(cfg.Output, res.GCode, stdout); err != nil {
		fmt.Fprintf(stderr, "error writing G-code: %v\n", err)
		return 1
	}
	if cfg.PreviewDir != "" {
		if _, err := preview.SaveLayers(cfg.PreviewDir, res.Layers); err != nil {
			fmt.Fprintf(stderr, "error writing previews: %v\n", err)
			return 1
		}
	}
	return 0
}

// shape describes a generated solid. Zero fields are unused.
type shape struct {
	box      string
	cylinder string
	hole     float64
	cells    int
}

func (s shape) generated() bool {
	return s.box != "" || s.cylinder != ""
}

// loadMesh picks the mesh source: a generated shape or an STL file.
func loadMesh(in string, s shape, stdin io.Reader) (*mesh.Mesh, error) {
	if s.generated() {
		k := sdfx.New(s.cells)
		solid, err := buildShape(k, s)
		if err != nil {
			return nil, err
		}
		return k.ToMesh(solid)
	}
	if s.hole != 0 {
		return nil, fmt.Errorf("-hole needs -box or -cylinder")
	}
	switch {
	case in == "-":
		return stl.Read(stdin)
	case in != "":
		f, err := os.Open(in)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return stl.Read(f)
	default:
		return nil, fmt.Errorf("one of -in, -box or -cylinder is required")
	}
}

// buildShape composes the generated solid. A box with a cylinder gets the
// cylinder standing on the center of its top face. The hole runs along Z
// through the center of the base shape and is cut before any union.
func buildShape(k kernel.Kernel, s shape) (kernel.Solid, error) {
	if s.hole < 0 {
		return nil, fmt.Errorf("-hole: radius must be > 0, got %v", s.hole)
	}

	var (
		base        kernel.Solid
		cx, cy, top float64
		maxHole     float64
	)
	if s.box != "" {
		v, err := parseFloats(s.box, 3)
		if err != nil {
			return nil, fmt.Errorf("-box: %w", err)
		}
		base = k.Box(v[0], v[1], v[2])
		cx, cy, top = v[0]/2, v[1]/2, v[2]
		maxHole = math.Min(v[0], v[1]) / 2
	}

	var cyl kernel.Solid
	if s.cylinder != "" {
		v, err := parseFloats(s.cylinder, 2)
		if err != nil {
			return nil, fmt.Errorf("-cylinder: %w", err)
		}
		cyl = k.Cylinder(v[0], v[1])
		if base == nil {
			base, cyl = cyl, nil
			top, maxHole = v[0], v[1]
		}
	}

	if s.hole > 0 {
		if s.hole >= maxHole {
			return nil, fmt.Errorf("-hole: radius %v does not fit inside the shape", s.hole)
		}
		// Overshoot both faces so the cut leaves no skin.
		bore := k.Translate(k.Cylinder(top+2, s.hole), cx, cy, -1)
		base = k.Difference(base, bore)
	}
	if cyl != nil {
		base = k.Union(base, k.Translate(cyl, cx, cy, top))
	}
	return base, nil
}

// parseFloats parses exactly n comma separated positive numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma separated values, got %q", n, s)
	}
	v := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", p)
		}
		if f <= 0 {
			return nil, fmt.Errorf("dimension must be > 0, got %v", f)
		}
		v[i] = f
	}
	return v, nil
}

func writeOutput(path, gcode string, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(stdout, gcode)
		return err
	}
	return writeAtomic(path, []byte(gcode))
}
