package stl

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/lignin-slicer/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// asciiParser is a line-oriented state machine over the ASCII grammar:
//
//	solid name
//	  facet normal nx ny nz
//	    outer loop
//	      vertex x y z (x3)
//	    endloop
//	  endfacet
//	endsolid name
type asciiParser struct {
	line   int
	tris   []mesh.Triangle
	verts  []v3.Vec
	inLoop bool
	facet  bool
	ended  bool
}

func parseASCII(data []byte) (*mesh.Mesh, error) {
	p := &asciiParser{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	started := false

	for sc.Scan() {
		p.line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if !started {
			if fields[0] != "solid" {
				return nil, p.errorf("expected solid, got %q", fields[0])
			}
			started = true
			continue
		}
		if p.ended {
			// Some exporters concatenate several solids in one file.
			if fields[0] == "solid" {
				p.ended = false
				continue
			}
			return nil, p.errorf("unexpected %q after endsolid", fields[0])
		}
		if err := p.handle(fields); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Line: p.line, Msg: "scan failed", Err: err}
	}
	if p.facet || p.inLoop {
		return nil, &ParseError{Line: p.line, Msg: "unterminated facet", Err: ErrTruncated}
	}
	if !p.ended {
		return nil, &ParseError{Line: p.line, Msg: "missing endsolid", Err: ErrTruncated}
	}
	return mesh.New(p.tris), nil
}

func (p *asciiParser) handle(fields []string) error {
	switch fields[0] {
	case "facet":
		if p.facet {
			return p.errorf("nested facet")
		}
		if len(fields) != 5 || fields[1] != "normal" {
			return p.errorf("malformed facet normal")
		}
		// The stored normal is ignored; it is implied by vertex order.
		if _, err := parseVec(fields[2:]); err != nil {
			return p.wrap(err, "facet normal")
		}
		p.facet = true
	case "outer":
		if !p.facet || p.inLoop {
			return p.errorf("unexpected outer loop")
		}
		if len(fields) != 2 || fields[1] != "loop" {
			return p.errorf("malformed outer loop")
		}
		p.inLoop = true
		p.verts = p.verts[:0]
	case "vertex":
		if !p.inLoop {
			return p.errorf("vertex outside loop")
		}
		if len(fields) != 4 {
			return p.errorf("vertex needs 3 coordinates, got %d", len(fields)-1)
		}
		v, err := parseVec(fields[1:])
		if err != nil {
			return p.wrap(err, "vertex")
		}
		p.verts = append(p.verts, v)
	case "endloop":
		if !p.inLoop {
			return p.errorf("endloop without outer loop")
		}
		if len(p.verts) != 3 {
			return p.errorf("facet has %d vertices, want 3", len(p.verts))
		}
		p.tris = append(p.tris, mesh.Triangle{p.verts[0], p.verts[1], p.verts[2]})
		p.inLoop = false
	case "endfacet":
		if !p.facet || p.inLoop {
			return p.errorf("unexpected endfacet")
		}
		p.facet = false
	case "endsolid":
		if p.facet {
			return p.errorf("endsolid inside facet")
		}
		p.ended = true
	default:
		return p.errorf("unknown keyword %q", fields[0])
	}
	return nil
}

func (p *asciiParser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *asciiParser) wrap(err error, what string) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf("%s: %v", what, err), Err: err}
}

func parseVec(f []string) (v3.Vec, error) {
	var c [3]float64
	for i := range c {
		x, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return v3.Vec{}, fmt.Errorf("bad number %q", f[i])
		}
		if !finite(x) {
			return v3.Vec{}, fmt.Errorf("%w %q", ErrNonFinite, f[i])
		}
		c[i] = x
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}
