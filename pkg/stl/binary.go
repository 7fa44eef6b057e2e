package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chazu/lignin-slicer/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func parseBinary(data []byte) (*mesh.Mesh, error) {
	n := binary.LittleEndian.Uint32(data[headerSize:])
	body := data[headerSize+4:]
	if uint64(len(body)) < uint64(n)*recordSize {
		return nil, &ParseError{
			Msg: fmt.Sprintf("header declares %d triangles, data holds %d", n, len(body)/recordSize),
			Err: ErrTruncated,
		}
	}

	tris := make([]mesh.Triangle, n)
	for i := range tris {
		rec := body[i*recordSize:]
		// Offset 0 is the stored normal; it is checked but not kept.
		if _, err := readVec(rec, 0); err != nil {
			return nil, &ParseError{Msg: fmt.Sprintf("triangle %d normal: %v", i, err), Err: ErrNonFinite}
		}
		for v := 0; v < 3; v++ {
			vec, err := readVec(rec, 12+12*v)
			if err != nil {
				return nil, &ParseError{Msg: fmt.Sprintf("triangle %d vertex %d: %v", i, v, err), Err: ErrNonFinite}
			}
			tris[i][v] = vec
		}
	}
	return mesh.New(tris), nil
}

// readVec decodes three little-endian float32 values at off.
func readVec(rec []byte, off int) (v3.Vec, error) {
	var c [3]float64
	for i := range c {
		c[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[off+4*i:])))
		if !finite(c[i]) {
			return v3.Vec{}, fmt.Errorf("non-finite coordinate %v", c[i])
		}
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// Write encodes m as binary STL. Facet normals are recomputed from vertex
// order.
func Write(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	var header [headerSize]byte
	copy(header[:], "lignin-slicer")
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("stl: write header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(m.TriangleCount())); err != nil {
		return fmt.Errorf("stl: write count: %w", err)
	}

	var rec [recordSize]byte
	for i, t := range m.Triangles {
		put := func(off int, v v3.Vec) {
			binary.LittleEndian.PutUint32(rec[off:], math.Float32bits(float32(v.X)))
			binary.LittleEndian.PutUint32(rec[off+4:], math.Float32bits(float32(v.Y)))
			binary.LittleEndian.PutUint32(rec[off+8:], math.Float32bits(float32(v.Z)))
		}
		put(0, t.Normal())
		put(12, t[0])
		put(24, t[1])
		put(36, t[2])
		if _, err := bw.Write(rec[:]); err != nil {
			return fmt.Errorf("stl: write triangle %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// WriteFile writes m as binary STL to path.
func WriteFile(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
