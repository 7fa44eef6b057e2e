// Package stl reads and writes stereolithography triangle meshes in both
// the ASCII and the binary encoding.
package stl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chazu/lignin-slicer/pkg/mesh"
)

const (
	headerSize = 80
	recordSize = 50 // normal + 3 vertices as float32, uint16 attribute
)

// ErrTruncated is returned (wrapped in a *ParseError) when binary data ends
// before the declared triangle count.
var ErrTruncated = errors.New("unexpected end of data")

// ErrNonFinite is returned (wrapped in a *ParseError) for NaN or infinite
// coordinates.
var ErrNonFinite = errors.New("non-finite coordinate")

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// ParseError describes malformed mesh input. Line is 0 for binary input.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("stl: line %d: %s", e.Line, e.Msg)
	}
	return "stl: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes an ASCII or binary STL document into a mesh.
//
// Data whose length matches the binary layout exactly is treated as binary
// even when the header begins with "solid", which many exporters emit.
func Parse(data []byte) (*mesh.Mesh, error) {
	if isBinary(data) {
		return parseBinary(data)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return parseASCII(data)
	}
	if len(data) < headerSize+4 {
		return nil, &ParseError{Msg: "input too short for binary STL", Err: ErrTruncated}
	}
	return parseBinary(data)
}

// Read is Parse over an io.Reader.
func Read(r io.Reader) (*mesh.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("stl: read: %w", err)
	}
	return Parse(data)
}

func isBinary(data []byte) bool {
	if len(data) < headerSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[headerSize:])
	return uint64(len(data)) == uint64(headerSize+4)+uint64(n)*recordSize
}
