// Package gcode serializes toolpaths into a G-code command stream with a
// fixed start and end sequence.
package gcode

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/lignin-slicer/pkg/toolpath"
)

// Preamble is emitted before the first layer.
var Preamble = []string{
	"G21 ; set units to millimeters",
	"G90 ; use absolute coordinates",
	"M82 ; use absolute distances for extrusion",
	"G28 ; home all axes",
	"G1 Z15.0 F9000 ; move the platform down 15 mm",
	"G92 E0 ; zero the extruded length",
	"G1 F140 E30 ; extrude 30mm of feed stock",
	"G92 E0 ; zero the extruded length again",
	"G1 F9000",
}

// Postamble is emitted after the last layer.
var Postamble = []string{
	"; End of print",
	"M104 S0 ; turn off extruder",
	"M140 S0 ; turn off bed",
	"G91 ; relative positioning",
	"G1 E-1 F300 ; retract the filament a bit before lifting the nozzle to release some of the pressure",
	"G1 Z+0.5 E-5 X-20 Y-20 F9000 ; move Z up a bit and retract filament even more",
	"G28 X0 Y0 ; move X/Y to min endstops, so the head is out of the way",
	"M84 ; disable motors",
	"G90 ; absolute positioning",
}

// Emit returns the complete command stream for toolpaths.
func Emit(toolpaths []toolpath.Toolpath) string {
	var sb strings.Builder
	// strings.Builder never fails.
	_ = Write(&sb, toolpaths)
	return sb.String()
}

// Write streams the command stream for toolpaths to w.
func Write(w io.Writer, toolpaths []toolpath.Toolpath) error {
	bw := bufio.NewWriter(w)
	for _, l := range Preamble {
		bw.WriteString(l)
		bw.WriteByte('\n')
	}

	var line []byte
	for _, tp := range toolpaths {
		line = append(line[:0], "; Layer "...)
		line = strconv.AppendInt(line, int64(tp.LayerIndex), 10)
		line = append(line, '\n')
		bw.Write(line)
		for _, path := range tp.Paths {
			for _, p := range path {
				line = AppendMove(line[:0], p)
				bw.Write(line)
			}
		}
	}

	for _, l := range Postamble {
		bw.WriteString(l)
		bw.WriteByte('\n')
	}
	// bufio.Writer keeps the first error; Flush reports it.
	return bw.Flush()
}

// AppendMove appends the newline-terminated G1 line for p to b. Positions
// have two decimals, extrusion four, always in fixed-point notation.
func AppendMove(b []byte, p toolpath.MotionPoint) []byte {
	b = append(b, "G1 X"...)
	b = strconv.AppendFloat(b, p.X, 'f', 2, 64)
	b = append(b, " Y"...)
	b = strconv.AppendFloat(b, p.Y, 'f', 2, 64)
	b = append(b, " Z"...)
	b = strconv.AppendFloat(b, p.Z, 'f', 2, 64)
	b = append(b, " E"...)
	b = strconv.AppendFloat(b, p.E, 'f', 4, 64)
	b = append(b, " F"...)
	b = strconv.AppendInt(b, int64(p.F), 10)
	return append(b, '\n')
}
