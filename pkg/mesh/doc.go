// Package mesh defines the triangle mesh consumed by the slicer.
// A Mesh is a flat list of triangles plus the axis-aligned bounding box
// of all their vertices, computed once at construction.
package mesh
