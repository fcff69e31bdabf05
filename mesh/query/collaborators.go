package query

import (
	"github.com/crucible-phys/meshshape/mesh/codec"
	"github.com/crucible-phys/meshshape/types"
)

// ConvexShape is the minimal surface the shape-cast and overlap visitors
// need from a caller-supplied convex collider, per SPEC_FULL.md §4.8. Actual
// convex geometry and contact generation stay outside this module, matching
// spec.md §1's Non-goals.
type ConvexShape interface {
	LocalBounds() types.AABB
	SupportPoint(direction types.Vec3) types.Vec3
}

// Triangle mirrors mesh.Triangle's shape without importing package mesh, to
// keep query free of a dependency cycle (mesh imports query to expose the
// public Shape API).
type Triangle struct {
	V [3]types.Vec3
}

// ShapeCastOracle performs a convex-vs-triangle sweep test. The mesh
// traversal only narrows candidates by bounding volume; the actual
// intersection math is the caller's responsibility.
type ShapeCastOracle interface {
	CastAgainstTriangle(cast ShapeCast, tri Triangle, activeEdges [3]bool) (hit bool, fraction float32)
}

// OverlapOracle performs a convex-vs-triangle overlap test.
type OverlapOracle interface {
	OverlapsTriangle(shape ConvexShape, tri Triangle, activeEdges [3]bool) bool
}

// ShapeCast describes a convex shape swept along a direction, in the mesh's
// local space, per spec.md §4.7.
type ShapeCast struct {
	Shape     ConvexShape
	Direction types.Vec3
	Scale     types.Vec3
}

func activeEdgesOf(flags byte) [3]bool {
	_, bits := codec.DecodeTriangleFlags(flags)
	return [3]bool{bits&1 != 0, bits&2 != 0, bits&4 != 0}
}

func materialIndexOf(flags byte) uint32 {
	mat, _ := codec.DecodeTriangleFlags(flags)
	return mat
}
