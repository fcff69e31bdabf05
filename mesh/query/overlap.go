package query

import "github.com/crucible-phys/meshshape/types"

// OverlapVisitor implements spec.md §4.7's convex-vs-mesh overlap query:
// VisitNodes scales child AABBs by the mesh's per-query scale and tests each
// against the convex shape's bounding box expressed in mesh space, survivors
// sorted hits-first; VisitTriangles invokes the caller's overlap oracle per
// candidate triangle.
type OverlapVisitor struct {
	shape  ConvexShape
	scale  types.Vec3
	oracle OverlapOracle

	shapeBounds types.AABB

	Hit bool

	abort bool
}

// NewOverlapVisitor prepares an overlap visitor for shape (already expressed
// in the mesh's local space by the caller) against a mesh scaled by scale.
func NewOverlapVisitor(shape ConvexShape, scale types.Vec3, oracle OverlapOracle) *OverlapVisitor {
	return &OverlapVisitor{
		shape:       shape,
		scale:       scale,
		oracle:      oracle,
		shapeBounds: shape.LocalBounds(),
	}
}

func (v *OverlapVisitor) ShouldAbort() bool { return v.abort }

// ShouldVisitNode has no side-band distance to check for overlap queries;
// every pushed survivor is worth visiting.
func (v *OverlapVisitor) ShouldVisitNode(stackTop int) bool { return true }

func (v *OverlapVisitor) VisitNodes(minX, minY, minZ, maxX, maxY, maxZ [4]float32, properties *[4]uint32, stackTop int) int {
	var hit, valid [4]bool
	for i := 0; i < 4; i++ {
		bmin := types.Vec3{minX[i], minY[i], minZ[i]}
		bmax := types.Vec3{maxX[i], maxY[i], maxZ[i]}
		if bmin[0] > bmax[0] {
			continue
		}
		valid[i] = true
		box := types.AABB{Min: bmin, Max: bmax}.Scaled(v.scale)
		hit[i] = box.Overlaps(v.shapeBounds)
	}

	// Hits first, matching spec.md §4.7's "survivors sorted with hits
	// first" (there's no distance metric for overlap, so within each group
	// original order is preserved). Only the hits are counted as survivors:
	// empty sentinel slots and children whose boxes miss the shape's bounds
	// are not visited.
	var order []int
	for i := 0; i < 4; i++ {
		if valid[i] && hit[i] {
			order = append(order, i)
		}
	}
	hits := len(order)
	for i := 0; i < 4; i++ {
		if valid[i] && !hit[i] {
			order = append(order, i)
		}
	}

	var newProps [4]uint32
	for i, idx := range order {
		newProps[i] = properties[idx]
	}
	*properties = newProps
	return hits
}

func (v *OverlapVisitor) VisitTriangles(verts [][3]types.Vec3, flags []byte, rootMin, rootMax types.Vec3, blockID uint32) {
	if v.Hit {
		v.abort = true
		return
	}
	for i, vtx := range verts {
		tri := Triangle{V: vtx}
		if v.oracle.OverlapsTriangle(v.shape, tri, activeEdgesOf(flags[i])) {
			v.Hit = true
			v.abort = true
			return
		}
	}
}

// OBBAxes returns the world-space axes of an oriented bounding box with the
// given quaternion rotation, for callers building a
// ConvexShape's local bounds from an OBB rather than an AABB.
func OBBAxes(rotation types.Quat) (x, y, z types.Vec3) {
	return rotation.Basis()
}
