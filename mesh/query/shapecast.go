package query

import "github.com/crucible-phys/meshshape/types"

// ShapeCastVisitor implements spec.md §4.7's convex swept-shape-vs-mesh
// query: VisitNodes scales each child AABB by the per-query scale, enlarges
// it by the cast shape's box extent, then ray-tests against the cast
// direction; VisitTriangles hands each candidate triangle plus its active
// edges to the caller's oracle.
type ShapeCastVisitor struct {
	cast   ShapeCast
	oracle ShapeCastOracle
	origin types.Vec3
	invDir types.Vec3
	extent types.Vec3

	best   float32
	hasHit bool

	distances [StackCapacity]float32
	abort     bool
}

// NewShapeCastVisitor prepares a shape-cast visitor. maxFraction bounds how
// far along cast.Direction a hit may occur (1.0 covers the full sweep).
func NewShapeCastVisitor(cast ShapeCast, oracle ShapeCastOracle, maxFraction float32) *ShapeCastVisitor {
	bounds := cast.Shape.LocalBounds()
	return &ShapeCastVisitor{
		cast:   cast,
		oracle: oracle,
		origin: bounds.Center(),
		invDir: types.Vec3{invOrInf(cast.Direction[0]), invOrInf(cast.Direction[1]), invOrInf(cast.Direction[2])},
		extent: bounds.Extent().Mul(0.5),
		best:   maxFraction,
	}
}

func (v *ShapeCastVisitor) ShouldAbort() bool { return v.abort }

func (v *ShapeCastVisitor) ShouldVisitNode(stackTop int) bool {
	return v.distances[stackTop] < v.best
}

func (v *ShapeCastVisitor) VisitNodes(minX, minY, minZ, maxX, maxY, maxZ [4]float32, properties *[4]uint32, stackTop int) int {
	var frac [4]float32
	var hit [4]bool
	for i := 0; i < 4; i++ {
		bmin := types.Vec3{minX[i], minY[i], minZ[i]}
		bmax := types.Vec3{maxX[i], maxY[i], maxZ[i]}
		if bmin[0] > bmax[0] {
			continue
		}
		box := types.AABB{Min: bmin, Max: bmax}.Scaled(v.cast.Scale).Enlarged(v.extent)
		tMin, _, ok := box.RayIntersect(v.origin, v.invDir, v.best)
		frac[i], hit[i] = tMin, ok
	}

	order := sortedSurvivors(frac, hit)
	n := len(order)
	var newProps [4]uint32
	for i, idx := range order {
		newProps[i] = properties[idx]
		v.distances[stackTop+i] = frac[idx]
	}
	*properties = newProps
	return n
}

func (v *ShapeCastVisitor) VisitTriangles(verts [][3]types.Vec3, flags []byte, rootMin, rootMax types.Vec3, blockID uint32) {
	for i, vtx := range verts {
		tri := Triangle{V: vtx}
		hit, frac := v.oracle.CastAgainstTriangle(v.cast, tri, activeEdgesOf(flags[i]))
		if !hit || frac >= v.best {
			continue
		}
		v.best = frac
		v.hasHit = true
	}
}

// Result reports whether the cast found a hit and, if so, its fraction.
func (v *ShapeCastVisitor) Result() (fraction float32, hit bool) {
	return v.best, v.hasHit
}
