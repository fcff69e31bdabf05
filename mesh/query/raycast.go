package query

import (
	"math"

	"github.com/crucible-phys/meshshape/types"
)

// Ray is a query ray in the mesh's local space.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
}

// RayHit is one recorded ray/triangle intersection.
type RayHit struct {
	Fraction   float32
	SubShapeID SubShapeID
}

// BackFaceMode controls whether back-facing triangles produce hits, per
// spec.md §4.7's all-hit visitor.
type BackFaceMode int

const (
	// IgnoreBackFaces skips triangles whose normal faces away from the ray.
	IgnoreBackFaces BackFaceMode = iota
	// CollideWithBackFaces records hits against back-facing triangles too;
	// used by the point-in-mesh parity test.
	CollideWithBackFaces
)

// ClosestHitVisitor implements spec.md §4.7's closest ray cast: VisitNodes
// computes 4-wide ray/AABB entry fractions, sorts ascending, and culls any
// child whose entry fraction is not better than the current best; leaves
// run a fused ray-vs-triangle test.
type ClosestHitVisitor struct {
	ray         Ray
	invDir      types.Vec3
	blockIDBits uint
	triBits     uint

	best    float32
	hasHit  bool
	subshape SubShapeID

	distances [StackCapacity]float32
	abort     bool
}

// NewClosestHitVisitor prepares a closest-hit visitor for ray, using the
// given SubShapeID bit widths to encode a hit's identity.
func NewClosestHitVisitor(ray Ray, maxFraction float32, blockIDBits, triBits uint) *ClosestHitVisitor {
	return &ClosestHitVisitor{
		ray:         ray,
		invDir:      types.Vec3{invOrInf(ray.Dir[0]), invOrInf(ray.Dir[1]), invOrInf(ray.Dir[2])},
		blockIDBits: blockIDBits,
		triBits:     triBits,
		best:        maxFraction,
	}
}

func invOrInf(v float32) float32 {
	if v == 0 {
		return float32(math.Inf(1))
	}
	return 1 / v
}

func (v *ClosestHitVisitor) ShouldAbort() bool { return v.abort }

func (v *ClosestHitVisitor) ShouldVisitNode(stackTop int) bool {
	return v.distances[stackTop] < v.best
}

func (v *ClosestHitVisitor) VisitNodes(minX, minY, minZ, maxX, maxY, maxZ [4]float32, properties *[4]uint32, stackTop int) int {
	var frac [4]float32
	var hit [4]bool
	for i := 0; i < 4; i++ {
		bmin := types.Vec3{minX[i], minY[i], minZ[i]}
		bmax := types.Vec3{maxX[i], maxY[i], maxZ[i]}
		if bmin[0] > bmax[0] {
			hit[i] = false
			continue
		}
		box := types.AABB{Min: bmin, Max: bmax}
		tMin, _, ok := box.RayIntersect(v.ray.Origin, v.invDir, v.best)
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

func (v *ClosestHitVisitor) VisitTriangles(verts [][3]types.Vec3, flags []byte, rootMin, rootMax types.Vec3, blockID uint32) {
	for i, tri := range verts {
		frac, ok := rayTriangleIntersect(v.ray.Origin, v.ray.Dir, tri, v.best, false)
		if !ok {
			continue
		}
		v.best = frac
		v.hasHit = true
		v.subshape = Encode(blockID, uint32(i), v.blockIDBits, v.triBits)
	}
}

// Result returns the closest hit found, if any.
func (v *ClosestHitVisitor) Result() (RayHit, bool) {
	if !v.hasHit {
		return RayHit{}, false
	}
	return RayHit{Fraction: v.best, SubShapeID: v.subshape}, true
}

// AllHitVisitor implements spec.md §4.7's all-hit ray cast: every triangle
// under the early-out fraction is reported, optionally including
// back-facing ones.
type AllHitVisitor struct {
	ray          Ray
	invDir       types.Vec3
	blockIDBits  uint
	triBits      uint
	earlyOut     float32
	backFaceMode BackFaceMode

	Hits []RayHit

	distances [StackCapacity]float32
	abort     bool
}

// NewAllHitVisitor prepares an all-hit visitor.
func NewAllHitVisitor(ray Ray, maxFraction float32, mode BackFaceMode, blockIDBits, triBits uint) *AllHitVisitor {
	return &AllHitVisitor{
		ray:          ray,
		invDir:       types.Vec3{invOrInf(ray.Dir[0]), invOrInf(ray.Dir[1]), invOrInf(ray.Dir[2])},
		blockIDBits:  blockIDBits,
		triBits:      triBits,
		earlyOut:     maxFraction,
		backFaceMode: mode,
	}
}

func (v *AllHitVisitor) ShouldAbort() bool { return v.abort }

func (v *AllHitVisitor) ShouldVisitNode(stackTop int) bool {
	return v.distances[stackTop] < v.earlyOut
}

func (v *AllHitVisitor) VisitNodes(minX, minY, minZ, maxX, maxY, maxZ [4]float32, properties *[4]uint32, stackTop int) int {
	var frac [4]float32
	var hit [4]bool
	for i := 0; i < 4; i++ {
		bmin := types.Vec3{minX[i], minY[i], minZ[i]}
		bmax := types.Vec3{maxX[i], maxY[i], maxZ[i]}
		if bmin[0] > bmax[0] {
			continue
		}
		box := types.AABB{Min: bmin, Max: bmax}
		tMin, _, ok := box.RayIntersect(v.ray.Origin, v.invDir, v.earlyOut)
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

func (v *AllHitVisitor) VisitTriangles(verts [][3]types.Vec3, flags []byte, rootMin, rootMax types.Vec3, blockID uint32) {
	for i, tri := range verts {
		backFace := v.backFaceMode == IgnoreBackFaces
		frac, ok := rayTriangleIntersect(v.ray.Origin, v.ray.Dir, tri, v.earlyOut, backFace)
		if !ok {
			continue
		}
		v.Hits = append(v.Hits, RayHit{
			Fraction:   frac,
			SubShapeID: Encode(blockID, uint32(i), v.blockIDBits, v.triBits),
		})
	}
}

// sortedSurvivors returns the indices of hit[i]==true entries in ascending
// frac order, matching spec.md §4.7's "sorted by ascending fraction" rule.
func sortedSurvivors(frac [4]float32, hit [4]bool) []int {
	var order []int
	for i := 0; i < 4; i++ {
		if hit[i] {
			order = append(order, i)
		}
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && frac[order[j]] < frac[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

// rayTriangleIntersect is a Möller-Trumbore ray/triangle test. When
// skipBackFace is true, triangles whose normal faces the same direction as
// dir (i.e. the ray hits the back) are skipped, per spec.md §4.7's back-face
// culling rule: sign of (v2-v0) x (v1-v0) . dir.
func rayTriangleIntersect(origin, dir types.Vec3, tri [3]types.Vec3, maxFraction float32, skipBackFace bool) (float32, bool) {
	const epsilon = 1e-7

	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])

	if skipBackFace {
		n := e2.Cross(e1)
		if n.Dot(dir) >= 0 {
			return 0, false
		}
	}

	h := dir.Cross(e2)
	a := e1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false
	}

	f := 1 / a
	s := origin.Sub(tri[0])
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	w := f * dir.Dot(q)
	if w < 0 || u+w > 1 {
		return 0, false
	}

	t := f * e2.Dot(q)
	if t < epsilon || t >= maxFraction {
		return 0, false
	}
	return t, true
}
