package query

import "github.com/crucible-phys/meshshape/types"

// CollidePoint implements spec.md §4.7's point-in-mesh test: if point lies
// within the root bounds, cast a ray from point along +Y of length
// 1.1*bounds.height with back-faces enabled, and return true iff the hit
// count is odd. It deliberately reuses the all-hit visitor rather than a
// bespoke one, per spec.md's wording.
func CollidePoint(tree *Tree, point types.Vec3, blockIDBits, triBits uint) bool {
	bounds := types.AABB{Min: tree.RootMin, Max: tree.RootMax}
	if !bounds.Contains(point) {
		return false
	}

	height := bounds.Extent()[1]
	length := 1.1 * height
	if length <= 0 {
		length = 1
	}

	ray := Ray{Origin: point, Dir: types.Vec3{0, length, 0}}
	v := NewAllHitVisitor(ray, 1, CollideWithBackFaces, blockIDBits, triBits)
	Walk(tree, v)

	return len(v.Hits)%2 == 1
}
