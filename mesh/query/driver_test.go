package query

import (
	"testing"

	"github.com/crucible-phys/meshshape/mesh/codec"
	"github.com/crucible-phys/meshshape/types"
)

// buildSingleLeafTree constructs the smallest possible serialized tree: one
// node block (the root's children) with a single populated leaf child
// holding one triangle, and three empty sentinel slots.
func buildSingleLeafTree(t *testing.T, tri [3]types.Vec3) *Tree {
	t.Helper()

	root := types.AABB{Min: types.Vec3{-10, -10, -10}, Max: types.Vec3{10, 10, 10}}
	ref := codec.NewQuantizeRef(root)

	triBuf, leafBounds := codec.EncodeTriangleBlock([]codec.EncodedTriangle{
		{V: tri, MaterialIndex: 0, ActiveEdgeBits: 0x7},
	}, ref)

	var block codec.NodeBlock
	block.MinX[0] = codec.Float32To16(leafBounds.Min[0])
	block.MinY[0] = codec.Float32To16(leafBounds.Min[1])
	block.MinZ[0] = codec.Float32To16(leafBounds.Min[2])
	block.MaxX[0] = codec.Float32To16(leafBounds.Max[0])
	block.MaxY[0] = codec.Float32To16(leafBounds.Max[1])
	block.MaxZ[0] = codec.Float32To16(leafBounds.Max[2])
	block.Properties[0] = codec.LeafProperty(0)

	for i := 1; i < 4; i++ {
		minH, maxH := codec.EmptyChild()
		block.MinX[i], block.MaxX[i] = minH, maxH
		block.MinY[i], block.MaxY[i] = minH, maxH
		block.MinZ[i], block.MaxZ[i] = minH, maxH
	}

	buf := block.Encode(nil)
	triOffset := uint32(len(buf))
	buf = append(buf, triBuf...)

	return &Tree{
		RootMin:         root.Min,
		RootMax:         root.Max,
		Buf:             buf,
		TriBlockOffsets: []uint32{triOffset},
		Ref:             ref,
	}
}

func TestClosestHitVisitorHitsSingleTriangle(t *testing.T) {
	tri := [3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	tree := buildSingleLeafTree(t, tri)

	ray := Ray{Origin: types.Vec3{0.2, 0.2, -5}, Dir: types.Vec3{0, 0, 10}}
	v := NewClosestHitVisitor(ray, 1, 1, 3)
	Walk(tree, v)

	hit, ok := v.Result()
	if !ok {
		t.Fatalf("expected a hit")
	}
	if hit.Fraction < 0.49 || hit.Fraction > 0.51 {
		t.Fatalf("expected fraction near 0.5, got %v", hit.Fraction)
	}
}

func TestClosestHitVisitorMissesTriangle(t *testing.T) {
	tri := [3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	tree := buildSingleLeafTree(t, tri)

	ray := Ray{Origin: types.Vec3{5, 5, -5}, Dir: types.Vec3{0, 0, 10}}
	v := NewClosestHitVisitor(ray, 1, 1, 3)
	Walk(tree, v)

	if _, ok := v.Result(); ok {
		t.Fatalf("expected no hit")
	}
}

func TestAllHitVisitorRespectsBackFaceMode(t *testing.T) {
	tri := [3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	tree := buildSingleLeafTree(t, tri)

	// The back-face test in rayTriangleIntersect uses the (v2-v0)x(v1-v0)
	// normal, which points toward -Z for this triangle, so a ray traveling in
	// +Z hits its front face.
	ray := Ray{Origin: types.Vec3{0.2, 0.2, -5}, Dir: types.Vec3{0, 0, 10}}

	front := NewAllHitVisitor(ray, 1, IgnoreBackFaces, 1, 3)
	Walk(tree, front)
	if len(front.Hits) != 1 {
		t.Fatalf("expected front-face hit, got %d hits", len(front.Hits))
	}

	backRay := Ray{Origin: types.Vec3{0.2, 0.2, 5}, Dir: types.Vec3{0, 0, -10}}
	backCulled := NewAllHitVisitor(backRay, 1, IgnoreBackFaces, 1, 3)
	Walk(tree, backCulled)
	if len(backCulled.Hits) != 0 {
		t.Fatalf("expected back face to be culled, got %d hits", len(backCulled.Hits))
	}

	backAllowed := NewAllHitVisitor(backRay, 1, CollideWithBackFaces, 1, 3)
	Walk(tree, backAllowed)
	if len(backAllowed.Hits) != 1 {
		t.Fatalf("expected back face hit when enabled, got %d hits", len(backAllowed.Hits))
	}
}

func TestSubShapeIDRoundTrip(t *testing.T) {
	id := Encode(5, 3, 4, 3)
	block, tri := id.Decode(3)
	if block != 5 || tri != 3 {
		t.Fatalf("expected block=5 tri=3, got block=%d tri=%d", block, tri)
	}
}

func TestComputeStatsCountsSingleLeaf(t *testing.T) {
	tri := [3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	tree := buildSingleLeafTree(t, tri)

	stats := ComputeStats(tree)
	if stats.Triangles != 1 {
		t.Fatalf("expected 1 triangle, got %d", stats.Triangles)
	}
	if stats.Leaves != 1 {
		t.Fatalf("expected 1 leaf, got %d", stats.Leaves)
	}
}

func TestCollidePointParity(t *testing.T) {
	// A single flat triangle isn't a watertight mesh, but the +Y ray parity
	// count is still well defined: a point whose (x,z) projects inside the
	// triangle's footprint crosses it exactly once (odd => inside); a point
	// outside the footprint crosses zero times (even => outside).
	tri := [3]types.Vec3{{-5, 0, -5}, {5, 0, -5}, {0, 0, 5}}
	tree := buildSingleLeafTree(t, tri)

	insideFootprint := types.Vec3{0, -1, 0}
	if !CollidePoint(tree, insideFootprint, 1, 3) {
		t.Fatalf("expected a point under the triangle's footprint to report inside")
	}

	outsideFootprint := types.Vec3{10, -1, 0}
	if CollidePoint(tree, outsideFootprint, 1, 3) {
		t.Fatalf("expected a point outside the triangle's footprint to report outside")
	}
}
