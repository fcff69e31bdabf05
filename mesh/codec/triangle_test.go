package codec

import (
	"testing"

	"github.com/crucible-phys/meshshape/types"
)

func TestTriangleFlagsRoundTrip(t *testing.T) {
	b := EncodeTriangleFlags(17, 0x5)
	mat, edges := DecodeTriangleFlags(b)
	if mat != 17 {
		t.Fatalf("expected material 17, got %d", mat)
	}
	if edges != 0x5 {
		t.Fatalf("expected active edge bits 0x5, got %#x", edges)
	}
}

func TestEncodeDecodeTriangleBlock(t *testing.T) {
	root := types.AABB{Min: types.Vec3{-10, -10, -10}, Max: types.Vec3{10, 10, 10}}
	ref := NewQuantizeRef(root)

	tris := []EncodedTriangle{
		{V: [3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, MaterialIndex: 2, ActiveEdgeBits: 0x3},
		{V: [3]types.Vec3{{1, 0, 0}, {2, 0, 0}, {1, 1, 0}}, MaterialIndex: 2, ActiveEdgeBits: 0x1},
	}

	buf, bounds := EncodeTriangleBlock(tris, ref)
	if bounds.IsEmpty() {
		t.Fatalf("expected non-empty decoded bounds")
	}

	decoded := DecodeTriangleBlockVertices(buf, ref)
	if len(decoded) != len(tris) {
		t.Fatalf("expected %d decoded triangles, got %d", len(tris), len(decoded))
	}

	// Shared vertex {1,0,0} should decode to the same quantized position
	// from both triangles.
	if decoded[0][1] != decoded[1][0] {
		t.Fatalf("expected shared vertex to decode identically: %v vs %v", decoded[0][1], decoded[1][0])
	}

	for ti, tri := range decoded {
		for c := 0; c < 3; c++ {
			if !bounds.Contains(tri[c]) {
				t.Fatalf("decoded vertex %d of triangle %d not contained in reported bounds", c, ti)
			}
		}
	}

	flags := DecodeTriangleBlockFlags(buf)
	if len(flags) != len(tris) {
		t.Fatalf("expected %d flag bytes, got %d", len(tris), len(flags))
	}
	mat0, edges0 := DecodeTriangleFlags(flags[0])
	if mat0 != 2 || edges0 != 0x3 {
		t.Fatalf("triangle 0 flags mismatch: mat=%d edges=%#x", mat0, edges0)
	}
}

func TestDecodedBoundsContainTrueTriangleAABB(t *testing.T) {
	root := types.AABB{Min: types.Vec3{-10, -10, -10}, Max: types.Vec3{10, 10, 10}}
	ref := NewQuantizeRef(root)

	tris := []EncodedTriangle{
		{V: [3]types.Vec3{{1.2, -3.7, 0.05}, {4.9, -1.1, 2.3}, {2.0, 0.6, -0.8}}},
	}
	_, bounds := EncodeTriangleBlock(tris, ref)

	var trueMin, trueMax types.Vec3 = tris[0].V[0], tris[0].V[0]
	for c := 1; c < 3; c++ {
		trueMin = types.MinVec3(trueMin, tris[0].V[c])
		trueMax = types.MaxVec3(trueMax, tris[0].V[c])
	}

	for i := 0; i < 3; i++ {
		if bounds.Min[i] > trueMin[i] {
			t.Fatalf("decoded bounds min[%d]=%v rounded inward of true min %v", i, bounds.Min[i], trueMin[i])
		}
		if bounds.Max[i] < trueMax[i] {
			t.Fatalf("decoded bounds max[%d]=%v rounded inward of true max %v", i, bounds.Max[i], trueMax[i])
		}
	}
}

func TestQuantizationStaysWithinReferenceBounds(t *testing.T) {
	root := types.AABB{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{1, 1, 1}}
	ref := NewQuantizeRef(root)

	tris := []EncodedTriangle{
		{V: [3]types.Vec3{{0, 0, 0}, {1, 1, 1}, {0.5, 0.5, 0.5}}},
	}
	_, bounds := EncodeTriangleBlock(tris, ref)

	if !root.Contains(bounds.Min) || !root.Contains(bounds.Max) {
		t.Fatalf("decoded bounds %+v escaped reference AABB %+v", bounds, root)
	}
}
