package codec

import (
	"math"

	"github.com/crucible-phys/meshshape/types"
)

// SerializedMaterialBits is how many bits of a triangle's material index
// survive into the compact per-triangle flag byte. spec.md §4.4 calls for a
// single "per-triangle 8-bit flags" byte shared with the 3 active-edge bits,
// so the pre-serialization 6-bit material index (spec.md §3's MATERIAL_MASK)
// is narrowed to 5 bits at this boundary; see DESIGN.md for the reasoning.
const SerializedMaterialBits = 5
const serializedMaterialMask = (1 << SerializedMaterialBits) - 1
const serializedActiveEdgeMask = 0x7

// EncodeTriangleFlags packs a decoded material index and 3 active-edge bits
// into the single byte a triangle block stores per triangle.
func EncodeTriangleFlags(materialIndex uint32, activeEdgeBits uint8) byte {
	return byte(materialIndex&serializedMaterialMask)<<3 | byte(activeEdgeBits&serializedActiveEdgeMask)
}

// DecodeTriangleFlags splits a stored flag byte back into material index and
// active-edge bits.
func DecodeTriangleFlags(b byte) (materialIndex uint32, activeEdgeBits uint8) {
	return uint32(b>>3) & serializedMaterialMask, b & serializedActiveEdgeMask
}

// QuantizeRef holds the per-axis offset/scale a triangle block was quantized
// against, per spec.md §4.4 ("the reference AABB of the block, conservatively
// the root bounds").
type QuantizeRef struct {
	Offset types.Vec3
	Scale  types.Vec3 // (max-min)/255 per axis; zero-extent axes get scale 0
}

// NewQuantizeRef derives a quantization reference from an AABB.
func NewQuantizeRef(bounds types.AABB) QuantizeRef {
	extent := bounds.Extent()
	var scale types.Vec3
	for i := 0; i < 3; i++ {
		if extent[i] > 0 {
			scale[i] = extent[i] / 255
		}
	}
	return QuantizeRef{Offset: bounds.Min, Scale: scale}
}

// quantizeComponent maps a single component value into its [0,255] bin,
// clamped to range. dir < 0 rounds toward -infinity, guaranteeing
// dequantize(result) <= value; dir > 0 rounds toward +infinity, guaranteeing
// dequantize(result) >= value; dir == 0 rounds to the nearest bin.
func (q QuantizeRef) quantizeComponent(axis int, value float32, dir int) uint8 {
	if q.Scale[axis] == 0 {
		return 0
	}
	n := (value - q.Offset[axis]) / q.Scale[axis]
	if n < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	switch {
	case dir < 0:
		return uint8(math.Floor(float64(n)))
	case dir > 0:
		return uint8(math.Ceil(float64(n)))
	default:
		return uint8(n + 0.5)
	}
}

func (q QuantizeRef) quantize(v types.Vec3) [3]uint8 {
	var out [3]uint8
	for i := 0; i < 3; i++ {
		out[i] = q.quantizeComponent(i, v[i], 0)
	}
	return out
}

// quantizeCorner quantizes an AABB corner outward per spec.md §4.4: floor
// for a min corner (up = false), ceil for a max corner (up = true), so
// dequantizing the result never shrinks the true corner inward.
func (q QuantizeRef) quantizeCorner(v types.Vec3, up bool) [3]uint8 {
	dir := -1
	if up {
		dir = 1
	}
	var out [3]uint8
	for i := 0; i < 3; i++ {
		out[i] = q.quantizeComponent(i, v[i], dir)
	}
	return out
}

func (q QuantizeRef) dequantize(c [3]uint8) types.Vec3 {
	var v types.Vec3
	for i := 0; i < 3; i++ {
		v[i] = q.Offset[i] + float32(c[i])*q.Scale[i]
	}
	return v
}

// EncodedTriangle is the source data EncodeTriangleBlock consumes: one
// leaf's worth of resolved (non-indexed) triangle geometry plus per-triangle
// material/active-edge bits.
type EncodedTriangle struct {
	V              [3]types.Vec3
	MaterialIndex  uint32
	ActiveEdgeBits uint8
}

// EncodeTriangleBlock packs triangles into a leaf block using ref as the
// shared quantization reference (typically the root AABB). It returns the
// encoded bytes and decodedBounds, the AABB the caller must use as this
// leaf's node bounds: each triangle's true min/max corner is quantized
// outward (floor for the min corner, ceil for the max) and dequantized
// before being unioned in, so decodedBounds is guaranteed to contain the
// original triangle's AABB per spec.md §4.4, independent of how the shared
// per-vertex table below happens to round.
func EncodeTriangleBlock(triangles []EncodedTriangle, ref QuantizeRef) (buf []byte, decodedBounds types.AABB) {
	type vkey [3]uint8
	localIndex := make(map[vkey]uint8)
	var localVerts []vkey

	indexOf := func(v types.Vec3) uint8 {
		q := ref.quantize(v)
		key := vkey(q)
		if idx, ok := localIndex[key]; ok {
			return idx
		}
		idx := uint8(len(localVerts))
		localVerts = append(localVerts, key)
		localIndex[key] = idx
		return idx
	}

	triIndices := make([][3]uint8, len(triangles))
	flags := make([]byte, len(triangles))
	decodedBounds = types.EmptyAABB()

	for ti, tri := range triangles {
		for c := 0; c < 3; c++ {
			triIndices[ti][c] = indexOf(tri.V[c])
		}
		flags[ti] = EncodeTriangleFlags(tri.MaterialIndex, tri.ActiveEdgeBits)

		triMin, triMax := tri.V[0], tri.V[0]
		for c := 1; c < 3; c++ {
			triMin = types.MinVec3(triMin, tri.V[c])
			triMax = types.MaxVec3(triMax, tri.V[c])
		}
		decodedBounds = decodedBounds.Union(types.AABB{
			Min: ref.dequantize(ref.quantizeCorner(triMin, false)),
			Max: ref.dequantize(ref.quantizeCorner(triMax, true)),
		})
	}

	buf = make([]byte, 0, 2+len(localVerts)*3+len(triangles)*3+len(triangles))
	buf = append(buf, uint8(len(localVerts)), uint8(len(triangles)))

	for axis := 0; axis < 3; axis++ {
		for _, v := range localVerts {
			buf = append(buf, v[axis])
		}
	}
	for _, idx := range triIndices {
		buf = append(buf, idx[0], idx[1], idx[2])
	}
	buf = append(buf, flags...)

	return buf, decodedBounds
}

// DecodeTriangleBlockVertices dequantizes every triangle in the block back
// to float32 positions, following the SoA layout EncodeTriangleBlock wrote:
// vertex count, triangle count, X/Y/Z planes, per-triangle indices, then
// per-triangle flags. Decoding is a straight table lookup per lane, matching
// spec.md §4.4's "branch-free per lane" requirement.
func DecodeTriangleBlockVertices(buf []byte, ref QuantizeRef) [][3]types.Vec3 {
	vertexCount := int(buf[0])
	triangleCount := int(buf[1])
	off := 2

	xs := buf[off : off+vertexCount]
	off += vertexCount
	ys := buf[off : off+vertexCount]
	off += vertexCount
	zs := buf[off : off+vertexCount]
	off += vertexCount

	verts := make([]types.Vec3, vertexCount)
	for i := 0; i < vertexCount; i++ {
		verts[i] = ref.dequantize([3]uint8{xs[i], ys[i], zs[i]})
	}

	out := make([][3]types.Vec3, triangleCount)
	for t := 0; t < triangleCount; t++ {
		i0, i1, i2 := buf[off], buf[off+1], buf[off+2]
		off += 3
		out[t] = [3]types.Vec3{verts[i0], verts[i1], verts[i2]}
	}
	return out
}

// TriangleCount reads a block's triangle count without decoding anything
// else, for callers that need to size a buffer before committing to a
// decode (the triangle-extraction walker uses this to decide whether a leaf
// fits the caller's remaining output capacity before popping it off the
// traversal stack).
func TriangleCount(buf []byte) int {
	return int(buf[1])
}

// DecodeTriangleBlockFlags returns only the per-triangle flag bytes of a
// block, without dequantizing any geometry, per spec.md §4.4's requirement
// for a geometry-free flag read.
func DecodeTriangleBlockFlags(buf []byte) []byte {
	vertexCount := int(buf[0])
	triangleCount := int(buf[1])
	flagsOff := 2 + vertexCount*3 + triangleCount*3
	return buf[flagsOff : flagsOff+triangleCount]
}

// TriangleBlockHeaderSize returns how many leading bytes of buf are the
// vertex/triangle counts, useful for callers that want to skip straight to
// the flags region via DecodeTriangleBlockFlags's own offset math.
func TriangleBlockHeaderSize() int { return 2 }
