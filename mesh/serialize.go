package mesh

import (
	"github.com/crucible-phys/meshshape/mesh/build"
	"github.com/crucible-phys/meshshape/mesh/codec"
	"github.com/crucible-phys/meshshape/types"
)

// SerializedTree is the compact, query-ready form of a mesh's BVH: a root
// AABB plus a depth-first-with-triangles-last byte buffer of node and
// triangle blocks, per spec.md §4.5's serialization order.
type SerializedTree struct {
	RootBounds types.AABB
	Buf        []byte

	// NumTriangleBlocks and TriangleBlockIDBits are recorded alongside the
	// buffer so SubShapeID packing (mesh/query/subshapeid.go) doesn't need
	// to re-walk the tree to learn them.
	NumTriangleBlocks   int
	TriangleBlockIDBits uint

	// TriBlockOffsets maps a triangle-block ID (the value a leaf child
	// property carries) to its byte offset in Buf.
	TriBlockOffsets []uint32
}

// triangleLeaf is one BVH leaf's already-encoded triangle block, plus the
// decodedBounds codec.EncodeTriangleBlock reported for it: the AABB that
// contains the leaf's quantized geometry, which must become the leaf's node
// bounds (not the builder's pre-quantization child.Bounds) for spec.md
// §4.4's containment guarantee to hold.
type triangleLeaf struct {
	encoded       []byte
	decodedBounds types.AABB
}

type triItem struct {
	bbox   types.AABB
	center types.Vec3
	idx    int
}

func (t triItem) BBox() types.AABB   { return t.bbox }
func (t triItem) Center() types.Vec3 { return t.center }

// serializeTree builds the in-memory BVH over triangles (already sanitized
// and active-edge-annotated) and serializes it into a SerializedTree.
func serializeTree(vertices []Vertex, triangles []IndexedTriangle, maxTrisPerLeaf int) (*SerializedTree, error) {
	items := make([]build.BoundedVolume, len(triangles))
	for i, t := range triangles {
		tri := Triangle{V: [3]types.Vec3{vertices[t.Idx[0]], vertices[t.Idx[1]], vertices[t.Idx[2]]}, Flags: t.Flags, TriIdx: uint32(i)}
		bbox := tri.BBox()
		items[i] = triItem{bbox: bbox, center: bbox.Center(), idx: i}
	}

	root := build.Build(items, maxTrisPerLeaf)
	if root == nil {
		return nil, newBuildError(TreeConversionFailed, "builder returned no tree")
	}

	// The serialized format always starts with one node block holding the
	// root's (up to 4) children (spec.md §4.6's driver algorithm seeds its
	// stack from that block). A mesh small enough that the whole tree is a
	// single leaf still needs that wrapper, with the other 3 slots empty.
	if root.IsLeaf() {
		wrapped := &build.Node{Bounds: root.Bounds}
		wrapped.Children[0] = root
		for i := 1; i < 4; i++ {
			wrapped.Children[i] = &build.Node{Bounds: types.EmptyAABB()}
		}
		root = wrapped
	}

	rootBounds := root.Bounds
	ref := codec.NewQuantizeRef(rootBounds)

	s := &serializer{
		vertices:  vertices,
		triangles: triangles,
		ref:       ref,
	}

	s.serializeInternal(root)
	offsets := s.appendTriangleBlocks()

	return &SerializedTree{
		RootBounds:          rootBounds,
		Buf:                 s.buf,
		NumTriangleBlocks:   s.numTriBlocks,
		TriangleBlockIDBits: bitsNeeded(s.numTriBlocks),
		TriBlockOffsets:     offsets,
	}, nil
}

// serializer lays out node blocks depth-first, then appends triangle blocks
// after all node blocks of the tree (spec.md §4.5's "depth-first with
// triangles last"). Each leaf's triangle block is fully encoded as soon as
// its parent needs to know its bounds, but the bytes themselves are queued
// and only appended to buf once the whole node-block region is written.
type serializer struct {
	vertices     []Vertex
	triangles    []IndexedTriangle
	ref          codec.QuantizeRef
	buf          []byte
	triLeaves    []triangleLeaf
	numTriBlocks int
}

// serializeInternal writes the node-block region for the subtree rooted at
// n (which must be an internal node, or the synthetic root) and encodes any
// leaf children's triangle blocks along the way (queued, not yet appended
// to the buffer, so the triangle-block region still lands after every node
// block per spec.md §4.5).
func (s *serializer) serializeInternal(n *build.Node) {
	// One recursive pre-order pass: writeNode reserves each internal node's
	// fixed-size block (codec.NodeBlockSize), recurses into its children so
	// their offsets are known, then copies the finished block into the
	// reserved space.
	s.writeNode(n)
}

// writeNode encodes n's node block and returns its offset and the AABB that
// actually bounds what got written for it: the union, over its children, of
// each child's stored bounds (a leaf's codec.EncodeTriangleBlock
// decodedBounds, or an internal child's own returned bounds), rounded
// outward to half-float and decoded back to float32. Returning this rather
// than n.Bounds is what lets a parent's own half-float planes enclose the
// quantized/half-float-rounded geometry beneath it instead of only the
// pre-quantization true geometry, per spec.md §4.4's containment guarantee.
func (s *serializer) writeNode(n *build.Node) (offset uint32, bounds types.AABB) {
	if n.IsLeaf() {
		// Leaves never get a node block of their own; the parent's child
		// property points straight at the triangle block. This helper is
		// only called on internal nodes (a single-leaf root is wrapped in a
		// synthetic internal node first), so it is never invoked on a leaf.
		panic("writeNode called on a leaf node")
	}

	offset = uint32(len(s.buf))
	// Reserve space now; filled in below once children are resolved.
	s.buf = append(s.buf, make([]byte, codec.NodeBlockSize)...)

	var block codec.NodeBlock
	bounds = types.EmptyAABB()
	for i, child := range n.Children {
		if child.IsEmpty() {
			minH, maxH := codec.EmptyChild()
			block.MinX[i], block.MaxX[i] = minH, maxH
			block.MinY[i], block.MaxY[i] = minH, maxH
			block.MinZ[i], block.MaxZ[i] = minH, maxH
			block.Properties[i] = codec.InternalProperty(0)
			continue
		}

		var childBounds types.AABB
		if child.IsLeaf() {
			blockID, decoded := s.queueLeaf(child)
			block.Properties[i] = codec.LeafProperty(blockID)
			childBounds = decoded
		} else {
			childOffset, decoded := s.writeNode(child)
			block.Properties[i] = codec.InternalProperty(childOffset)
			childBounds = decoded
		}

		block.MinX[i] = codec.Float32To16Floor(childBounds.Min[0])
		block.MinY[i] = codec.Float32To16Floor(childBounds.Min[1])
		block.MinZ[i] = codec.Float32To16Floor(childBounds.Min[2])
		block.MaxX[i] = codec.Float32To16Ceil(childBounds.Max[0])
		block.MaxY[i] = codec.Float32To16Ceil(childBounds.Max[1])
		block.MaxZ[i] = codec.Float32To16Ceil(childBounds.Max[2])

		bounds = bounds.Union(types.AABB{
			Min: types.Vec3{codec.Float16To32(block.MinX[i]), codec.Float16To32(block.MinY[i]), codec.Float16To32(block.MinZ[i])},
			Max: types.Vec3{codec.Float16To32(block.MaxX[i]), codec.Float16To32(block.MaxY[i]), codec.Float16To32(block.MaxZ[i])},
		})
	}

	encoded := block.Encode(nil)
	copy(s.buf[offset:offset+uint32(codec.NodeBlockSize)], encoded)
	return offset, bounds
}

// queueLeaf encodes n's triangle block immediately (so its decodedBounds is
// available to the caller's node-bounds encoding right away) and queues the
// bytes for appending once the whole node-block region is written.
func (s *serializer) queueLeaf(n *build.Node) (blockID uint32, decodedBounds types.AABB) {
	encTris := make([]codec.EncodedTriangle, len(n.Items))
	for i, idx := range n.Items {
		t := s.triangles[idx]
		encTris[i] = codec.EncodedTriangle{
			V:              [3]types.Vec3{s.vertices[t.Idx[0]], s.vertices[t.Idx[1]], s.vertices[t.Idx[2]]},
			MaterialIndex:  t.MaterialIndex(),
			ActiveEdgeBits: t.ActiveEdgeBits(),
		}
	}
	encoded, decodedBounds := codec.EncodeTriangleBlock(encTris, s.ref)

	blockID = uint32(len(s.triLeaves))
	s.triLeaves = append(s.triLeaves, triangleLeaf{encoded: encoded, decodedBounds: decodedBounds})
	s.numTriBlocks++
	return blockID, decodedBounds
}

// appendTriangleBlocks appends every queued leaf's already-encoded triangle
// block to the buffer, after the full node-block region, and returns each
// block's byte offset indexed by block ID. A leaf child property only ever
// carries the block ID (per spec.md §4.5); SerializedTree.TriBlockOffsets is
// the side table the query driver uses to turn an ID into a buffer offset.
func (s *serializer) appendTriangleBlocks() []uint32 {
	offsets := make([]uint32, len(s.triLeaves))
	for i, leaf := range s.triLeaves {
		offsets[i] = uint32(len(s.buf))
		s.buf = append(s.buf, leaf.encoded...)
	}
	return offsets
}

func bitsNeeded(count int) uint {
	if count <= 1 {
		return 1
	}
	bits := uint(0)
	for v := count - 1; v > 0; v >>= 1 {
		bits++
	}
	return bits
}
