// Package query implements the generic tree-traversal driver and the
// concrete query visitors (ray cast, point containment, shape cast, convex
// overlap, triangle extraction, stats) that run on it, per spec.md §4.6/§4.7.
// The driver is a Go generic function rather than an interface-dispatch
// walker, per spec.md's design note that batched 4-wide child tests should
// avoid virtual dispatch overhead in the hot loop.
package query

import (
	"github.com/crucible-phys/meshshape/mesh/codec"
	"github.com/crucible-phys/meshshape/types"
)

// MaxDepth bounds how deep the builder ever nests 4-ary nodes; used to size
// the traversal stack per spec.md §4.6's "MAX_DEPTH * 3 + 1" capacity rule.
const MaxDepth = 64

// StackCapacity is the fixed size of the explicit traversal stack every
// visitor is expected to own.
const StackCapacity = MaxDepth*3 + 1

// Visitor is the contract the traversal driver requires. Implementations
// are typically pointer receivers holding their own side-band stack arrays,
// sized StackCapacity, that VisitNodes reads/writes in step with the
// driver's property stack.
type Visitor interface {
	// ShouldAbort reports whether the walk should stop immediately.
	ShouldAbort() bool

	// ShouldVisitNode reports whether the stack entry at stackTop is still
	// worth processing (e.g. its saved distance is still under the current
	// best). stackTop indexes the visitor's own side-band stack, kept in
	// lockstep with the driver's property stack.
	ShouldVisitNode(stackTop int) bool

	// VisitNodes tests the four child AABBs (as float32, already
	// dequantized from half-float) against the query, reorders properties
	// in place so surviving children come first, and returns the survivor
	// count. It may write per-child side-band data at consecutive slots
	// starting at stackTop.
	VisitNodes(minX, minY, minZ, maxX, maxY, maxZ [4]float32, properties *[4]uint32, stackTop int) int

	// VisitTriangles processes one leaf's triangles, given already
	// dequantized vertex positions, the root bounds used to decode them,
	// the leaf's triangle-block ID, and per-triangle flag bytes.
	VisitTriangles(verts [][3]types.Vec3, flags []byte, rootMin, rootMax types.Vec3, blockID uint32)
}

// Tree is the minimal view of a serialized mesh the driver needs: the root
// bounds (for triangle dequantization) and the raw node/triangle-block
// buffer plus the block-ID-to-offset table.
type Tree struct {
	RootMin, RootMax types.Vec3
	Buf              []byte
	TriBlockOffsets  []uint32
	Ref              codec.QuantizeRef
}

// stackEntry is one pending property on the driver's own stack.
type stackEntry struct {
	property uint32
	index    int // position in the visitor's side-band stack
}

// Walk drives v across tree starting at the root's children, per spec.md
// §4.6's algorithm: pop the top property; if it tags a leaf, decode and
// visit its triangles; otherwise decode the 4-wide child block, call
// VisitNodes, and push survivors back (in the order VisitNodes left them,
// so intra-node order is the visitor's choice and the driver only preserves
// it).
func Walk[V Visitor](tree *Tree, v V) {
	if len(tree.Buf) < codec.NodeBlockSize {
		return
	}

	var stack [StackCapacity]stackEntry
	sp := 0

	rootBlock := codec.DecodeNodeBlock(tree.Buf[:codec.NodeBlockSize])
	sp = pushRootChildren(&stack, sp, rootBlock, v)

	for sp > 0 && !v.ShouldAbort() {
		sp--
		entry := stack[sp]

		if !v.ShouldVisitNode(entry.index) {
			continue
		}

		if codec.PropertyIsLeaf(entry.property) {
			blockID := codec.PropertyValue(entry.property)
			visitLeaf(tree, v, blockID)
			continue
		}

		offset := codec.PropertyValue(entry.property)
		block := codec.DecodeNodeBlock(tree.Buf[offset : offset+codec.NodeBlockSize])
		sp = pushChildBlock(&stack, sp, block, v)
	}
}

func pushRootChildren(stack *[StackCapacity]stackEntry, sp int, block codec.NodeBlock, v Visitor) int {
	return pushChildBlock(stack, sp, block, v)
}

func pushChildBlock(stack *[StackCapacity]stackEntry, sp int, block codec.NodeBlock, v Visitor) int {
	var minX, minY, minZ, maxX, maxY, maxZ [4]float32
	for i := 0; i < 4; i++ {
		minX[i] = codec.Float16To32(block.MinX[i])
		minY[i] = codec.Float16To32(block.MinY[i])
		minZ[i] = codec.Float16To32(block.MinZ[i])
		maxX[i] = codec.Float16To32(block.MaxX[i])
		maxY[i] = codec.Float16To32(block.MaxY[i])
		maxZ[i] = codec.Float16To32(block.MaxZ[i])
	}

	base := sp
	properties := block.Properties
	survivors := v.VisitNodes(minX, minY, minZ, maxX, maxY, maxZ, &properties, base)
	if survivors <= 0 {
		return sp
	}
	if survivors > 4 {
		survivors = 4
	}

	// Push in reverse so the visitor's first-choice survivor (properties[0])
	// pops first: the driver pops from the top of its own stack, and
	// VisitNodes already ordered properties[0..survivors) as the desired
	// processing order. Each entry's side-band index is base+i, matching
	// the slot VisitNodes wrote that survivor's data into.
	for i := survivors - 1; i >= 0; i-- {
		stack[base+(survivors-1-i)] = stackEntry{property: properties[i], index: base + i}
	}
	return base + survivors
}

func visitLeaf(tree *Tree, v Visitor, blockID uint32) {
	if int(blockID) >= len(tree.TriBlockOffsets) {
		return
	}
	offset := tree.TriBlockOffsets[blockID]
	buf := tree.Buf[offset:]
	verts := codec.DecodeTriangleBlockVertices(buf, tree.Ref)
	flags := codec.DecodeTriangleBlockFlags(buf)
	v.VisitTriangles(verts, flags, tree.RootMin, tree.RootMax, blockID)
}
