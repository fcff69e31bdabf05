package query

import (
	"github.com/crucible-phys/meshshape/mesh/codec"
	"github.com/crucible-phys/meshshape/types"
)

// ExtractState is the triangle-extraction walker's resumable state, per
// spec.md §4.7's {NotStarted, Walking, Done} state machine.
type ExtractState int

const (
	NotStarted ExtractState = iota
	Walking
	Done
)

// ExtractContext is the opaque, resumable context spec.md §4.7 calls for:
// it stores the traversal stack between GetTrianglesNext calls so a single
// query AABB region can be streamed out in buffer-sized chunks.
type ExtractContext struct {
	state ExtractState

	box   types.AABB
	xform Transform

	stack   [StackCapacity]stackEntry
	sp      int
	started bool

	tree *Tree
}

// Transform is the rotation*translation*scale applied to extracted triangle
// vertices, per spec.md §4.7.
type Transform struct {
	Rotation    types.Quat
	Translation types.Vec3
	Scale       types.Vec3
}

// Apply maps a local-space point through the transform.
func (x Transform) Apply(p types.Vec3) types.Vec3 {
	return x.Rotation.Rotate(p.Scale(x.Scale)).Add(x.Translation)
}

// NewExtractContext starts a new, un-walked extraction over box (in the
// mesh's local space, i.e. box is already the inverse-transformed query
// volume).
func NewExtractContext(tree *Tree, box types.AABB, xform Transform) *ExtractContext {
	return &ExtractContext{state: NotStarted, box: box, xform: xform, tree: tree}
}

func (c *ExtractContext) State() ExtractState { return c.state }

// Next fills out (and, if outMaterials != nil, outMaterials with each
// triangle's material index) with up to len(out) triangles taken from the
// leaves whose bounds overlap the context's box. Triangles are not tested
// against the box individually: an overlapping leaf contributes all of its
// triangles. Each triangle is transformed by
// rotation*translation*scale; winding is reversed when the scale is
// inside-out (an odd number of negative components), per spec.md §4.7.
// It returns the number of triangles written and advances the context's
// state, resuming from the same stack position on a subsequent call if the
// buffer filled before the walk finished.
func (c *ExtractContext) Next(out [][3]types.Vec3, outMaterials []byte) int {
	if c.state == Done || len(out) == 0 {
		return 0
	}

	v := &extractVisitor{ctx: c, capacity: len(out)}
	if !c.started {
		c.started = true
		c.state = Walking
		walkFresh(c.tree, v)
	} else {
		walkResume(c.tree, v, c.stack[:c.sp])
	}

	n := len(v.written)
	negative := c.xform.Scale.NegativeComponents()%2 == 1

	for i := 0; i < n; i++ {
		tri := v.written[i]
		for k := 0; k < 3; k++ {
			tri[k] = c.xform.Apply(tri[k])
		}
		if negative {
			tri[1], tri[2] = tri[2], tri[1]
		}
		out[i] = tri
		if outMaterials != nil {
			outMaterials[i] = byte(materialIndexOf(v.flags[i]))
		}
	}

	c.sp = v.savedSP
	if v.done {
		c.state = Done
	}

	return n
}

// extractVisitor is the Visitor the extraction context drives; it collects
// the triangles of leaves overlapping ctx.box up to capacity, then signals abort so the
// driver stops mid-walk and the context can resume later.
type extractVisitor struct {
	ctx      *ExtractContext
	capacity int

	written []([3]types.Vec3)
	flags   []byte

	savedSP int
	done    bool
	abort   bool
}

func (v *extractVisitor) ShouldAbort() bool { return v.abort }

func (v *extractVisitor) ShouldVisitNode(stackTop int) bool { return true }

func (v *extractVisitor) VisitNodes(minX, minY, minZ, maxX, maxY, maxZ [4]float32, properties *[4]uint32, stackTop int) int {
	var valid, hit [4]bool
	for i := 0; i < 4; i++ {
		bmin := types.Vec3{minX[i], minY[i], minZ[i]}
		bmax := types.Vec3{maxX[i], maxY[i], maxZ[i]}
		if bmin[0] > bmax[0] {
			continue
		}
		valid[i] = true
		hit[i] = types.AABB{Min: bmin, Max: bmax}.Overlaps(v.ctx.box)
	}

	var order []int
	for i := 0; i < 4; i++ {
		if valid[i] && hit[i] {
			order = append(order, i)
		}
	}

	var newProps [4]uint32
	for i, idx := range order {
		newProps[i] = properties[idx]
	}
	*properties = newProps
	return len(order)
}

func (v *extractVisitor) VisitTriangles(verts [][3]types.Vec3, flags []byte, rootMin, rootMax types.Vec3, blockID uint32) {
	// walkCapturing only pops a leaf once its triangle count is known to
	// fit v.capacity, so this never overflows.
	v.written = append(v.written, verts...)
	v.flags = append(v.flags, flags...)
}

// walkFresh runs Walk from the root, capturing the driver's stack into the
// context if the visitor aborted mid-walk.
func walkFresh(tree *Tree, v *extractVisitor) {
	sp := walkCapturing(tree, v, nil)
	v.savedSP = sp
	v.done = !v.abort
}

// walkResume continues a prior walk from a saved stack snapshot.
func walkResume(tree *Tree, v *extractVisitor, saved []stackEntry) {
	sp := walkCapturing(tree, v, saved)
	v.savedSP = sp
	v.done = !v.abort
}

// walkCapturing runs the same driver loop as Walk, but seeded from an
// explicit stack snapshot when resuming, and leaves the ending stack in
// ctx.stack via v.ctx so the next call can resume.
func walkCapturing(tree *Tree, v *extractVisitor, seed []stackEntry) int {
	var stack [StackCapacity]stackEntry
	sp := copy(stack[:], seed)

	if sp == 0 {
		rootBlock := codec.DecodeNodeBlock(tree.Buf[:codec.NodeBlockSize])
		sp = pushChildBlock(&stack, 0, rootBlock, v)
	}

	for sp > 0 && !v.ShouldAbort() {
		// Peek rather than pop: a leaf whose triangles would overflow the
		// caller's buffer must stay on the stack so the next Next() call
		// retries it, instead of being silently dropped.
		entry := stack[sp-1]

		if codec.PropertyIsLeaf(entry.property) {
			blockID := codec.PropertyValue(entry.property)
			if int(blockID) >= len(tree.TriBlockOffsets) {
				sp--
				continue
			}
			offset := tree.TriBlockOffsets[blockID]
			count := codec.TriangleCount(tree.Buf[offset:])
			if len(v.written)+count > v.capacity {
				v.abort = true
				break
			}
			sp--
			visitLeaf(tree, v, blockID)
			continue
		}

		sp--
		offset := codec.PropertyValue(entry.property)
		block := codec.DecodeNodeBlock(tree.Buf[offset : offset+codec.NodeBlockSize])
		sp = pushChildBlock(&stack, sp, block, v)
	}

	copy(v.ctx.stack[:], stack[:sp])
	return sp
}
