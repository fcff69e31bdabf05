// Package build turns a sanitized triangle list into an in-memory, 4-ary
// bounding-volume hierarchy (a BuilderNode tree), grounded on the
// surface-area-heuristic recursive partitioner in go-pathtrace's
// asset/compiler/bvh package, generalized from a binary split into a 4-wide
// one and from per-point continuous sampling to equal-population binning.
package build

import (
	"math"
	"sort"

	"github.com/crucible-phys/meshshape/types"
)

// NBins is the number of equal-population bins the splitter divides the
// longest axis into when searching for the best SAH split plane.
const NBins = 12

// minSideLength mirrors go-pathtrace's bvh builder: don't bother splitting
// an axis whose extent is already below this threshold.
const minSideLength float32 = 1e-4

// BoundedVolume is implemented by anything the builder can partition: a
// triangle, in this module's case, but the interface keeps the splitter
// itself geometry-agnostic.
type BoundedVolume interface {
	BBox() types.AABB
	Center() types.Vec3
}

// Node is an ephemeral builder-time tree node (spec.md §3's BuilderNode): an
// AABB plus either up to maxLeafItems leaf items or exactly 4 children,
// padding with empty sentinel children (Min > Max) when a split produced
// fewer than 4.
type Node struct {
	Bounds   types.AABB
	Children [4]*Node // nil/empty-bounds children are unused slots
	Items    []int    // indices into the original item slice; non-nil only on leaves
}

// IsLeaf reports whether the node holds items directly rather than children.
func (n *Node) IsLeaf() bool {
	return n.Items != nil
}

// IsEmpty reports whether this is an unused 4-wide child slot.
func (n *Node) IsEmpty() bool {
	return n == nil || n.Bounds.IsEmpty()
}

func emptyNode() *Node {
	return &Node{Bounds: types.EmptyAABB()}
}

// Build partitions items (typically one BoundedVolume per sanitized
// triangle) into a 4-ary BVH. A node becomes a leaf once its item count is
// <= maxLeafItems. Deterministic for a fixed input ordering: the split axis
// is the longest one (X before Y before Z when extents are equal), and among
// candidate planes with equal SAH score the lowest plane wins.
func Build(items []BoundedVolume, maxLeafItems int) *Node {
	indices := make([]int, len(items))
	for i := range indices {
		indices[i] = i
	}
	return buildNode(items, indices, maxLeafItems, 0)
}

func buildNode(items []BoundedVolume, indices []int, maxLeafItems, depth int) *Node {
	bounds := boundsOf(items, indices)

	if len(indices) <= maxLeafItems {
		return &Node{Bounds: bounds, Items: indices}
	}

	left, right := splitOnce(items, indices, bounds, depth)
	if left == nil {
		// No split improved on keeping everything in one leaf (e.g. all
		// items share a centroid on the longest axis).
		return &Node{Bounds: bounds, Items: indices}
	}

	var children [4]*Node
	n := 0
	for _, half := range [][]int{left, right} {
		halfBounds := boundsOf(items, half)
		if len(half) > maxLeafItems {
			if l2, r2 := splitOnce(items, half, halfBounds, depth+1); l2 != nil {
				children[n] = buildNode(items, l2, maxLeafItems, depth+2)
				n++
				children[n] = buildNode(items, r2, maxLeafItems, depth+2)
				n++
				continue
			}
		}
		children[n] = buildNode(items, half, maxLeafItems, depth+1)
		n++
	}
	for ; n < 4; n++ {
		children[n] = emptyNode()
	}

	return &Node{Bounds: bounds, Children: children}
}

func boundsOf(items []BoundedVolume, indices []int) types.AABB {
	b := types.EmptyAABB()
	for _, idx := range indices {
		b = b.Union(items[idx].BBox())
	}
	return b
}

// splitOnce partitions indices into two non-empty subsets using the
// surface-area heuristic across NBins-1 candidate planes along the node's
// longest axis. Candidate planes are equal-population bin boundaries: items
// are sorted by centroid along the axis, then split into NBins groups of
// (as close to) equal size, and each boundary between consecutive groups is
// scored. It returns nil, nil if no candidate plane produces two non-empty
// subsets with a better combined SAH score than leaving the set whole.
func splitOnce(items []BoundedVolume, indices []int, bounds types.AABB, depth int) (left, right []int) {
	axis := bounds.LongestAxis()
	extent := bounds.Extent()
	if extent[axis] < minSideLength {
		return nil, nil
	}

	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Slice(sorted, func(i, j int) bool {
		return items[sorted[i]].Center()[axis] < items[sorted[j]].Center()[axis]
	})

	var planes []float32
	seen := make(map[int]bool, NBins-1)
	for i := 1; i < NBins; i++ {
		boundary := i * len(sorted) / NBins
		if boundary <= 0 || boundary >= len(sorted) || seen[boundary] {
			continue
		}
		seen[boundary] = true
		lo := items[sorted[boundary-1]].Center()[axis]
		hi := items[sorted[boundary]].Center()[axis]
		planes = append(planes, (lo+hi)/2)
	}
	if len(planes) == 0 {
		return nil, nil
	}

	type candidate struct {
		index int
		plane float32
		score float32
		ok    bool
	}

	results := make(chan candidate, len(planes))
	for i, plane := range planes {
		go func(i int, plane float32) {
			lCount, rCount, score := scoreSplit(items, indices, axis, plane)
			results <- candidate{index: i, plane: plane, score: score, ok: lCount > 0 && rCount > 0}
		}(i, plane)
	}

	bestScore := float32(math.MaxFloat32)
	bestPlane := float32(0)
	bestIndex := -1
	for range planes {
		c := <-results
		if c.ok && (c.score < bestScore || (c.score == bestScore && c.index < bestIndex)) {
			bestScore = c.score
			bestPlane = c.plane
			bestIndex = c.index
		}
	}
	if bestIndex < 0 {
		return nil, nil
	}

	left = make([]int, 0, len(indices))
	right = make([]int, 0, len(indices))
	for _, idx := range indices {
		if items[idx].Center()[axis] < bestPlane {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return nil, nil
	}
	return left, right
}

// scoreSplit computes the SAH cost of partitioning indices at plane along
// axis: leftCount*leftArea + rightCount*rightArea. Empty partitions score
// the worst possible value so the caller never picks them.
func scoreSplit(items []BoundedVolume, indices []int, axis int, plane float32) (leftCount, rightCount int, score float32) {
	lBounds := types.EmptyAABB()
	rBounds := types.EmptyAABB()

	for _, idx := range indices {
		bbox := items[idx].BBox()
		if items[idx].Center()[axis] < plane {
			leftCount++
			lBounds = lBounds.Union(bbox)
		} else {
			rightCount++
			rBounds = rBounds.Union(bbox)
		}
	}

	if leftCount == 0 || rightCount == 0 {
		return leftCount, rightCount, math.MaxFloat32
	}

	score = float32(leftCount)*lBounds.SurfaceArea() + float32(rightCount)*rBounds.SurfaceArea()
	return leftCount, rightCount, score
}

// Stats summarizes a built tree, used by mesh.Shape.Stats() and the CLI's
// stats command.
type Stats struct {
	Nodes    int
	Leaves   int
	MaxDepth int
	Items    int
}

// Walk collects Stats by visiting every node in the tree.
func Walk(root *Node) Stats {
	var s Stats
	walk(root, 0, &s)
	return s
}

func walk(n *Node, depth int, s *Stats) {
	if n == nil || n.IsEmpty() {
		return
	}
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	s.Nodes++
	if n.IsLeaf() {
		s.Leaves++
		s.Items += len(n.Items)
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, s)
	}
}
