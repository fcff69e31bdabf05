package query

import (
	"github.com/crucible-phys/meshshape/mesh/codec"
	"github.com/crucible-phys/meshshape/types"
)

// Stats counts nodes, leaves and triangles by walking the whole tree with a
// visitor that accepts every node, per spec.md §4.7.
type Stats struct {
	Nodes     int
	Leaves    int
	Triangles int
	MaxDepth  int
}

// ComputeStats walks tree end to end and returns aggregate counts.
func ComputeStats(tree *Tree) Stats {
	v := &statsVisitor{}
	Walk(tree, v)
	return v.Stats
}

type statsVisitor struct {
	Stats
}

func (v *statsVisitor) ShouldAbort() bool                 { return false }
func (v *statsVisitor) ShouldVisitNode(stackTop int) bool { return true }

func (v *statsVisitor) VisitNodes(minX, minY, minZ, maxX, maxY, maxZ [4]float32, properties *[4]uint32, stackTop int) int {
	var order []int
	for i := 0; i < 4; i++ {
		if minX[i] > maxX[i] {
			continue
		}
		order = append(order, i)
		if codec.PropertyIsLeaf(properties[i]) {
			v.Leaves++
		} else {
			v.Nodes++
		}
	}
	var newProps [4]uint32
	for i, idx := range order {
		newProps[i] = properties[idx]
	}
	*properties = newProps
	return len(order)
}

func (v *statsVisitor) VisitTriangles(verts [][3]types.Vec3, flags []byte, rootMin, rootMax types.Vec3, blockID uint32) {
	v.Triangles += len(verts)
}
