package build

import (
	"testing"

	"github.com/crucible-phys/meshshape/types"
)

type testVolume struct {
	bbox   types.AABB
	center types.Vec3
}

func (v testVolume) BBox() types.AABB   { return v.bbox }
func (v testVolume) Center() types.Vec3 { return v.center }

func boxAt(min, max types.Vec3) testVolume {
	return testVolume{bbox: types.AABB{Min: min, Max: max}, center: min.Add(max).Mul(0.5)}
}

func fourQuadrants() []BoundedVolume {
	specs := []testVolume{
		boxAt(types.Vec3{-2, 0, -2}, types.Vec3{-1, 1, -1}),
		boxAt(types.Vec3{1, 0, -2}, types.Vec3{2, 1, -1}),
		boxAt(types.Vec3{-2, 0, 1}, types.Vec3{-1, 1, 2}),
		boxAt(types.Vec3{1, 0, 1}, types.Vec3{2, 1, 2}),
	}
	items := make([]BoundedVolume, len(specs))
	for i, s := range specs {
		items[i] = s
	}
	return items
}

func TestBuildSingleLeaf(t *testing.T) {
	items := fourQuadrants()

	root := Build(items, 4)
	if !root.IsLeaf() {
		t.Fatalf("expected a single leaf when maxLeafItems >= item count")
	}
	if len(root.Items) != 4 {
		t.Fatalf("expected leaf to hold all 4 items; got %d", len(root.Items))
	}
}

func TestBuildFourQuadrantsSplitsIntoFourLeaves(t *testing.T) {
	items := fourQuadrants()

	root := Build(items, 1)
	if root.IsLeaf() {
		t.Fatalf("expected root to be an internal node")
	}

	var leaves int
	var total int
	for _, c := range root.Children {
		if c.IsEmpty() {
			continue
		}
		if !c.IsLeaf() {
			t.Fatalf("expected every child to be a leaf given one item per quadrant")
		}
		leaves++
		total += len(c.Items)
	}

	if leaves != 4 {
		t.Fatalf("expected 4 populated leaves (one per quadrant); got %d", leaves)
	}
	if total != 4 {
		t.Fatalf("expected all 4 items accounted for; got %d", total)
	}
}

func TestBuildPadsUnusedChildSlots(t *testing.T) {
	// Two well-separated clusters of two items each, with a leaf capacity of
	// 2: the root splits once into two leaves, so the remaining 2 slots must
	// be empty sentinels.
	items := []BoundedVolume{
		boxAt(types.Vec3{-2, 0, 0}, types.Vec3{-1, 1, 1}),
		boxAt(types.Vec3{-2, 0, 0}, types.Vec3{-1.5, 1, 1}),
		boxAt(types.Vec3{1, 0, 0}, types.Vec3{2, 1, 1}),
		boxAt(types.Vec3{1.5, 0, 0}, types.Vec3{2, 1, 1}),
	}

	root := Build(items, 2)
	if root.IsLeaf() {
		t.Fatalf("expected root to be an internal node")
	}

	var empty, populated int
	for _, c := range root.Children {
		if c.IsEmpty() {
			empty++
			continue
		}
		populated++
	}

	if populated != 2 {
		t.Fatalf("expected 2 populated children; got %d", populated)
	}
	if empty != 2 {
		t.Fatalf("expected 2 empty sentinel slots; got %d", empty)
	}
}

func TestWalkStats(t *testing.T) {
	items := fourQuadrants()
	root := Build(items, 1)

	stats := Walk(root)
	if stats.Items != 4 {
		t.Fatalf("expected stats to count 4 items; got %d", stats.Items)
	}
	if stats.Leaves != 4 {
		t.Fatalf("expected 4 leaves; got %d", stats.Leaves)
	}
}

func TestBuildBoundsCoverAllItems(t *testing.T) {
	items := fourQuadrants()
	root := Build(items, 1)

	for _, it := range items {
		b := it.BBox()
		if !root.Bounds.Contains(b.Min) || !root.Bounds.Contains(b.Max) {
			t.Fatalf("root bounds %+v do not contain item bounds %+v", root.Bounds, b)
		}
	}
}
