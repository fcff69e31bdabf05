package mesh

import (
	"io"

	"github.com/crucible-phys/meshshape/mesh/codec"
	"github.com/crucible-phys/meshshape/mesh/query"
	"github.com/crucible-phys/meshshape/types"
)

// Shape is a built, immutable triangle-mesh collision shape: a serialized
// BVH buffer plus the bit widths and material list needed to answer the
// query surface in spec.md §6. The zero value is not usable; construct one
// with Build, BuildIndexed or Restore.
type Shape struct {
	tree  *SerializedTree
	qtree *query.Tree

	materials       []MaterialHandle
	defaultMaterial MaterialHandle

	maxTrianglesPerLeaf    int
	activeEdgeCosThreshold float32

	blockIDBits uint
	triBits     uint
}

func newQueryTree(tree *SerializedTree) *query.Tree {
	return &query.Tree{
		RootMin:         tree.RootBounds.Min,
		RootMax:         tree.RootBounds.Max,
		Buf:             tree.Buf,
		TriBlockOffsets: tree.TriBlockOffsets,
		Ref:             codec.NewQuantizeRef(tree.RootBounds),
	}
}

// Build sanitizes settings' triangles, computes active edges, compiles the
// 4-ary BVH and serializes it, returning a query-ready Shape. It is the
// single construction entry point spec.md §6 calls for; NewSettings and
// NewIndexedSettings cover the two input forms (a) and (b).
func Build(settings *Settings) (*Shape, error) {
	materialCount := len(settings.Materials)
	if materialCount > int(MaterialMask)+1 {
		return nil, newBuildError(TooManyMaterials, "material list has %d entries but MaterialMask allows at most %d", materialCount, MaterialMask+1)
	}
	if err := validateIndices(settings.Triangles, len(settings.Vertices), materialCount); err != nil {
		return nil, err
	}

	triangles, err := sanitize(settings.Triangles, settings.Strict)
	if err != nil {
		return nil, err
	}

	computeActiveEdges(settings.Vertices, triangles, settings.activeEdgeCosThreshold())

	tree, err := serializeTree(settings.Vertices, triangles, settings.maxTrisPerLeaf())
	if err != nil {
		return nil, err
	}

	triBits := query.NumTriangleBits(settings.maxTrisPerLeaf())
	if err := query.CheckBitBudget(tree.TriangleBlockIDBits, triBits); err != nil {
		return nil, newBuildError(SubShapeIDOverflow, "%s", err)
	}

	return &Shape{
		tree:                   tree,
		qtree:                  newQueryTree(tree),
		materials:              settings.Materials,
		defaultMaterial:        settings.DefaultMaterial,
		maxTrianglesPerLeaf:    settings.maxTrisPerLeaf(),
		activeEdgeCosThreshold: settings.activeEdgeCosThreshold(),
		blockIDBits:            tree.TriangleBlockIDBits,
		triBits:                triBits,
	}, nil
}

// BuildIndexed is a convenience wrapper over Build for callers who already
// have a shared vertex table and index list (spec.md §6 option (b)).
func BuildIndexed(vertices []Vertex, triangles []IndexedTriangle, materials []MaterialHandle) (*Shape, error) {
	return Build(NewIndexedSettings(vertices, triangles, materials))
}

// Save writes the shape's header, serialized tree and material list to w.
func (s *Shape) Save(w io.Writer) error {
	return save(w, s.tree, s.maxTrianglesPerLeaf, s.activeEdgeCosThreshold, s.materials)
}

// Restore reads back a Shape previously written by Save.
func Restore(r io.Reader) (*Shape, error) {
	tree, maxTris, cosThreshold, materials, err := restore(r)
	if err != nil {
		return nil, err
	}

	triBits := query.NumTriangleBits(maxTris)
	if err := query.CheckBitBudget(tree.TriangleBlockIDBits, triBits); err != nil {
		return nil, newBuildError(SubShapeIDOverflow, "%s", err)
	}

	return &Shape{
		tree:                   tree,
		qtree:                  newQueryTree(tree),
		materials:              materials,
		maxTrianglesPerLeaf:    maxTris,
		activeEdgeCosThreshold: cosThreshold,
		blockIDBits:            tree.TriangleBlockIDBits,
		triBits:                triBits,
	}, nil
}

// GetLocalBounds returns the shape's root AABB in its own local space.
func (s *Shape) GetLocalBounds() types.AABB {
	return s.tree.RootBounds
}

// CastRay returns the closest hit along ray up to maxFraction, if any.
func (s *Shape) CastRay(ray query.Ray, maxFraction float32) (query.RayHit, bool) {
	v := query.NewClosestHitVisitor(ray, maxFraction, s.blockIDBits, s.triBits)
	query.Walk(s.qtree, v)
	return v.Result()
}

// CastRayAll returns every hit along ray up to maxFraction, honoring mode's
// back-face handling.
func (s *Shape) CastRayAll(ray query.Ray, maxFraction float32, mode query.BackFaceMode) []query.RayHit {
	v := query.NewAllHitVisitor(ray, maxFraction, mode, s.blockIDBits, s.triBits)
	query.Walk(s.qtree, v)
	return v.Hits
}

// CollidePoint reports whether point lies inside the mesh, via the +Y
// parity ray cast described in spec.md §4.7.
func (s *Shape) CollidePoint(point types.Vec3) bool {
	return query.CollidePoint(s.qtree, point, s.blockIDBits, s.triBits)
}

// CastShape sweeps a convex shape against the mesh, delegating per-triangle
// contact math to oracle.
func (s *Shape) CastShape(cast query.ShapeCast, oracle query.ShapeCastOracle, maxFraction float32) (fraction float32, hit bool) {
	v := query.NewShapeCastVisitor(cast, oracle, maxFraction)
	query.Walk(s.qtree, v)
	return v.Result()
}

// CollideConvexVsMesh reports whether shape (already expressed in the
// mesh's local space) overlaps the mesh scaled by scale, delegating
// per-triangle overlap tests to oracle.
func (s *Shape) CollideConvexVsMesh(shape query.ConvexShape, scale types.Vec3, oracle query.OverlapOracle) bool {
	v := query.NewOverlapVisitor(shape, scale, oracle)
	query.Walk(s.qtree, v)
	return v.Hit
}

// GetTrianglesStart begins a resumable triangle-extraction query over box,
// which the caller must already express in the mesh's local space; each
// extracted vertex is subsequently transformed by rotation*translation*
// scale before being handed back through GetTrianglesNext.
func (s *Shape) GetTrianglesStart(box types.AABB, comPos types.Vec3, rotation types.Quat, scale types.Vec3) *query.ExtractContext {
	return query.NewExtractContext(s.qtree, box, query.Transform{Rotation: rotation, Translation: comPos, Scale: scale})
}

// GetTrianglesNext fills out (and, if outMaterials is non-nil,
// outMaterials) with up to len(out) triangles from ctx, returning how many
// were written.
func (s *Shape) GetTrianglesNext(ctx *query.ExtractContext, out [][3]types.Vec3, outMaterials []byte) int {
	return ctx.Next(out, outMaterials)
}

// GetMaterial resolves a SubShapeID (as returned by a ray or shape cast) to
// the material handle its triangle carries, falling back to the shape's
// default material for an empty material list or a malformed ID.
func (s *Shape) GetMaterial(id query.SubShapeID) MaterialHandle {
	if len(s.materials) == 0 {
		return s.defaultMaterial
	}

	blockID, triIdx := id.Decode(s.triBits)
	if int(blockID) >= len(s.tree.TriBlockOffsets) {
		return s.defaultMaterial
	}
	offset := s.tree.TriBlockOffsets[blockID]
	flags := codec.DecodeTriangleBlockFlags(s.tree.Buf[offset:])
	if int(triIdx) >= len(flags) {
		return s.defaultMaterial
	}

	matIdx, _ := codec.DecodeTriangleFlags(flags[triIdx])
	if int(matIdx) >= len(s.materials) {
		return s.defaultMaterial
	}
	return s.materials[matIdx]
}

// GetSurfaceNormal returns the (normalized) face normal of the triangle a
// SubShapeID identifies. localPoint is accepted for interface parity with
// curved-surface shapes but unused: a flat triangle's normal is constant
// over its surface.
func (s *Shape) GetSurfaceNormal(id query.SubShapeID, localPoint types.Vec3) types.Vec3 {
	blockID, triIdx := id.Decode(s.triBits)
	if int(blockID) >= len(s.tree.TriBlockOffsets) {
		return types.Vec3{}
	}
	offset := s.tree.TriBlockOffsets[blockID]
	verts := codec.DecodeTriangleBlockVertices(s.tree.Buf[offset:], s.qtree.Ref)
	if int(triIdx) >= len(verts) {
		return types.Vec3{}
	}

	tri := verts[triIdx]
	return tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0])).Normalize()
}

// Stats walks the whole tree and returns node/leaf/triangle counts, used by
// the CLI's stats command.
func (s *Shape) Stats() query.Stats {
	return query.ComputeStats(s.qtree)
}

// BufferSize returns the byte size of the serialized tree buffer, for the
// CLI stats table.
func (s *Shape) BufferSize() int {
	return len(s.tree.Buf)
}
