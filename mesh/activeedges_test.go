package mesh

import "testing"

func vtx(x, y, z float32) Vertex { return Vertex{x, y, z} }

func TestActiveEdgesBoundaryEdgeIsActive(t *testing.T) {
	// A lone triangle: every edge has exactly one reference, the boundary
	// case, and must come out active.
	vertices := []Vertex{vtx(0, 0, 0), vtx(1, 0, 0), vtx(0, 1, 0)}
	triangles := []IndexedTriangle{idxTri(0, 1, 2)}

	computeActiveEdges(vertices, triangles, DefaultActiveEdgeCosThreshold)

	for local := 0; local < 3; local++ {
		if !triangles[0].IsEdgeActive(local) {
			t.Fatalf("expected boundary edge %d to be active", local)
		}
	}
}

func TestActiveEdgesCoplanarSharedEdgeIsInactive(t *testing.T) {
	// A flat quad split along its diagonal (0,2): the shared edge is
	// exactly coplanar (the 2-ref, non-concave case) so it stays inactive,
	// while the 4 outer boundary edges (each referenced once) stay active.
	vertices := []Vertex{
		vtx(0, 0, 0), // 0
		vtx(0, 0, 1), // 1
		vtx(1, 0, 1), // 2
		vtx(1, 0, 0), // 3
	}
	triangles := []IndexedTriangle{
		idxTri(0, 1, 2),
		idxTri(0, 2, 3),
	}

	computeActiveEdges(vertices, triangles, DefaultActiveEdgeCosThreshold)

	if triangles[0].IsEdgeActive(2) { // edge (2,0), the shared diagonal
		t.Fatalf("expected the flat shared diagonal to be inactive on triangle 0")
	}
	if triangles[1].IsEdgeActive(0) { // edge (0,2), the shared diagonal
		t.Fatalf("expected the flat shared diagonal to be inactive on triangle 1")
	}

	if !triangles[0].IsEdgeActive(0) { // edge (0,1)
		t.Fatalf("expected boundary edge (0,1) to be active")
	}
	if !triangles[0].IsEdgeActive(1) { // edge (1,2)
		t.Fatalf("expected boundary edge (1,2) to be active")
	}
	if !triangles[1].IsEdgeActive(1) { // edge (2,3)
		t.Fatalf("expected boundary edge (2,3) to be active")
	}
	if !triangles[1].IsEdgeActive(2) { // edge (3,0)
		t.Fatalf("expected boundary edge (3,0) to be active")
	}
}

func TestActiveEdgesConcaveFoldIsActive(t *testing.T) {
	// Two near-coplanar triangles sharing edge (0,1), folded into a shallow
	// valley: cos(n0,n1) still clears DefaultActiveEdgeCosThreshold, so only
	// the convexity sign test (not the coplanarity check) catches this.
	vertices := []Vertex{
		vtx(0, 0, 0),     // 0
		vtx(1, 0, 0),     // 1
		vtx(0, 1, 0),     // 2
		vtx(0, -1, 0.05), // 3
	}
	triangles := []IndexedTriangle{
		idxTri(0, 1, 2),
		idxTri(1, 0, 3),
	}

	computeActiveEdges(vertices, triangles, DefaultActiveEdgeCosThreshold)

	if !triangles[0].IsEdgeActive(0) {
		t.Fatalf("expected the concave fold to be active on triangle 0")
	}
	if !triangles[1].IsEdgeActive(0) {
		t.Fatalf("expected the concave fold to be active on triangle 1")
	}
}

func TestActiveEdgesConvexFoldIsInactive(t *testing.T) {
	// Same shallow fold, mirrored to the other side of the shared edge: a
	// convex bulge instead of a valley, which must stay inactive.
	vertices := []Vertex{
		vtx(0, 0, 0),      // 0
		vtx(1, 0, 0),      // 1
		vtx(0, 1, 0),      // 2
		vtx(0, -1, -0.05), // 3
	}
	triangles := []IndexedTriangle{
		idxTri(0, 1, 2),
		idxTri(1, 0, 3),
	}

	computeActiveEdges(vertices, triangles, DefaultActiveEdgeCosThreshold)

	if triangles[0].IsEdgeActive(0) {
		t.Fatalf("expected the convex fold to be inactive on triangle 0")
	}
	if triangles[1].IsEdgeActive(0) {
		t.Fatalf("expected the convex fold to be inactive on triangle 1")
	}
}

func TestActiveEdgesNonManifoldEdgeIsActive(t *testing.T) {
	// Three triangles all referencing edge (0,1): non-manifold, always
	// active regardless of the surrounding geometry.
	vertices := []Vertex{
		vtx(0, 0, 0), vtx(1, 0, 0),
		vtx(0, 1, 0), vtx(0, -1, 0), vtx(0, 0, 1),
	}
	triangles := []IndexedTriangle{
		idxTri(0, 1, 2),
		idxTri(1, 0, 3),
		idxTri(0, 1, 4),
	}

	computeActiveEdges(vertices, triangles, DefaultActiveEdgeCosThreshold)

	for ti := range triangles {
		if !triangles[ti].IsEdgeActive(0) {
			t.Fatalf("expected non-manifold edge to be active on triangle %d", ti)
		}
	}
}
