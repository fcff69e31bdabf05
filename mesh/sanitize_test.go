package mesh

import "testing"

func idxTri(a, b, c uint32) IndexedTriangle {
	return IndexedTriangle{Idx: [3]uint32{a, b, c}}
}

func TestSanitizeDropsDegenerateTrianglesPermissive(t *testing.T) {
	tris := []IndexedTriangle{
		idxTri(0, 1, 2),
		idxTri(3, 3, 4), // repeated index, degenerate
		idxTri(5, 6, 7),
	}

	out, err := sanitize(tris, false)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 surviving triangles, got %d", len(out))
	}
	for _, tri := range out {
		if tri.IsDegenerate() {
			t.Fatalf("degenerate triangle %v survived sanitization", tri)
		}
	}
}

func TestSanitizeRejectsDegenerateTriangleStrict(t *testing.T) {
	tris := []IndexedTriangle{
		idxTri(0, 1, 2),
		idxTri(1, 1, 2),
	}

	_, err := sanitize(tris, true)
	if err == nil {
		t.Fatalf("expected an error in strict mode")
	}
	be, ok := err.(*BuildError)
	if !ok || be.Kind != DegenerateTriangle {
		t.Fatalf("expected DegenerateTriangle, got %v", err)
	}
}

func TestSanitizeDedupesIdenticalWinding(t *testing.T) {
	tris := []IndexedTriangle{
		idxTri(0, 1, 2),
		idxTri(1, 2, 0), // same winding, rotated start: canonical duplicate
		idxTri(2, 0, 1), // same winding, rotated again: canonical duplicate
	}

	out, err := sanitize(tris, false)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected rotations of the same triangle to dedupe to 1, got %d", len(out))
	}
}

func TestSanitizeKeepsOppositeWindingAsDistinct(t *testing.T) {
	tris := []IndexedTriangle{
		idxTri(0, 1, 2),
		idxTri(0, 2, 1), // reversed winding: a distinct (back-facing) triangle
	}

	out, err := sanitize(tris, false)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected opposite winding to be kept as a distinct triangle, got %d", len(out))
	}
}

func TestSanitizeRejectsEmptyInput(t *testing.T) {
	_, err := sanitize(nil, false)
	if err == nil {
		t.Fatalf("expected an error sanitizing an empty triangle list")
	}
	be, ok := err.(*BuildError)
	if !ok || be.Kind != EmptyInput {
		t.Fatalf("expected EmptyInput, got %v", err)
	}
}

func TestSanitizeRejectsAllDegenerateInput(t *testing.T) {
	tris := []IndexedTriangle{idxTri(1, 1, 2), idxTri(3, 3, 3)}

	_, err := sanitize(tris, false)
	if err == nil {
		t.Fatalf("expected an error when every triangle is dropped as degenerate")
	}
	be, ok := err.(*BuildError)
	if !ok || be.Kind != EmptyInput {
		t.Fatalf("expected EmptyInput, got %v", err)
	}
}

func TestValidateIndicesRejectsOutOfRangeVertex(t *testing.T) {
	tris := []IndexedTriangle{idxTri(0, 1, 5)}
	err := validateIndices(tris, 3, 0)
	if err == nil {
		t.Fatalf("expected an error for a vertex index outside the vertex table")
	}
	be, ok := err.(*BuildError)
	if !ok || be.Kind != IndexOutOfRange {
		t.Fatalf("expected IndexOutOfRange, got %v", err)
	}
}

func TestValidateIndicesRejectsNonzeroMaterialWithoutMaterials(t *testing.T) {
	tri := idxTri(0, 1, 2)
	tri.SetMaterialIndex(1)

	err := validateIndices([]IndexedTriangle{tri}, 3, 0)
	if err == nil {
		t.Fatalf("expected an error for a nonzero material index with no material list")
	}
	be, ok := err.(*BuildError)
	if !ok || be.Kind != MaterialsAbsentNonzeroIndex {
		t.Fatalf("expected MaterialsAbsentNonzeroIndex, got %v", err)
	}
}

func TestValidateIndicesRejectsMaterialIndexOutOfRange(t *testing.T) {
	tri := idxTri(0, 1, 2)
	tri.SetMaterialIndex(2)

	err := validateIndices([]IndexedTriangle{tri}, 3, 2)
	if err == nil {
		t.Fatalf("expected an error for a material index beyond material_count")
	}
	be, ok := err.(*BuildError)
	if !ok || be.Kind != MaterialIndexOutOfRange {
		t.Fatalf("expected MaterialIndexOutOfRange, got %v", err)
	}
}

func TestValidateIndicesAcceptsInRangeInput(t *testing.T) {
	tri := idxTri(0, 1, 2)
	tri.SetMaterialIndex(1)

	if err := validateIndices([]IndexedTriangle{tri}, 3, 2); err != nil {
		t.Fatalf("expected no error for valid indices, got %v", err)
	}
}
