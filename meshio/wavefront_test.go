package meshio

import (
	"strings"
	"testing"

	"github.com/crucible-phys/meshshape/asset"
)

func parseString(t *testing.T, obj string) ([]float32, int) {
	t.Helper()
	res := asset.FromReader("test.obj", strings.NewReader(obj))
	defer res.Close()

	vertices, triangles, materials, err := ReadOBJ(res)
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	_ = materials
	flat := make([]float32, 0, len(vertices)*3)
	for _, v := range vertices {
		flat = append(flat, v[0], v[1], v[2])
	}
	return flat, len(triangles)
}

func TestReadOBJTriangleFace(t *testing.T) {
	obj := `
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`
	verts, triCount := parseString(t, obj)
	if len(verts) != 9 {
		t.Fatalf("expected 3 vertices, got %d", len(verts)/3)
	}
	if triCount != 1 {
		t.Fatalf("expected 1 triangle, got %d", triCount)
	}
}

func TestReadOBJFanTriangulatesQuad(t *testing.T) {
	obj := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	_, triCount := parseString(t, obj)
	if triCount != 2 {
		t.Fatalf("expected a quad to fan-triangulate into 2 triangles, got %d", triCount)
	}
}

func TestReadOBJAssignsMaterialsInUseOrder(t *testing.T) {
	obj := `
v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
usemtl stone
f 1 2 3
usemtl dirt
f 1 3 4
`
	res := asset.FromReader("test.obj", strings.NewReader(obj))
	defer res.Close()

	_, triangles, materials, err := ReadOBJ(res)
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}
	if len(materials) != 2 || materials[0] != "stone" || materials[1] != "dirt" {
		t.Fatalf("expected materials [stone dirt], got %v", materials)
	}
	if triangles[0].MaterialIndex() != 0 {
		t.Fatalf("expected first triangle to use material 0, got %d", triangles[0].MaterialIndex())
	}
	if triangles[1].MaterialIndex() != 1 {
		t.Fatalf("expected second triangle to use material 1, got %d", triangles[1].MaterialIndex())
	}
}

func TestReadOBJRejectsOutOfRangeIndex(t *testing.T) {
	obj := `
v 0 0 0
f 1 2 3
`
	res := asset.FromReader("test.obj", strings.NewReader(obj))
	defer res.Close()

	if _, _, _, err := ReadOBJ(res); err == nil {
		t.Fatalf("expected an error for a face referencing an undefined vertex")
	}
}

func TestReadOBJSupportsNegativeIndices(t *testing.T) {
	obj := `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	_, triCount := parseString(t, obj)
	if triCount != 1 {
		t.Fatalf("expected 1 triangle from a negative-index face, got %d", triCount)
	}
}
