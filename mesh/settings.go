package mesh

import "github.com/crucible-phys/meshshape/types"

// Settings configures the mesh builder. The zero value is not usable;
// construct one with NewSettings or NewIndexedSettings.
type Settings struct {
	// Vertices is the shared vertex table. Triangle indices reference it.
	Vertices []Vertex

	// Triangles is the pre-indexed triangle list.
	Triangles []IndexedTriangle

	// Materials is the mesh's opaque material handle list. An empty list
	// means every triangle must use material index 0, and GetMaterial
	// returns DefaultMaterial.
	Materials []MaterialHandle

	// DefaultMaterial is returned by GetMaterial when Materials is empty.
	// Modeled as an injected handle (per spec design note) rather than a
	// package-level global, so construction stays dependency-free.
	DefaultMaterial MaterialHandle

	// MaxTrianglesPerLeaf bounds how many triangles a leaf may hold.
	// Defaults to DefaultMaxTrianglesPerLeaf (8) if zero.
	MaxTrianglesPerLeaf int

	// ActiveEdgeCosThreshold is the cosine below which two adjacent faces
	// are considered non-coplanar by IsEdgeActive. Defaults to
	// DefaultActiveEdgeCosThreshold if zero.
	ActiveEdgeCosThreshold float32

	// Strict, when true, makes Build reject any degenerate triangle with
	// DegenerateTriangle instead of silently dropping it.
	Strict bool
}

// NewIndexedSettings builds a Settings from a pre-indexed vertex/triangle
// table plus a material list, the form spec.md §6 calls option (b).
func NewIndexedSettings(vertices []Vertex, triangles []IndexedTriangle, materials []MaterialHandle) *Settings {
	return &Settings{
		Vertices:               vertices,
		Triangles:              triangles,
		Materials:              materials,
		MaxTrianglesPerLeaf:    DefaultMaxTrianglesPerLeaf,
		ActiveEdgeCosThreshold: DefaultActiveEdgeCosThreshold,
	}
}

// NewSettings builds a Settings from a flat triangle soup (option (a) in
// spec.md §6): three vertex positions per triangle with no sharing. The
// builder deduplicates positions into a vertex table during Build.
func NewSettings(flatTriangles [][3]types.Vec3, materialIndices []uint32, materials []MaterialHandle) *Settings {
	vertexOf := make(map[types.Vec3]uint32, len(flatTriangles)*3)
	vertices := make([]Vertex, 0, len(flatTriangles)*3)
	triangles := make([]IndexedTriangle, len(flatTriangles))

	indexFor := func(v types.Vec3) uint32 {
		if idx, ok := vertexOf[v]; ok {
			return idx
		}
		idx := uint32(len(vertices))
		vertices = append(vertices, v)
		vertexOf[v] = idx
		return idx
	}

	for i, tri := range flatTriangles {
		t := IndexedTriangle{Idx: [3]uint32{indexFor(tri[0]), indexFor(tri[1]), indexFor(tri[2])}}
		if materialIndices != nil {
			t.SetMaterialIndex(materialIndices[i])
		}
		triangles[i] = t
	}

	return &Settings{
		Vertices:               vertices,
		Triangles:              triangles,
		Materials:              materials,
		MaxTrianglesPerLeaf:    DefaultMaxTrianglesPerLeaf,
		ActiveEdgeCosThreshold: DefaultActiveEdgeCosThreshold,
	}
}

func (s *Settings) maxTrisPerLeaf() int {
	if s.MaxTrianglesPerLeaf <= 0 {
		return DefaultMaxTrianglesPerLeaf
	}
	return s.MaxTrianglesPerLeaf
}

func (s *Settings) activeEdgeCosThreshold() float32 {
	if s.ActiveEdgeCosThreshold == 0 {
		return DefaultActiveEdgeCosThreshold
	}
	return s.ActiveEdgeCosThreshold
}
