// Package meshio reads mesh geometry from external file formats into the
// (vertices, triangles, materials) tuple mesh.Build and mesh.BuildIndexed
// consume directly.
package meshio

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/crucible-phys/meshshape/asset"
	"github.com/crucible-phys/meshshape/mesh"
	"github.com/crucible-phys/meshshape/types"
)

// ReadOBJ parses a Wavefront OBJ resource into a shared vertex table, an
// indexed triangle list and the ordered list of material names referenced
// by "usemtl" directives. Faces with more than three vertices are fan
// triangulated around their first vertex. Unlike a rendering-oriented OBJ
// reader this one ignores vt/vn coordinates and mtllib-defined shading
// parameters entirely: a collision mesh's material slot is a bare index,
// not a shading expression.
func ReadOBJ(res *asset.MeshFile) ([]mesh.Vertex, []mesh.IndexedTriangle, []mesh.MaterialHandle, error) {
	r := &objReader{
		matIndex: make(map[string]uint32),
	}
	if err := r.parse(res); err != nil {
		return nil, nil, nil, err
	}
	return r.vertices, r.triangles, r.materials, nil
}

type objReader struct {
	vertices  []mesh.Vertex
	triangles []mesh.IndexedTriangle

	materials []mesh.MaterialHandle
	matIndex  map[string]uint32
	curMatSet bool
	curMatIdx uint32
}

func (r *objReader) parse(res *asset.MeshFile) error {
	scanner := bufio.NewScanner(res)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}

		var err error
		switch tokens[0] {
		case "v":
			err = r.parseVertex(tokens)
		case "usemtl":
			err = r.parseUseMaterial(tokens)
		case "f":
			err = r.parseFace(tokens)
		}
		if err != nil {
			return fmt.Errorf("meshio: line %d: %s", lineNum, err)
		}
	}
	return scanner.Err()
}

func (r *objReader) parseVertex(tokens []string) error {
	if len(tokens) != 4 {
		return fmt.Errorf(`"v" expects 3 arguments, got %d`, len(tokens)-1)
	}
	var v types.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(tokens[i+1], 32)
		if err != nil {
			return fmt.Errorf("could not parse vertex component %d: %s", i, err)
		}
		v[i] = float32(f)
	}
	r.vertices = append(r.vertices, v)
	return nil
}

func (r *objReader) parseUseMaterial(tokens []string) error {
	if len(tokens) != 2 {
		return fmt.Errorf(`"usemtl" expects 1 argument, got %d`, len(tokens)-1)
	}
	name := tokens[1]
	idx, ok := r.matIndex[name]
	if !ok {
		idx = uint32(len(r.materials))
		r.matIndex[name] = idx
		r.materials = append(r.materials, mesh.MaterialHandle(name))
	}
	r.curMatIdx = idx
	r.curMatSet = true
	return nil
}

// parseFace parses an "f" line and fan-triangulates it around its first
// vertex when it has more than three indices.
func (r *objReader) parseFace(tokens []string) error {
	if len(tokens) < 4 {
		return fmt.Errorf(`"f" expects at least 3 arguments, got %d`, len(tokens)-1)
	}

	indices := make([]uint32, len(tokens)-1)
	for i, tok := range tokens[1:] {
		idx, err := r.faceVertexIndex(tok)
		if err != nil {
			return fmt.Errorf("face argument %d: %s", i, err)
		}
		indices[i] = idx
	}

	for i := 1; i < len(indices)-1; i++ {
		t := mesh.IndexedTriangle{Idx: [3]uint32{indices[0], indices[i], indices[i+1]}}
		if r.curMatSet {
			t.SetMaterialIndex(r.curMatIdx)
		}
		r.triangles = append(r.triangles, t)
	}
	return nil
}

// faceVertexIndex resolves one "v", "v/vt" or "v/vt/vn" face argument to a
// zero-based vertex index, handling OBJ's 1-based and negative (relative to
// the end of the vertex list so far) indexing conventions.
func (r *objReader) faceVertexIndex(tok string) (uint32, error) {
	vTok := strings.SplitN(tok, "/", 2)[0]
	if vTok == "" {
		return 0, fmt.Errorf("missing vertex index")
	}

	n, err := strconv.Atoi(vTok)
	if err != nil {
		return 0, fmt.Errorf("invalid vertex index %q: %s", vTok, err)
	}

	count := len(r.vertices)
	var idx int
	if n < 0 {
		idx = count + n
	} else {
		idx = n - 1
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("vertex index %d out of range (%d vertices defined so far)", n, count)
	}
	return uint32(idx), nil
}
