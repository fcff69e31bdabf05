package mesh

// sanitize filters a raw triangle list down to a deduplicated, non-degenerate
// list, grounded on spec.md §4.1: drop triangles whose three indices are not
// distinct, then drop triangles whose canonical (rotated so the smallest
// index comes first) index set was already seen.
//
// In strict mode a degenerate triangle is a hard error (DegenerateTriangle)
// instead of being silently dropped, matching the "permissive vs strict
// constructor" distinction in spec.md §8 scenario 4.
func sanitize(triangles []IndexedTriangle, strict bool) ([]IndexedTriangle, error) {
	seen := make(map[[3]uint32]struct{}, len(triangles))
	out := make([]IndexedTriangle, 0, len(triangles))

	for idx, t := range triangles {
		if t.IsDegenerate() {
			if strict {
				return nil, newBuildError(DegenerateTriangle, "triangle %d has repeated vertex indices %v", idx, t.Idx)
			}
			continue
		}

		key := t.canonicalKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}

	if len(out) == 0 {
		return nil, newBuildError(EmptyInput, "no triangles remained after sanitization")
	}

	return out, nil
}

// validateIndices checks that every triangle index lies in
// [0, vertexCount) and that material indices are in range for the given
// material count, per the invariants in spec.md §3.
func validateIndices(triangles []IndexedTriangle, vertexCount int, materialCount int) error {
	limit := materialCount
	if limit == 0 {
		limit = 1
	}

	for ti, t := range triangles {
		for comp, idx := range t.Idx {
			if int(idx) >= vertexCount {
				return newBuildError(IndexOutOfRange, "triangle %d component %d references vertex %d but vertex_count is %d", ti, comp, idx, vertexCount)
			}
		}

		matIdx := t.MaterialIndex()
		if materialCount == 0 && matIdx != 0 {
			return newBuildError(MaterialsAbsentNonzeroIndex, "triangle %d has material index %d but the mesh defines no materials", ti, matIdx)
		}
		if int(matIdx) >= limit {
			return newBuildError(MaterialIndexOutOfRange, "triangle %d has material index %d but material_count is %d", ti, matIdx, materialCount)
		}
	}

	return nil
}
