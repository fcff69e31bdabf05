package mesh

// computeActiveEdges implements spec.md §4.2: build a mapping from each
// undirected edge to the triangles referencing it, then mark an edge active
// when it has exactly one referencing triangle (boundary), three or more
// (non-manifold), or exactly two whose dihedral fails the convexity/
// coplanarity test in edgeIsActive.
//
// cosThreshold is the IsEdgeActive oracle's configurable coplanarity
// threshold (spec.md §9 open question: the exact predicate is whatever the
// host engine's contact generator expects; this module exposes it as a
// Settings field rather than a hardcoded constant).
func computeActiveEdges(vertices []Vertex, triangles []IndexedTriangle, cosThreshold float32) {
	type edgeRef struct {
		triIdx   int
		localIdx int
	}

	edges := make(map[edgeKey][]edgeRef, len(triangles)*3)
	for ti, t := range triangles {
		for local := 0; local < 3; local++ {
			a, b := t.Idx[local], t.Idx[(local+1)%3]
			key := newEdgeKey(a, b)
			edges[key] = append(edges[key], edgeRef{triIdx: ti, localIdx: local})
		}
	}

	for _, refs := range edges {
		var active bool
		switch len(refs) {
		case 1:
			active = true
		case 2:
			r0, r1 := refs[0], refs[1]
			t0, t1 := triangles[r0.triIdx], triangles[r1.triIdx]
			active = edgeIsActive(vertices, t0, r0.localIdx, t1, r1.localIdx, cosThreshold)
		default:
			// Zero references can't happen (we built the map from the
			// triangle list); three or more is non-manifold.
			active = true
		}

		if !active {
			continue
		}
		for _, r := range refs {
			triangles[r.triIdx].SetEdgeActive(r.localIdx, true)
		}
	}
}

// edgeIsActive implements the convexity/coplanarity predicate from
// spec.md §4.2: given the two faces sharing an edge, the edge is active iff
// the faces are non-coplanar (n1.n2 < cosThreshold) or the dihedral is
// concave from the outside ((n1 x n2).d < 0), where d is the edge direction
// from the first endpoint to the second.
func edgeIsActive(vertices []Vertex, t0 IndexedTriangle, local0 int, t1 IndexedTriangle, local1 int, cosThreshold float32) bool {
	e1 := vertices[t0.Idx[local0]]
	e2 := vertices[t0.Idx[(local0+1)%3]]

	n0 := faceNormal(vertices, t0)
	n1 := faceNormal(vertices, t1)

	cos := n0.Normalize().Dot(n1.Normalize())
	if cos < cosThreshold {
		return true
	}

	d := e2.Sub(e1)
	return n0.Cross(n1).Dot(d) < 0
}

func faceNormal(vertices []Vertex, t IndexedTriangle) Vertex {
	v0 := vertices[t.Idx[0]]
	v1 := vertices[t.Idx[1]]
	v2 := vertices[t.Idx[2]]
	return v1.Sub(v0).Cross(v2.Sub(v0))
}
