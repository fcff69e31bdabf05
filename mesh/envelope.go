package mesh

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"

	"github.com/crucible-phys/meshshape/types"
)

// formatVersion guards against loading a buffer written by an incompatible
// encoder. Bump it whenever the node or triangle codec's byte layout
// changes.
const formatVersion uint32 = 1

// header is the fixed-size preamble Save writes before the variable-length
// tree buffer, grounded on the zip+gob envelope in go-pathtrace's
// asset/scene/reader/zip.go, simplified to a flat stream since this module
// has exactly one payload instead of a multi-entry archive.
type header struct {
	Version                uint32
	MaxTrianglesPerLeaf    uint32
	ActiveEdgeCosThreshold float32
	RootMin, RootMax       types.Vec3
	TreeLen                uint32
	NumTriangleBlocks      uint32
	TriangleBlockIDBits    uint32
}

// Save writes the shape's header, its serialized tree buffer, the triangle
// block offset table, and the gob-encoded material list to w. All
// fixed-width fields are little-endian.
func save(w io.Writer, tree *SerializedTree, maxTrisPerLeaf int, activeEdgeCosThreshold float32, materials []MaterialHandle) error {
	h := header{
		Version:                formatVersion,
		MaxTrianglesPerLeaf:    uint32(maxTrisPerLeaf),
		ActiveEdgeCosThreshold: activeEdgeCosThreshold,
		RootMin:                tree.RootBounds.Min,
		RootMax:                tree.RootBounds.Max,
		TreeLen:                uint32(len(tree.Buf)),
		NumTriangleBlocks:      uint32(tree.NumTriangleBlocks),
		TriangleBlockIDBits:    uint32(tree.TriangleBlockIDBits),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return err
	}
	if _, err := w.Write(tree.Buf); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(tree.TriBlockOffsets))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, tree.TriBlockOffsets); err != nil {
		return err
	}

	var matBuf bytes.Buffer
	if err := gob.NewEncoder(&matBuf).Encode(&materials); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(matBuf.Len())); err != nil {
		return err
	}
	_, err := w.Write(matBuf.Bytes())
	return err
}

// restore reads back everything save wrote.
func restore(r io.Reader) (*SerializedTree, int, float32, []MaterialHandle, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, 0, 0, nil, err
	}
	if h.Version != formatVersion {
		return nil, 0, 0, nil, newBuildError(TreeConversionFailed, "unsupported serialized format version %d", h.Version)
	}

	buf := make([]byte, h.TreeLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, 0, 0, nil, err
	}

	var offsetCount uint32
	if err := binary.Read(r, binary.LittleEndian, &offsetCount); err != nil {
		return nil, 0, 0, nil, err
	}
	offsets := make([]uint32, offsetCount)
	if err := binary.Read(r, binary.LittleEndian, offsets); err != nil {
		return nil, 0, 0, nil, err
	}

	var matLen uint32
	if err := binary.Read(r, binary.LittleEndian, &matLen); err != nil {
		return nil, 0, 0, nil, err
	}
	matBuf := make([]byte, matLen)
	if _, err := io.ReadFull(r, matBuf); err != nil {
		return nil, 0, 0, nil, err
	}
	var materials []MaterialHandle
	if err := gob.NewDecoder(bytes.NewReader(matBuf)).Decode(&materials); err != nil {
		return nil, 0, 0, nil, err
	}

	tree := &SerializedTree{
		RootBounds:          types.AABB{Min: h.RootMin, Max: h.RootMax},
		Buf:                 buf,
		NumTriangleBlocks:   int(h.NumTriangleBlocks),
		TriangleBlockIDBits: uint(h.TriangleBlockIDBits),
		TriBlockOffsets:     offsets,
	}
	return tree, int(h.MaxTrianglesPerLeaf), h.ActiveEdgeCosThreshold, materials, nil
}
