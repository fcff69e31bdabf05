package codec

import "encoding/binary"

// NodeBlockSize is the fixed byte size of one encoded 4-wide node block:
// six half-float lanes of 4 children (48 bytes) plus four uint32 child
// properties (16 bytes).
const NodeBlockSize = 6*4*2 + 4*4

// leafMarker is OR-ed into a child property to mark it as a triangle-block
// ID rather than a byte offset, per spec.md §4.5.
const leafMarker uint32 = 1 << 31

// NodeBlock is the decoded form of a 4-wide node: the AABB of each of the
// (up to 4) children plus a property word tagging each as internal, leaf, or
// empty.
type NodeBlock struct {
	MinX, MinY, MinZ [4]Float16
	MaxX, MaxY, MaxZ [4]Float16
	Properties       [4]uint32
}

// InternalProperty encodes the byte offset of a child node block, relative
// to the start of the serialized buffer. offset must fit in 31 bits.
func InternalProperty(offset uint32) uint32 {
	return offset &^ leafMarker
}

// LeafProperty encodes a triangle-block ID as a leaf child property.
func LeafProperty(blockID uint32) uint32 {
	return blockID | leafMarker
}

// PropertyIsLeaf reports whether p was produced by LeafProperty.
func PropertyIsLeaf(p uint32) bool {
	return p&leafMarker != 0
}

// PropertyValue strips the leaf marker, returning either a byte offset or a
// triangle-block ID depending on PropertyIsLeaf.
func PropertyValue(p uint32) uint32 {
	return p &^ leafMarker
}

// EmptyChild returns a sentinel child slot: min > max on the X axis, which
// every consumer treats as "never a hit" per spec.md §4.5.
func EmptyChild() (min, max Float16) {
	return Float32To16(1), Float32To16(-1)
}

// IsEmptyChild reports whether the given per-child X-axis bounds are the
// empty sentinel (min > max); only the X axis is checked, as in EmptyChild.
func IsEmptyChild(minX, maxX Float16) bool {
	return Float16To32(minX) > Float16To32(maxX)
}

// Encode appends the binary form of n to buf and returns the extended
// slice. Layout: minX[4], minY[4], minZ[4], maxX[4], maxY[4], maxZ[4] as
// little-endian uint16 half-floats, then properties[4] as little-endian
// uint32, matching spec.md §4.5's field order.
func (n NodeBlock) Encode(buf []byte) []byte {
	var tmp [2]byte
	putHalf := func(h Float16) {
		binary.LittleEndian.PutUint16(tmp[:], uint16(h))
		buf = append(buf, tmp[:]...)
	}
	for _, lane := range [][4]Float16{n.MinX, n.MinY, n.MinZ, n.MaxX, n.MaxY, n.MaxZ} {
		for _, h := range lane {
			putHalf(h)
		}
	}
	var tmp4 [4]byte
	for _, p := range n.Properties {
		binary.LittleEndian.PutUint32(tmp4[:], p)
		buf = append(buf, tmp4[:]...)
	}
	return buf
}

// DecodeNodeBlock reads a NodeBlock from the front of buf. buf must be at
// least NodeBlockSize bytes.
func DecodeNodeBlock(buf []byte) NodeBlock {
	_ = buf[NodeBlockSize-1] // bounds check hint, mirrors the codec's other decode paths
	var n NodeBlock
	off := 0
	readLane := func() [4]Float16 {
		var lane [4]Float16
		for i := range lane {
			lane[i] = Float16(binary.LittleEndian.Uint16(buf[off : off+2]))
			off += 2
		}
		return lane
	}
	n.MinX = readLane()
	n.MinY = readLane()
	n.MinZ = readLane()
	n.MaxX = readLane()
	n.MaxY = readLane()
	n.MaxZ = readLane()
	for i := range n.Properties {
		n.Properties[i] = binary.LittleEndian.Uint32(buf[off : off+4])
		off += 4
	}
	return n
}
