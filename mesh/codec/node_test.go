package codec

import "testing"

func TestNodeBlockRoundTrip(t *testing.T) {
	n := NodeBlock{
		MinX: [4]Float16{Float32To16(-1), Float32To16(0), Float32To16(2), 0},
		MinY: [4]Float16{Float32To16(-1), Float32To16(0), Float32To16(2), 0},
		MinZ: [4]Float16{Float32To16(-1), Float32To16(0), Float32To16(2), 0},
		MaxX: [4]Float16{Float32To16(1), Float32To16(1), Float32To16(3), 0},
		MaxY: [4]Float16{Float32To16(1), Float32To16(1), Float32To16(3), 0},
		MaxZ: [4]Float16{Float32To16(1), Float32To16(1), Float32To16(3), 0},
		Properties: [4]uint32{
			InternalProperty(128),
			LeafProperty(7),
			InternalProperty(4096),
			LeafProperty(0),
		},
	}
	minEmpty, maxEmpty := EmptyChild()
	n.MinX[3], n.MaxX[3] = minEmpty, maxEmpty

	buf := n.Encode(nil)
	if len(buf) != NodeBlockSize {
		t.Fatalf("expected encoded size %d, got %d", NodeBlockSize, len(buf))
	}

	got := DecodeNodeBlock(buf)
	for i := 0; i < 4; i++ {
		if got.MinX[i] != n.MinX[i] || got.MaxX[i] != n.MaxX[i] {
			t.Fatalf("child %d X bounds mismatch: got (%v,%v) want (%v,%v)", i, got.MinX[i], got.MaxX[i], n.MinX[i], n.MaxX[i])
		}
		if got.Properties[i] != n.Properties[i] {
			t.Fatalf("child %d property mismatch: got %#x want %#x", i, got.Properties[i], n.Properties[i])
		}
	}

	if !PropertyIsLeaf(got.Properties[1]) || PropertyValue(got.Properties[1]) != 7 {
		t.Fatalf("expected child 1 to decode as leaf block 7")
	}
	if PropertyIsLeaf(got.Properties[0]) || PropertyValue(got.Properties[0]) != 128 {
		t.Fatalf("expected child 0 to decode as internal offset 128")
	}
	if !IsEmptyChild(got.MinX[3], got.MaxX[3]) {
		t.Fatalf("expected child 3 to decode as the empty sentinel")
	}
}
