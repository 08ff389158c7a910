package varint

import "testing"

func TestRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 255, 256, 16383, 16384, 1<<32 - 1, 1<<64 - 1}
	for _, v := range cases {
		enc := Encode(v)
		got, n := Decode(enc)
		if got != v {
			t.Errorf("Decode(Encode(%d)) = %d", v, got)
		}
		if n != len(enc) {
			t.Errorf("Decode(Encode(%d)) consumed %d bytes, want %d", v, n, len(enc))
		}
	}
}

func TestZeroIsOneByte(t *testing.T) {
	enc := Encode(0)
	if len(enc) != 1 || enc[0] != 0 {
		t.Errorf("Encode(0) = %v, want [0]", enc)
	}
}

func TestTruncated(t *testing.T) {
	enc := Encode(1 << 40)
	short := enc[:len(enc)-1]
	_, n := Decode(short)
	if n != len(short) {
		t.Errorf("Decode(truncated) consumed %d bytes, want %d (full buf)", n, len(short))
	}
}
