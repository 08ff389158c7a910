// Package trigram implements the 24-bit packed trigram primitive and the
// streaming extractor used both at index time and at query time. The
// extraction loop is ported from google-codesearch's
// IndexWriter.add (index/write.go): a sliding three-byte window over raw
// bytes, with the same NUL/UTF-8/line-length/trigram-count limits.
package trigram

// A Trigram is three consecutive bytes of source text packed into a
// 24-bit value b0<<16 | b1<<8 | b2. Trigrams carry no position; they are
// content-addressing only. Ordering is the natural numeric order.
type Trigram uint32

// Pack packs three bytes into a Trigram.
func Pack(b0, b1, b2 byte) Trigram {
	return Trigram(uint32(b0)<<16 | uint32(b1)<<8 | uint32(b2))
}

// Bytes unpacks t back into its three constituent bytes.
func (t Trigram) Bytes() [3]byte {
	return [3]byte{byte(t >> 16), byte(t >> 8), byte(t)}
}

func (t Trigram) String() string {
	b := t.Bytes()
	return string(b[:])
}

// Position records where a trigram occurrence begins: the byte offset of
// its first byte, and the rune (Unicode scalar value) index of that same
// byte within the document.
type Position struct {
	ByteOffset uint32
	RuneOffset uint32
}
