// Package segment implements the on-disk segment format: immutable,
// write-once posting-list files built from a batch of buffered documents,
// plus the deletion bitmaps and mmap-backed readers that sit on top of
// them. The posting-list codec is ported from google-codesearch's
// index/write.go and index/read.go (delta-plus-one varints terminated by
// a zero sentinel); the segment/deletion-bitmap/positional layers around
// it are new, generalizing the teacher's single monolithic index into
// one immutable unit of an incremental, crash-safe index.
package segment

import (
	"github.com/cairnsearch/cairn/trigram"
	"github.com/cairnsearch/cairn/varint"
)

// PostingBuilder accumulates, for each trigram seen while a segment is
// being built, the ascending list of local document ids that contain it.
// Because documents are assigned local ids in the order they are added,
// appending to each trigram's slice as documents are scanned keeps every
// list sorted with no extra work — the same invariant the teacher's
// single-pass IndexWriter relies on.
type PostingBuilder map[trigram.Trigram][]uint32

// Add records that localID contains t. Callers must add documents in
// increasing localID order.
func (b PostingBuilder) Add(t trigram.Trigram, localID uint32) {
	ids := b[t]
	if n := len(ids); n > 0 && ids[n-1] == localID {
		return // already recorded for this document
	}
	b[t] = append(ids, localID)
}

// EncodePostingList encodes an ascending list of local document ids as
// the delta-plus-one varint stream terminated by a zero byte, per
// spec.md's posting list format (ported from
// google-codesearch's postEntry/writePost in index/write.go, which uses
// the same delta+1 encoding to keep 0 reserved as an unambiguous
// terminator — a plain delta encoding cannot distinguish "next delta is
// 0" from "end of list" when consecutive ids repeat, hence the +1 bias).
func EncodePostingList(ids []uint32) []byte {
	buf := make([]byte, 0, len(ids)*2+1)
	var prev uint32
	first := true
	for _, id := range ids {
		var delta uint64
		if first {
			delta = uint64(id) + 1
			first = false
		} else {
			delta = uint64(id-prev) + 1
		}
		buf = varint.Append(buf, delta)
		prev = id
	}
	return varint.Append(buf, 0)
}

// DecodePostingList decodes a delta-plus-one varint stream produced by
// EncodePostingList, returning the ascending ids and the number of bytes
// consumed (including the terminating zero byte).
func DecodePostingList(buf []byte) (ids []uint32, n int) {
	var prev uint32
	first := true
	for {
		delta, used := varint.Decode(buf[n:])
		n += used
		if delta == 0 {
			return ids, n
		}
		if first {
			prev = uint32(delta - 1)
			first = false
		} else {
			prev += uint32(delta - 1)
		}
		ids = append(ids, prev)
	}
}
