package segment

import (
	"github.com/cairnsearch/cairn/trigram"
	"github.com/cairnsearch/cairn/varint"
)

// FilePositions is one file's occurrences of a single trigram, in
// ascending order (the order ExtractPositions/the scan loop produces
// them, since extraction walks content left to right).
type FilePositions struct {
	LocalID   uint32
	Positions []trigram.Position
}

// PositionalBuilder accumulates, for each trigram, the per-file position
// lists that make up a v2 segment's positional posting lists. Like
// PostingBuilder, it relies on documents being added in increasing
// localID order.
type PositionalBuilder map[trigram.Trigram][]FilePositions

// Add records that localID contains t at the given positions (already
// sorted ascending by ExtractPositions).
func (b PositionalBuilder) Add(t trigram.Trigram, localID uint32, positions []trigram.Position) {
	b[t] = append(b[t], FilePositions{LocalID: localID, Positions: positions})
}

// EncodePositionalList encodes a trigram's per-file position lists as:
//
//	for each file, in ascending local id order:
//	  varint(local_id_delta + 1)
//	  varint(position_count)
//	  for each position, in ascending order:
//	    varint(byte_offset_delta + 1)
//	    varint(rune_offset_delta + 1)
//	varint(0)  // terminates the file list
//
// The first byte/rune offset of a file is encoded as a delta from 0, same
// as the first file id is a delta from 0. This mirrors
// EncodePostingList's delta-plus-one convention (see its comment) applied
// one level deeper, per spec.md's v2 posting list layout.
func EncodePositionalList(files []FilePositions) []byte {
	buf := make([]byte, 0, 64)
	var prevID uint32
	first := true
	for _, f := range files {
		var idDelta uint64
		if first {
			idDelta = uint64(f.LocalID) + 1
			first = false
		} else {
			idDelta = uint64(f.LocalID-prevID) + 1
		}
		buf = varint.Append(buf, idDelta)
		prevID = f.LocalID

		buf = varint.Append(buf, uint64(len(f.Positions)))

		var prevByte, prevRune uint32
		for i, pos := range f.Positions {
			if i == 0 {
				buf = varint.Append(buf, uint64(pos.ByteOffset)+1)
				buf = varint.Append(buf, uint64(pos.RuneOffset)+1)
			} else {
				buf = varint.Append(buf, uint64(pos.ByteOffset-prevByte)+1)
				buf = varint.Append(buf, uint64(pos.RuneOffset-prevRune)+1)
			}
			prevByte, prevRune = pos.ByteOffset, pos.RuneOffset
		}
	}
	return varint.Append(buf, 0)
}

// DecodePositionalList decodes a stream produced by EncodePositionalList,
// returning the per-file position lists and the number of bytes consumed.
func DecodePositionalList(buf []byte) (files []FilePositions, n int) {
	var prevID uint32
	first := true
	for {
		idDelta, used := varint.Decode(buf[n:])
		n += used
		if idDelta == 0 {
			return files, n
		}
		var id uint32
		if first {
			id = uint32(idDelta - 1)
			first = false
		} else {
			id = prevID + uint32(idDelta-1)
		}
		prevID = id

		count, used := varint.Decode(buf[n:])
		n += used

		positions := make([]trigram.Position, 0, count)
		var prevByte, prevRune uint32
		for i := uint64(0); i < count; i++ {
			bDelta, used := varint.Decode(buf[n:])
			n += used
			rDelta, used := varint.Decode(buf[n:])
			n += used

			var byteOff, runeOff uint32
			if i == 0 {
				byteOff = uint32(bDelta - 1)
				runeOff = uint32(rDelta - 1)
			} else {
				byteOff = prevByte + uint32(bDelta-1)
				runeOff = prevRune + uint32(rDelta-1)
			}
			positions = append(positions, trigram.Position{ByteOffset: byteOff, RuneOffset: runeOff})
			prevByte, prevRune = byteOff, runeOff
		}
		files = append(files, FilePositions{LocalID: id, Positions: positions})
	}
}

// EncodeRuneSampler encodes one file's sampled rune->byte offsets
// (trigram.SampleRuneOffsets) as a count followed by delta-encoded byte
// offsets, per spec.md's rune-offset sampler format.
func EncodeRuneSampler(samples []uint32) []byte {
	buf := varint.Append(nil, uint64(len(samples)))
	var prev uint32
	for i, s := range samples {
		if i == 0 {
			buf = varint.Append(buf, uint64(s))
		} else {
			buf = varint.Append(buf, uint64(s-prev))
		}
		prev = s
	}
	return buf
}

// DecodeRuneSampler decodes a stream produced by EncodeRuneSampler,
// returning the absolute byte offsets and the number of bytes consumed.
func DecodeRuneSampler(buf []byte) (samples []uint32, n int) {
	count, used := varint.Decode(buf[n:])
	n += used
	samples = make([]uint32, 0, count)
	var prev uint32
	for i := uint64(0); i < count; i++ {
		delta, used := varint.Decode(buf[n:])
		n += used
		var off uint32
		if i == 0 {
			off = uint32(delta)
		} else {
			off = prev + uint32(delta)
		}
		samples = append(samples, off)
		prev = off
	}
	return samples, n
}
