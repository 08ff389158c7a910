package segment

import (
	"sort"

	"github.com/cairnsearch/cairn/trigram"
	"github.com/cairnsearch/cairn/varint"
)

// WriteSegmentV1 builds a non-positional segment file at path from names
// (document paths indexed by local id, in ascending id order) and
// postings (accumulated while scanning those documents), and installs it
// atomically via WriteFileAtomic.
//
// On-disk layout (all offsets relative to the start of the file):
//
//	magic header "cairn seg 1\n"           12 bytes
//	name list        varint(len) + bytes, one entry per document
//	posting lists    EncodePostingList(ids), one per trigram, ascending
//	posting index    3-byte trigram + varint(offset) + varint(count)
//	trailer          6 big-endian uint64 fields
//	magic trailer "cairn trlr 1\n"
//
// This is the literal format spec.md §4.3/§4.4 describe; it deliberately
// does not carry over google-codesearch's prefix-compressed path list or
// Elias-gamma posting deltas (index/write.go, index/merge.go) — those are
// optimizations for a single index spanning an entire filesystem tree,
// and do not apply to a bounded, per-commit segment.
func WriteSegmentV1(path string, names []string, postings PostingBuilder) error {
	data := make([]byte, 0, 4096)
	data = append(data, magicHeaderV1...)

	nameListOff := uint64(len(data))
	for _, name := range names {
		data = varint.Append(data, uint64(len(name)))
		data = append(data, name...)
	}

	trigrams := sortedTrigrams(postings)
	postingsOff := uint64(len(data))
	offsets := make([]uint64, len(trigrams))
	for i, t := range trigrams {
		offsets[i] = uint64(len(data)) - postingsOff
		data = append(data, EncodePostingList(postings[t])...)
	}

	postingIndexOff := uint64(len(data))
	for i, t := range trigrams {
		b := t.Bytes()
		data = append(data, b[0], b[1], b[2])
		data = varint.Append(data, offsets[i])
		data = varint.Append(data, uint64(len(postings[t])))
	}

	data = putUint64s(data, nameListOff, postingsOff, postingIndexOff, uint64(len(names)), uint64(len(trigrams)), 0)
	data = append(data, magicTrailerV1...)

	return WriteFileAtomic(path, data)
}

func parseV1(data []byte) (*Reader, error) {
	magicLen := len(magicTrailerV1)
	trailerLen := 48
	if len(data) < magicLen+trailerLen {
		return nil, ErrTruncated
	}
	if string(data[len(data)-magicLen:]) != magicTrailerV1 {
		return nil, ErrBadMagic
	}
	trailerOff := uint64(len(data) - magicLen - trailerLen)

	nameListOff := getUint64(data, trailerOff)
	postingsOff := getUint64(data, trailerOff+8)
	postingIndexOff := getUint64(data, trailerOff+16)
	numDocs := getUint64(data, trailerOff+24)

	index := readIndex(data, postingIndexOff, trailerOff, false)

	return &Reader{
		data:        data,
		Version:     1,
		Positional:  false,
		numDocs:     numDocs,
		nameListOff: nameListOff,
		postingsOff: postingsOff,
		index:       index,
	}, nil
}

// sortedTrigrams returns the keys of a posting builder in ascending
// order, so both the posting lists and the posting index are written
// sorted (required for the reader's binary search).
func sortedTrigrams[V any](m map[trigram.Trigram]V) []trigram.Trigram {
	ts := make([]trigram.Trigram, 0, len(m))
	for t := range m {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	return ts
}
