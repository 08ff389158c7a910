package segment

import (
	"encoding/binary"
	"sort"

	"github.com/cairnsearch/cairn/trigram"
	"github.com/cairnsearch/cairn/varint"
)

const (
	magicHeaderV1 = "cairn seg 1\n" // 12 bytes
	magicTrailerV1 = "cairn trlr 1\n"
	magicHeaderV2  = "cairn seg 2\n"
	magicTrailerV2 = "cairn trlr 2\n"
)

// indexEntry is one parsed row of a segment's posting index: the
// trigram's byte offset and document frequency (and, for v2 segments,
// its total occurrence count across all documents).
type indexEntry struct {
	Trigram  trigram.Trigram
	Offset   uint64
	Count    uint64
	PosCount uint64
}

// Reader is a read-only, memory-mapped view of one immutable segment
// file. It supports both the v1 (trigram-only) and v2 (positional)
// formats; callers distinguish them with Positional.
type Reader struct {
	file *mappedFile
	data []byte

	Version    int
	Positional bool

	numDocs      uint64
	nameListOff  uint64
	postingsOff  uint64
	index        []indexEntry // ascending by Trigram
	runeMapOff   uint64       // v2 only
}

// Open memory-maps the segment file at path and parses its trailer and
// posting index.
func Open(path string) (*Reader, error) {
	mf, err := openMappedFile(path)
	if err != nil {
		return nil, err
	}
	data := mf.Bytes()

	r, err := parse(data)
	if err != nil {
		mf.Close()
		return nil, err
	}
	r.file = mf
	return r, nil
}

func parse(data []byte) (*Reader, error) {
	if len(data) < len(magicHeaderV1) {
		return nil, ErrTruncated
	}
	switch string(data[:12]) {
	case magicHeaderV1:
		return parseV1(data)
	case magicHeaderV2:
		return parseV2(data)
	default:
		return nil, ErrBadMagic
	}
}

// readIndex parses the posting index section (data[off:end]) into
// ascending indexEntry rows. withPosCount selects the v2 layout, which
// carries an extra varint(total_position_count) per entry.
func readIndex(data []byte, off, end uint64, withPosCount bool) []indexEntry {
	var entries []indexEntry
	i := off
	for i < end {
		t := trigram.Pack(data[i], data[i+1], data[i+2])
		i += 3
		offset, n := varint.Decode(data[i:])
		i += uint64(n)
		count, n := varint.Decode(data[i:])
		i += uint64(n)
		var posCount uint64
		if withPosCount {
			posCount, n = varint.Decode(data[i:])
			i += uint64(n)
		}
		entries = append(entries, indexEntry{Trigram: t, Offset: offset, Count: count, PosCount: posCount})
	}
	return entries
}

// lookup binary-searches the posting index for t.
func (r *Reader) lookup(t trigram.Trigram) (indexEntry, bool) {
	i := sort.Search(len(r.index), func(i int) bool { return r.index[i].Trigram >= t })
	if i < len(r.index) && r.index[i].Trigram == t {
		return r.index[i], true
	}
	return indexEntry{}, false
}

// NumDocs returns the number of documents stored in this segment,
// including any later marked deleted (deletion is tracked separately in
// the segment's .del bitmap, not in the segment file itself).
func (r *Reader) NumDocs() int { return int(r.numDocs) }

// Name returns the path of the document with the given local id, per
// spec.md's O(local_id) linear scan through the name list (segments are
// small enough — bounded by the writer's flush threshold — that this
// never needs an auxiliary index).
func (r *Reader) Name(localID uint32) (string, error) {
	if uint64(localID) >= r.numDocs {
		return "", ErrNotFound
	}
	off := r.nameListOff
	for i := uint32(0); ; i++ {
		length, n := varint.Decode(r.data[off:])
		off += uint64(n)
		if i == localID {
			return string(r.data[off : off+length]), nil
		}
		off += length
	}
}

// Postings returns the ascending local document ids containing t, for
// v1 or v2 segments alike (v2 positional lists are decoded and their ids
// extracted).
func (r *Reader) Postings(t trigram.Trigram) ([]uint32, bool) {
	e, ok := r.lookup(t)
	if !ok {
		return nil, false
	}
	start := r.postingsOff + e.Offset
	if !r.Positional {
		ids, _ := DecodePostingList(r.data[start:])
		return ids, true
	}
	files, _ := DecodePositionalList(r.data[start:])
	ids := make([]uint32, len(files))
	for i, f := range files {
		ids[i] = f.LocalID
	}
	return ids, true
}

// PositionalPostings returns the per-file position lists for t. It
// returns ErrNoPositions on a v1 segment.
func (r *Reader) PositionalPostings(t trigram.Trigram) ([]FilePositions, error) {
	if !r.Positional {
		return nil, ErrNoPositions
	}
	e, ok := r.lookup(t)
	if !ok {
		return nil, nil
	}
	start := r.postingsOff + e.Offset
	files, _ := DecodePositionalList(r.data[start:])
	return files, nil
}

// RuneOffsets returns the sampled rune->byte offset table for localID,
// built by trigram.SampleRuneOffsets at index time. It returns
// ErrNoPositions on a v1 segment.
func (r *Reader) RuneOffsets(localID uint32) ([]uint32, error) {
	if !r.Positional {
		return nil, ErrNoPositions
	}
	if uint64(localID) >= r.numDocs {
		return nil, ErrNotFound
	}
	off := r.runeMapOff
	for i := uint32(0); ; i++ {
		samples, n := DecodeRuneSampler(r.data[off:])
		if i == localID {
			return samples, nil
		}
		off += uint64(n)
	}
}

// Trigrams returns every trigram present in this segment in ascending
// order. The multi-segment iterator and merge do not use it: the
// iterator looks trigrams up one at a time and merge re-extracts them
// from file content.
func (r *Reader) Trigrams() []trigram.Trigram {
	ts := make([]trigram.Trigram, len(r.index))
	for i, e := range r.index {
		ts[i] = e.Trigram
	}
	return ts
}

func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

func putUint64s(buf []byte, vs ...uint64) []byte {
	for _, v := range vs {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v)
		buf = append(buf, b[:]...)
	}
	return buf
}

func getUint64(data []byte, off uint64) uint64 {
	return binary.BigEndian.Uint64(data[off : off+8])
}
