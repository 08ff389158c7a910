package field

import (
	"sort"

	"github.com/cairnsearch/cairn/segment"
	"github.com/cairnsearch/cairn/trigram"
	"github.com/cairnsearch/cairn/varint"
)

// segmentReader is a read-only, memory-mapped view of one immutable
// field-aware segment file — the field-aware counterpart of
// segment.Reader. It is a building block for the exported, multi-segment
// Reader (index_reader.go), the same way segment.Reader sits underneath
// cairn.Reader.
type segmentReader struct {
	file *mappedFile
	data []byte

	schema *Schema

	numDocs     uint64
	nameListOff uint64
	postingsOff uint64
	index       []indexEntry // ascending by packed (trigram, field_id) key
}

// openSegment memory-maps the field-aware segment file at path and
// parses its trailer, field schema, and posting index.
func openSegment(path string) (*segmentReader, error) {
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

// Schema returns the segment's fixed field schema.
func (r *segmentReader) Schema() *Schema { return r.schema }

// NumDocs returns the number of documents stored in this segment.
func (r *segmentReader) NumDocs() int { return int(r.numDocs) }

// Name returns the path of the document with the given local id.
func (r *segmentReader) Name(localID uint32) (string, error) {
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

func (r *segmentReader) lookup(t trigram.Trigram, f FieldID) (indexEntry, bool) {
	key := packKey(t, f)
	i := sort.Search(len(r.index), func(i int) bool {
		return packKey(r.index[i].Trigram, r.index[i].Field) >= key
	})
	if i < len(r.index) && r.index[i].Trigram == t && r.index[i].Field == f {
		return r.index[i], true
	}
	return indexEntry{}, false
}

// Postings returns the ascending local document ids whose field f
// contains trigram t.
func (r *segmentReader) Postings(t trigram.Trigram, f FieldID) ([]uint32, bool) {
	e, ok := r.lookup(t, f)
	if !ok {
		return nil, false
	}
	ids, _ := segment.DecodePostingList(r.data[r.postingsOff+e.Offset:])
	return ids, true
}

// DocFreq returns the document frequency of t within field f — the
// `df` term spec.md §4.14's BM25-over-trigrams formula uses.
func (r *segmentReader) DocFreq(t trigram.Trigram, f FieldID) int {
	e, ok := r.lookup(t, f)
	if !ok {
		return 0
	}
	return int(e.Count)
}

// Entries returns every (trigram, field) pair this segment carries
// postings for, in ascending packed-key order, for Writer.Merge to walk
// without needing to re-derive trigrams from source content.
func (r *segmentReader) Entries() []indexEntry {
	return append([]indexEntry(nil), r.index...)
}

// Close unmaps the segment file.
func (r *segmentReader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
