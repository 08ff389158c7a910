package field

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"

	"github.com/cairnsearch/cairn/segment"
	"github.com/cairnsearch/cairn/trigram"
)

// liveSegment is one live field-aware segment as seen through a reader
// snapshot — the field-aware counterpart of cairn's segReader.
type liveSegment struct {
	meta SegmentMeta
	r    *segmentReader
	del  *segment.DeletionSet
	live *roaring.Bitmap
	base uint32
}

// Reader is a point-in-time, snapshot-consistent view over every
// field-aware segment a field-meta.json referenced at Open time,
// mirroring cairn.Reader's semantics for the field-aware variant.
type Reader struct {
	dir    string
	meta   *Meta
	schema *Schema
	segs   []*liveSegment
	logger *zap.Logger
}

// OpenReader loads dir's current field-meta.json, memory-maps every
// segment it references, and opens each one's optional deletion bitmap.
func OpenReader(dir string, opts ...Option) (rd *Reader, err error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	meta, err := loadMeta(dir)
	if err != nil {
		return nil, err
	}
	schema, err := NewSchema(meta.Fields...)
	if err != nil {
		return nil, fmt.Errorf("field: %s has no committed field schema: %w", metaPath(dir), err)
	}

	segs := make([]*liveSegment, 0, len(meta.Segments))
	defer func() {
		if err != nil {
			for _, s := range segs {
				s.r.Close()
			}
		}
	}()

	var base uint32
	for _, sm := range meta.Segments {
		id := segment.ID(sm.ID)
		sr, openErr := openSegment(id.SegPath(segmentsDir(dir)))
		if openErr != nil {
			return nil, fmt.Errorf("field: open segment %s: %w", sm.ID, openErr)
		}
		var del *segment.DeletionSet
		if sm.HasDeletions {
			del, openErr = segment.ReadDeletionSet(id.DelPath(segmentsDir(dir)))
			if openErr != nil {
				sr.Close()
				return nil, fmt.Errorf("field: read deletions for segment %s: %w", sm.ID, openErr)
			}
		}

		live := roaring.New()
		live.AddRange(0, uint64(sm.NumDocs))
		if del != nil {
			for local := uint32(0); local < uint32(sm.NumDocs); local++ {
				if del.IsDeleted(local) {
					live.Remove(local)
				}
			}
		}

		segs = append(segs, &liveSegment{meta: sm, r: sr, del: del, live: live, base: base})
		base += uint32(sm.NumDocs)
	}

	return &Reader{dir: dir, meta: meta, schema: schema, segs: segs, logger: cfg.logger}, nil
}

// Schema returns the reader's committed field schema.
func (r *Reader) Schema() *Schema { return r.schema }

// NumDocs returns the number of live documents visible through this
// snapshot. Named NumDocs (not DocumentCount) to match bm25.Rank's
// existing N term.
func (r *Reader) NumDocs() int {
	var n uint64
	for _, s := range r.segs {
		n += s.live.GetCardinality()
	}
	return int(n)
}

// SegmentCount returns the number of live segments in this snapshot.
func (r *Reader) SegmentCount() int { return len(r.segs) }

// Close unmaps every segment this reader opened.
func (r *Reader) Close() error {
	var firstErr error
	for _, s := range r.segs {
		if err := s.r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Name resolves a global id back to its stored path, mirroring
// cairn.Reader.Name's accumulate-then-scan lookup.
func (r *Reader) Name(globalID uint32) (string, error) {
	var base uint32
	for _, seg := range r.segs {
		n := uint32(seg.r.NumDocs())
		if globalID < base+n {
			return seg.r.Name(globalID - base)
		}
		base += n
	}
	return "", ErrNotFound
}

// Postings returns the ascending global document ids whose field f
// contains trigram t, across every live segment in this snapshot.
func (r *Reader) Postings(t trigram.Trigram, f FieldID) ([]uint32, bool) {
	var out []uint32
	found := false
	for _, seg := range r.segs {
		ids, ok := seg.r.Postings(t, f)
		if !ok {
			continue
		}
		found = true
		for _, local := range ids {
			if seg.del != nil && seg.del.IsDeleted(local) {
				continue
			}
			out = append(out, seg.base+local)
		}
	}
	return out, found
}

// DocFreq returns the document frequency of t within field f, summed
// across every live segment — the `df` term bm25.Rank's IDF formula
// uses.
func (r *Reader) DocFreq(t trigram.Trigram, f FieldID) int {
	var df int
	for _, seg := range r.segs {
		df += seg.r.DocFreq(t, f)
	}
	return df
}

// Posting is one live occurrence a FieldTrigramIterator yields.
type Posting struct {
	LocalID      uint32
	GlobalID     uint32
	SegmentIndex int
}

// FieldTrigramIterator walks every live occurrence of one (trigram,
// field) pair across all segments, in meta order, mirroring
// cairn.TrigramIterator.
type FieldTrigramIterator struct {
	r      *Reader
	t      trigram.Trigram
	f      FieldID
	segIdx int
	ids    []uint32
	pos    int
}

// LookupTrigram returns a fresh iterator over (t, f)'s occurrences.
func (r *Reader) LookupTrigram(t trigram.Trigram, f FieldID) *FieldTrigramIterator {
	return &FieldTrigramIterator{r: r, t: t, f: f}
}

// Next advances the iterator, returning the next live posting and true,
// or the zero Posting and false once every segment is exhausted.
func (it *FieldTrigramIterator) Next() (Posting, bool) {
	for {
		if it.ids == nil {
			if it.segIdx >= len(it.r.segs) {
				return Posting{}, false
			}
			seg := it.r.segs[it.segIdx]
			ids, _ := seg.r.Postings(it.t, it.f)
			it.ids = ids
			if it.ids == nil {
				it.ids = []uint32{}
			}
			it.pos = 0
		}

		seg := it.r.segs[it.segIdx]
		for it.pos < len(it.ids) {
			local := it.ids[it.pos]
			it.pos++
			if seg.del != nil && seg.del.IsDeleted(local) {
				continue
			}
			return Posting{LocalID: local, GlobalID: seg.base + local, SegmentIndex: it.segIdx}, true
		}
		it.segIdx++
		it.ids = nil
	}
}
