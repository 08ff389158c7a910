package cairn

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"

	"github.com/cairnsearch/cairn/segment"
	"github.com/cairnsearch/cairn/trigram"
)

// segReader is one live segment as seen through a single reader
// snapshot: the mmap-backed segment.Reader, its optional deletion
// bitmap, a roaring bitmap of which local ids in it are still live, and
// its base_doc_id (spec.md §3's running sum across meta.Segments).
type segReader struct {
	meta SegmentMeta
	r    *segment.Reader
	del  *segment.DeletionSet
	live *roaring.Bitmap
	base uint32
}

// Reader is a point-in-time, snapshot-consistent view over every segment
// a meta file referenced at Open time (spec.md §4.9, §5's "reader
// snapshots are point-in-time"). Opening a Reader never blocks on or
// observes a writer's subsequent commits.
type Reader struct {
	dir    string
	meta   *Meta
	segs   []*segReader
	logger *zap.Logger
}

// OpenReader loads dir's current meta, memory-maps every segment it
// references, and opens each one's optional deletion bitmap.
func OpenReader(dir string, opts ...Option) (r *Reader, err error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	meta, err := loadMeta(dir)
	if err != nil {
		return nil, err
	}

	segs := make([]*segReader, 0, len(meta.Segments))
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
		sr, openErr := segment.Open(id.SegPath(segmentsDir(dir)))
		if openErr != nil {
			return nil, fmt.Errorf("cairn: open segment %s: %w", sm.ID, openErr)
		}
		var del *segment.DeletionSet
		if sm.HasDeletions {
			del, openErr = segment.ReadDeletionSet(id.DelPath(segmentsDir(dir)))
			if openErr != nil {
				sr.Close()
				return nil, fmt.Errorf("cairn: read deletions for segment %s: %w", sm.ID, openErr)
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

		segs = append(segs, &segReader{meta: sm, r: sr, del: del, live: live, base: base})
		base += uint32(sm.NumDocs)
	}

	return &Reader{dir: dir, meta: meta, segs: segs, logger: cfg.logger}, nil
}

// DocumentCount returns the number of live documents visible through
// this snapshot, summing each segment's roaring-bitmap cardinality
// rather than rescanning posting lists (spec.md §4.9's reader surface;
// the roaring bitmap gives O(segments) accounting instead of O(docs)).
func (r *Reader) DocumentCount() int {
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

// Posting is one live occurrence a TrigramIterator yields: the
// document's local id within its owning segment, its stable global id
// within this reader's snapshot, and which segment (by position in
// meta.Segments) it belongs to.
type Posting struct {
	LocalID      uint32
	GlobalID     uint32
	SegmentIndex int
}

// TrigramIterator walks every live occurrence of one trigram across all
// segments, in meta order, single-pass forward-only, per spec.md §4.9's
// "multi-segment trigram iterator".
type TrigramIterator struct {
	r      *Reader
	t      trigram.Trigram
	segIdx int
	ids    []uint32
	pos    int
}

// LookupTrigram returns a fresh iterator over t's occurrences.
func (r *Reader) LookupTrigram(t trigram.Trigram) *TrigramIterator {
	return &TrigramIterator{r: r, t: t}
}

// Next advances the iterator, returning the next live posting and true,
// or the zero Posting and false once every segment is exhausted.
func (it *TrigramIterator) Next() (Posting, bool) {
	for {
		if it.ids == nil {
			if it.segIdx >= len(it.r.segs) {
				return Posting{}, false
			}
			seg := it.r.segs[it.segIdx]
			ids, _ := seg.r.Postings(it.t)
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

// Name resolves a global id back to its stored path, per spec.md §4.9's
// O(local_id) linear-scan name lookup: find the owning segment by
// accumulating num_docs, then scan that segment's name list.
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

// TrigramPositions returns every live occurrence of t across all v2
// (positional) segments in this snapshot, keyed by global id, for
// proximity queries (spec.md §4.13). Non-positional segments are
// silently skipped rather than erroring, so a mixed v1/v2 index degrades
// to "no positional data for these docs" instead of failing the query.
func (r *Reader) TrigramPositions(t trigram.Trigram) (map[uint32][]trigram.Position, error) {
	out := make(map[uint32][]trigram.Position)
	for _, seg := range r.segs {
		if !seg.r.Positional {
			continue
		}
		files, err := seg.r.PositionalPostings(t)
		if err != nil {
			return nil, fmt.Errorf("cairn: positional postings for segment %s: %w", seg.meta.ID, err)
		}
		for _, f := range files {
			if seg.del != nil && seg.del.IsDeleted(f.LocalID) {
				continue
			}
			out[seg.base+f.LocalID] = f.Positions
		}
	}
	return out, nil
}
