package field

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cairnsearch/cairn/segment"
)

// Merge combines the live documents of the named segments into one
// fresh segment, dropping their tombstones, mirroring cairn.Writer.Merge
// for the field-aware variant.
//
// cairn's Merge re-reads each live document's path from disk and
// re-extracts trigrams, since cairn documents are addressable files.
// Field-aware documents carry no such guarantee — a caller may have
// indexed field content that was never a standalone file, or one that
// has since changed shape on disk — so this Merge instead walks each
// surviving segment's existing posting index directly
// (segmentReader.Entries) and remaps local ids into the merged segment's
// id space, never touching original field content again.
func (w *Writer) Merge(segmentIDs []string) error {
	byID := make(map[string]int, len(w.meta.Segments))
	for i, sm := range w.meta.Segments {
		byID[sm.ID] = i
	}
	merging := make(map[int]bool, len(segmentIDs))
	for _, id := range segmentIDs {
		idx, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
		}
		merging[idx] = true
	}
	order := orderedKeys(merging)

	// Pass 1: open every segment being merged, compute its live (local
	// id -> new local id) remap and collect names in new-id order.
	type openSeg struct {
		sm    SegmentMeta
		r     *segmentReader
		remap map[uint32]uint32
	}
	opened := make([]openSeg, 0, len(order))
	names := []string{}

	for _, segIdx := range order {
		sm := w.meta.Segments[segIdx]
		id := segment.ID(sm.ID)
		r, err := openSegment(id.SegPath(segmentsDir(w.dir)))
		if err != nil {
			return fmt.Errorf("field: open segment %s: %w", sm.ID, err)
		}
		del, err := segment.LoadOrEmptyDeletionSet(id.DelPath(segmentsDir(w.dir)), uint32(sm.NumDocs))
		if err != nil {
			r.Close()
			return fmt.Errorf("field: load deletions for segment %s: %w", sm.ID, err)
		}

		remap := make(map[uint32]uint32, sm.NumDocs)
		for local := uint32(0); local < uint32(sm.NumDocs); local++ {
			if del.IsDeleted(local) {
				continue
			}
			name, err := r.Name(local)
			if err != nil {
				r.Close()
				return fmt.Errorf("field: read name %d in segment %s: %w", local, sm.ID, err)
			}
			remap[local] = uint32(len(names))
			names = append(names, name)
		}
		opened = append(opened, openSeg{sm: sm, r: r, remap: remap})
	}

	// Pass 2: walk each segment's existing posting index and remap
	// surviving local ids into the merged PostingBuilder.
	postings := make(PostingBuilder)
	for _, seg := range opened {
		for _, e := range seg.r.Entries() {
			ids, _ := seg.r.Postings(e.Trigram, e.Field)
			for _, local := range ids {
				newLocal, ok := seg.remap[local]
				if !ok {
					continue
				}
				postings.Add(e.Trigram, e.Field, newLocal)
			}
		}
		if err := seg.r.Close(); err != nil {
			return err
		}
	}

	newID, err := segment.NewID()
	if err != nil {
		return fmt.Errorf("field: generate segment id: %w", err)
	}
	segPath := newID.SegPath(segmentsDir(w.dir))
	if err := WriteSegment(segPath, names, w.schema, postings); err != nil {
		return fmt.Errorf("field: write merged segment %s: %w", newID, err)
	}

	newSegments := make([]SegmentMeta, 0, len(w.meta.Segments)-len(merging)+1)
	for i, sm := range w.meta.Segments {
		if merging[i] {
			continue
		}
		newSegments = append(newSegments, sm)
	}
	newSegments = append(newSegments, SegmentMeta{ID: newID.String(), NumDocs: len(names)})

	newMeta := &Meta{Version: metaVersion, Opstamp: w.meta.Opstamp + 1, Fields: w.schema.Names(), Segments: newSegments}
	if err := saveMeta(w.dir, newMeta); err != nil {
		return fmt.Errorf("field: save meta: %w", err)
	}
	w.meta = newMeta

	pathIx, err := buildPathIndex(w.dir, newMeta)
	if err != nil {
		return err
	}
	w.pathIx = pathIx

	w.cfg.logger.Info("merged field segments", zap.Strings("from", segmentIDs), zap.String("into", newID.String()), zap.Int("docs", len(names)))
	return nil
}

// orderedKeys returns the set's keys in ascending order, so merge always
// reads input segments in their original meta order.
func orderedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
