package cairn

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cairnsearch/cairn/segment"
	"github.com/cairnsearch/cairn/trigram"
)

// Merge combines the live documents of the named segments into one
// fresh segment, dropping their tombstones in the process, per spec.md
// §4.10. It is not required for correctness — only for reclaiming space
// tombstones have accumulated — and is never invoked automatically; a
// caller decides when to merge.
//
// google-codesearch's Merge (index/merge.go) is a binary posting-level
// merge that translates docid ranges between two whole-corpus indexes
// (its idrange table). Segments here are re-readable source files, not
// opaque posting blobs, so merge instead re-extracts trigrams from each
// live document's on-disk content and re-adds it through the same
// segment-writing path Commit uses — simpler than an idrange merge and
// a closer match for a format where every document's original path is
// still known and (usually) still readable.
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

	names := []string{}
	postings := segment.PostingBuilder{}
	positional := segment.PositionalBuilder{}
	var runeSamples [][]uint32

	for _, segIdx := range orderedKeys(merging) {
		sm := w.meta.Segments[segIdx]
		id := segment.ID(sm.ID)
		r, err := segment.Open(id.SegPath(segmentsDir(w.dir)))
		if err != nil {
			return fmt.Errorf("cairn: open segment %s: %w", sm.ID, err)
		}
		del, err := segment.LoadOrEmptyDeletionSet(id.DelPath(segmentsDir(w.dir)), uint32(sm.NumDocs))
		if err != nil {
			r.Close()
			return fmt.Errorf("cairn: load deletions for segment %s: %w", sm.ID, err)
		}

		for local := uint32(0); local < uint32(sm.NumDocs); local++ {
			if del.IsDeleted(local) {
				continue
			}
			path, err := r.Name(local)
			if err != nil {
				r.Close()
				return fmt.Errorf("cairn: read name %d in segment %s: %w", local, sm.ID, err)
			}
			content, err := os.ReadFile(path)
			if err != nil {
				// Best-effort: a path that has moved or vanished since
				// indexing is dropped from the merged segment rather
				// than failing the whole merge.
				w.cfg.logger.Warn("merge: skipping unreadable path", zap.String("path", path), zap.Error(err))
				continue
			}

			if w.cfg.positional {
				positions, err := trigram.ExtractPositions(content)
				if err != nil {
					w.cfg.logger.Info("merge: skipping document", zap.String("path", path), zap.Error(err))
					continue
				}
				newLocal := uint32(len(names))
				names = append(names, path)
				for t, ps := range positions {
					positional.Add(t, newLocal, ps)
				}
				runeSamples = append(runeSamples, trigram.SampleRuneOffsets(content, 100))
			} else {
				ts, err := trigram.Extract(content)
				if err != nil {
					w.cfg.logger.Info("merge: skipping document", zap.String("path", path), zap.Error(err))
					continue
				}
				newLocal := uint32(len(names))
				names = append(names, path)
				for t := range ts {
					postings.Add(t, newLocal)
				}
			}
		}
		if err := r.Close(); err != nil {
			return err
		}
	}

	newID, err := segment.NewID()
	if err != nil {
		return fmt.Errorf("cairn: generate segment id: %w", err)
	}
	segPath := newID.SegPath(segmentsDir(w.dir))
	if w.cfg.positional {
		err = segment.WriteSegmentV2(segPath, names, positional, runeSamples)
	} else {
		err = segment.WriteSegmentV1(segPath, names, postings)
	}
	if err != nil {
		return fmt.Errorf("cairn: write merged segment %s: %w", newID, err)
	}

	newSegments := make([]SegmentMeta, 0, len(w.meta.Segments)-len(merging)+1)
	for i, sm := range w.meta.Segments {
		if merging[i] {
			continue
		}
		newSegments = append(newSegments, sm)
	}
	newSegments = append(newSegments, SegmentMeta{ID: newID.String(), NumDocs: len(names)})

	newMeta := &Meta{Version: metaVersion, Opstamp: w.meta.Opstamp + 1, Segments: newSegments}
	if err := saveMeta(w.dir, newMeta); err != nil {
		return fmt.Errorf("cairn: save meta: %w", err)
	}
	w.meta = newMeta

	// Segment positions shifted (merged entries removed from the
	// middle, the new one appended at the end), which invalidates every
	// existing docRef.segment index — simplest to rebuild rather than
	// patch indices through the shift.
	pathIx, err := buildPathIndex(w.dir, newMeta)
	if err != nil {
		return err
	}
	w.pathIx = pathIx

	w.cfg.logger.Info("merged segments", zap.Strings("from", segmentIDs), zap.String("into", newID.String()), zap.Int("docs", len(names)))
	return nil
}

// orderedKeys returns the set's keys in ascending order, so merge always
// reads input segments in their original meta order regardless of map
// iteration order.
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
