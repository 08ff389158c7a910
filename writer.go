package cairn

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cairnsearch/cairn/segment"
	"github.com/cairnsearch/cairn/trigram"
)

// pendingDoc is one buffered (path, content) pair awaiting the next
// commit.
type pendingDoc struct {
	path    string
	content []byte
}

// Writer is the single-threaded cooperative core of spec.md §4.8: it
// buffers added and deleted documents until Commit flushes them as one
// new immutable segment plus updated deletion bitmaps, then atomically
// swaps in a new meta. It generalizes google-codesearch's one-shot
// IndexWriter (index/write.go) — which builds exactly one index file per
// run — into a writer that can be reopened and extended indefinitely.
type Writer struct {
	dir    string
	cfg    config
	meta   *Meta
	pathIx *pathIndex

	pending        []pendingDoc
	pendingDeletes map[int][]uint32 // segment index -> local ids to tombstone
}

// OpenWriter opens (or creates) an index at dir: loads its current meta
// and rebuilds the in-memory path index by scanning every live segment.
// Only one Writer should be open against dir at a time; enforcing that
// is the caller's responsibility (spec.md §5).
func OpenWriter(dir string, opts ...Option) (*Writer, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	meta, err := loadMeta(dir)
	if err != nil {
		return nil, err
	}
	pathIx, err := buildPathIndex(dir, meta)
	if err != nil {
		return nil, err
	}

	return &Writer{
		dir:            dir,
		cfg:            cfg,
		meta:           meta,
		pathIx:         pathIx,
		pendingDeletes: make(map[int][]uint32),
	}, nil
}

// DocumentCount returns the number of live paths as of the last Add,
// Delete, or Commit — including documents buffered but not yet
// committed, since Add already shadows whichever old copy they replace.
func (w *Writer) DocumentCount() int {
	n := len(w.pathIx.entries)
	seen := make(map[string]bool, len(w.pending))
	for _, pd := range w.pending {
		if _, live := w.pathIx.entries[pd.path]; live || seen[pd.path] {
			continue
		}
		seen[pd.path] = true
		n++
	}
	return n
}

// Add buffers path with content for the next commit. If path already has
// a live document, its old (segment, local id) is queued for tombstoning
// at commit time; the path index itself is not updated until then
// (spec.md §4.8). Auto-commits once the pending batch reaches the
// configured flush threshold.
func (w *Writer) Add(path string, content []byte) error {
	if ref, ok := w.pathIx.entries[path]; ok {
		w.pendingDeletes[ref.segment] = append(w.pendingDeletes[ref.segment], ref.local)
	}
	buf := make([]byte, len(content))
	copy(buf, content)
	w.pending = append(w.pending, pendingDoc{path: path, content: buf})

	if len(w.pending) >= w.cfg.flushThreshold {
		return w.Commit()
	}
	return nil
}

// Delete tombstones path's current live document, if any. A path with no
// live entry (including one only buffered in the current pending batch,
// not yet committed) is a no-op, matching spec.md §4.8's "if present in
// path_index" wording literally.
func (w *Writer) Delete(path string) error {
	ref, ok := w.pathIx.entries[path]
	if !ok {
		return nil
	}
	w.pendingDeletes[ref.segment] = append(w.pendingDeletes[ref.segment], ref.local)
	delete(w.pathIx.entries, path)
	return nil
}

// Close releases the writer. It does not implicitly commit pending
// documents — callers must Commit before Close to persist them.
func (w *Writer) Close() error { return nil }

// dedupePending collapses w.pending to its last occurrence per path,
// implementing spec.md P6: "adding a path twice in the same commit
// tombstones the first write". Collapsing before local ids are assigned
// means the shadowed earlier copy never receives one, so there is
// nothing to additionally tombstone inside the new segment itself.
func dedupePending(pending []pendingDoc) []pendingDoc {
	order := make([]pendingDoc, 0, len(pending))
	pos := make(map[string]int, len(pending))
	for _, pd := range pending {
		if i, ok := pos[pd.path]; ok {
			order[i] = pd
			continue
		}
		pos[pd.path] = len(order)
		order = append(order, pd)
	}
	return order
}

// Commit flushes the pending batch, following the exact four-step
// ordering spec.md §4.8 requires: segment file, then deletion bitmaps,
// then the new meta (atomically renamed last), then clearing the
// buffers. A crash at any point before the meta rename leaves the old
// meta in place and any newly-written segment/deletion files simply
// unreferenced garbage — never a meta pointing at something missing
// (spec.md P4).
func (w *Writer) Commit() error {
	newSegments := append([]SegmentMeta(nil), w.meta.Segments...)

	if len(w.pending) > 0 {
		docs := dedupePending(w.pending)
		names := make([]string, 0, len(docs))
		postings := segment.PostingBuilder{}
		positional := segment.PositionalBuilder{}
		var runeSamples [][]uint32

		for _, doc := range docs {
			if w.cfg.positional {
				positions, err := trigram.ExtractPositions(doc.content)
				if err != nil {
					w.cfg.logger.Info("skipping document", zap.String("path", doc.path), zap.Error(err))
					continue
				}
				localID := uint32(len(names))
				names = append(names, doc.path)
				for t, ps := range positions {
					positional.Add(t, localID, ps)
				}
				runeSamples = append(runeSamples, trigram.SampleRuneOffsets(doc.content, 100))
			} else {
				ts, err := trigram.Extract(doc.content)
				if err != nil {
					w.cfg.logger.Info("skipping document", zap.String("path", doc.path), zap.Error(err))
					continue
				}
				localID := uint32(len(names))
				names = append(names, doc.path)
				for t := range ts {
					postings.Add(t, localID)
				}
			}
		}

		id, err := segment.NewID()
		if err != nil {
			return fmt.Errorf("cairn: generate segment id: %w", err)
		}
		segPath := id.SegPath(segmentsDir(w.dir))
		if w.cfg.positional {
			err = segment.WriteSegmentV2(segPath, names, positional, runeSamples)
		} else {
			err = segment.WriteSegmentV1(segPath, names, postings)
		}
		if err != nil {
			return fmt.Errorf("cairn: write segment %s: %w", id, err)
		}

		segIdx := len(newSegments)
		for localID, doc := range names {
			w.pathIx.entries[doc] = docRef{segment: segIdx, local: uint32(localID)}
		}
		newSegments = append(newSegments, SegmentMeta{ID: id.String(), NumDocs: len(names)})
		w.cfg.logger.Info("wrote segment", zap.String("id", id.String()), zap.Int("docs", len(names)))
	}

	for segIdx, localIDs := range w.pendingDeletes {
		sm := newSegments[segIdx]
		id := segment.ID(sm.ID)
		delPath := id.DelPath(segmentsDir(w.dir))
		set, err := segment.LoadOrEmptyDeletionSet(delPath, uint32(sm.NumDocs))
		if err != nil {
			return fmt.Errorf("cairn: load deletions for segment %s: %w", sm.ID, err)
		}
		for _, local := range localIDs {
			set.MarkDeleted(local)
		}
		if err := segment.WriteDeletionSet(delPath, set); err != nil {
			return fmt.Errorf("cairn: write deletions for segment %s: %w", sm.ID, err)
		}
		sm.NumDeletedDocs = int(set.NumDeleted())
		sm.HasDeletions = true
		sm.DelGen++
		newSegments[segIdx] = sm
	}

	newMeta := &Meta{Version: metaVersion, Opstamp: w.meta.Opstamp + 1, Segments: newSegments}
	if err := saveMeta(w.dir, newMeta); err != nil {
		return fmt.Errorf("cairn: save meta: %w", err)
	}
	w.meta = newMeta

	w.pending = nil
	w.pendingDeletes = make(map[int][]uint32)
	return nil
}
