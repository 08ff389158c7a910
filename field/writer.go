package field

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cairnsearch/cairn/segment"
	"github.com/cairnsearch/cairn/trigram"
)

// Document is one document in the field-aware variant: a path plus the
// raw content of each of its schema fields, per SPEC_FULL.md §3's
// `{path, fields: map[string][]byte}`. A field absent from Fields is
// simply not indexed for that document — not an error.
type Document struct {
	Path   string
	Fields map[string][]byte
}

// pendingDoc is one buffered document awaiting the next commit.
type pendingDoc struct {
	path   string
	fields map[string][]byte
}

// Writer is the field-aware counterpart of cairn.Writer: the same
// buffered add/delete, four-step atomic commit, and crash-safety
// discipline, producing field-aware segments (WriteSegment) instead of
// v1/v2 ones. Component K is a variant of the incremental segment
// writer (I), not a one-shot builder — this type is that variant.
type Writer struct {
	dir    string
	cfg    config
	schema *Schema
	meta   *Meta
	pathIx *pathIndex

	pending        []pendingDoc
	pendingDeletes map[int][]uint32
}

// OpenWriter opens (or creates) a field-aware index at dir under schema.
// If dir already holds a committed meta, schema must name the same
// fields in the same order as the one the index was created with —
// otherwise OpenWriter fails with ErrSchemaMismatch, since every
// committed segment's posting index is keyed by field position in that
// original schema.
func OpenWriter(dir string, schema *Schema, opts ...Option) (*Writer, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	meta, err := loadMeta(dir)
	if err != nil {
		return nil, err
	}
	if len(meta.Segments) == 0 && len(meta.Fields) == 0 {
		meta.Fields = schema.Names()
	} else if !sameFields(meta.Fields, schema.Names()) {
		return nil, ErrSchemaMismatch
	}

	pathIx, err := buildPathIndex(dir, meta)
	if err != nil {
		return nil, err
	}

	return &Writer{
		dir:            dir,
		cfg:            cfg,
		schema:         schema,
		meta:           meta,
		pathIx:         pathIx,
		pendingDeletes: make(map[int][]uint32),
	}, nil
}

// DocumentCount returns the number of live paths as of the last Add,
// Delete, or Commit.
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

// Add buffers path's fields for the next commit, shadowing whichever
// earlier copy of path was live, matching cairn.Writer.Add's contract.
// Auto-commits once the pending batch reaches the configured flush
// threshold. A field name outside the writer's schema fails the call
// with ErrUnknownField and buffers nothing.
func (w *Writer) Add(path string, fields map[string][]byte) error {
	for name := range fields {
		if _, ok := w.schema.ID(name); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	if ref, ok := w.pathIx.entries[path]; ok {
		w.pendingDeletes[ref.segment] = append(w.pendingDeletes[ref.segment], ref.local)
	}
	buf := make(map[string][]byte, len(fields))
	for k, v := range fields {
		cp := make([]byte, len(v))
		copy(cp, v)
		buf[k] = cp
	}
	w.pending = append(w.pending, pendingDoc{path: path, fields: buf})

	if len(w.pending) >= w.cfg.flushThreshold {
		return w.Commit()
	}
	return nil
}

// Delete tombstones path's current live document, if any.
func (w *Writer) Delete(path string) error {
	ref, ok := w.pathIx.entries[path]
	if !ok {
		return nil
	}
	w.pendingDeletes[ref.segment] = append(w.pendingDeletes[ref.segment], ref.local)
	delete(w.pathIx.entries, path)
	return nil
}

// Close releases the writer. It does not implicitly commit.
func (w *Writer) Close() error { return nil }

// dedupePending collapses w.pending to its last occurrence per path,
// the field-aware counterpart of cairn's dedupePending.
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

// Commit flushes the pending batch following the same four-step
// ordering as cairn.Writer.Commit: segment file, then deletion bitmaps,
// then the new meta (atomically renamed last), then clearing buffers.
func (w *Writer) Commit() error {
	newSegments := append([]SegmentMeta(nil), w.meta.Segments...)

	if len(w.pending) > 0 {
		docs := dedupePending(w.pending)
		names := make([]string, 0, len(docs))
		postings := make(PostingBuilder)

		for _, doc := range docs {
			rejected := false
			type hit struct {
				t trigram.Trigram
				f FieldID
			}
			var hits []hit

			for name, content := range doc.fields {
				fid, ok := w.schema.ID(name)
				if !ok {
					continue
				}
				ts, err := trigram.Extract(content)
				if err != nil {
					rejected = true
					break
				}
				for t := range ts {
					hits = append(hits, hit{t: t, f: fid})
				}
			}
			if rejected {
				w.cfg.logger.Info("skipping document", zap.String("path", doc.path))
				continue
			}

			localID := uint32(len(names))
			names = append(names, doc.path)
			for _, h := range hits {
				postings.Add(h.t, h.f, localID)
			}
		}

		id, err := segment.NewID()
		if err != nil {
			return fmt.Errorf("field: generate segment id: %w", err)
		}
		segPath := id.SegPath(segmentsDir(w.dir))
		if err := WriteSegment(segPath, names, w.schema, postings); err != nil {
			return fmt.Errorf("field: write segment %s: %w", id, err)
		}

		segIdx := len(newSegments)
		for localID, doc := range names {
			w.pathIx.entries[doc] = docRef{segment: segIdx, local: uint32(localID)}
		}
		newSegments = append(newSegments, SegmentMeta{ID: id.String(), NumDocs: len(names)})
		w.cfg.logger.Info("wrote field segment", zap.String("id", id.String()), zap.Int("docs", len(names)))
	}

	for segIdx, localIDs := range w.pendingDeletes {
		sm := newSegments[segIdx]
		id := segment.ID(sm.ID)
		delPath := id.DelPath(segmentsDir(w.dir))
		set, err := segment.LoadOrEmptyDeletionSet(delPath, uint32(sm.NumDocs))
		if err != nil {
			return fmt.Errorf("field: load deletions for segment %s: %w", sm.ID, err)
		}
		for _, local := range localIDs {
			set.MarkDeleted(local)
		}
		if err := segment.WriteDeletionSet(delPath, set); err != nil {
			return fmt.Errorf("field: write deletions for segment %s: %w", sm.ID, err)
		}
		sm.NumDeletedDocs = int(set.NumDeleted())
		sm.HasDeletions = true
		sm.DelGen++
		newSegments[segIdx] = sm
	}

	newMeta := &Meta{Version: metaVersion, Opstamp: w.meta.Opstamp + 1, Fields: w.schema.Names(), Segments: newSegments}
	if err := saveMeta(w.dir, newMeta); err != nil {
		return fmt.Errorf("field: save meta: %w", err)
	}
	w.meta = newMeta

	w.pending = nil
	w.pendingDeletes = make(map[int][]uint32)
	return nil
}
