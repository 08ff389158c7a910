// Package cairn implements the segment-based incremental index described
// in spec.md §3–§4.10: an append-only set of immutable segments (package
// segment) tied together by an atomically-committed meta file, a
// rebuilt-at-open path index, and the writer/reader/merge operations
// that generalize google-codesearch's one-shot IndexWriter/Index
// (index/write.go, index/read.go) into a crash-safe, incrementally
// updatable core.
package cairn

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cairnsearch/cairn/segment"
)

// metaVersion is the only Meta.Version this implementation writes or
// accepts; spec.md §4.7 reserves the field for future format changes.
const metaVersion = 1

// SegmentMeta is one segment's entry in the committed meta file, spec.md
// §3's "Segment meta": immutable apart from the three deletion-tracking
// fields, which advance as a new deletion bitmap replaces the previous
// one.
type SegmentMeta struct {
	ID             string `json:"id"`
	NumDocs        int    `json:"num_docs"`
	NumDeletedDocs int    `json:"num_deleted_docs"`
	HasDeletions   bool   `json:"has_deletions"`
	DelGen         int    `json:"del_gen"`
}

// Meta is the atomically committed table of live segments, spec.md §3's
// "Index meta". The ordered Segments list defines the global-id space at
// read time; Opstamp increments by exactly one per successful commit.
type Meta struct {
	Version  int           `json:"version"`
	Opstamp  uint64        `json:"opstamp"`
	Segments []SegmentMeta `json:"segments"`
}

func segmentsDir(dir string) string { return filepath.Join(dir, "segments") }
func metaPath(dir string) string    { return filepath.Join(dir, "meta.json") }

// loadMeta loads dir's meta.json, per spec.md §4.7's "loading a missing
// meta yields an empty index (version=1, opstamp=0, no segments)". Any
// other parse failure is fatal and returned to the caller — never
// silently discarded.
func loadMeta(dir string) (*Meta, error) {
	data, err := os.ReadFile(metaPath(dir))
	if errors.Is(err, os.ErrNotExist) {
		return &Meta{Version: metaVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cairn: read %s: %w", metaPath(dir), err)
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cairn: parse %s: %w", metaPath(dir), err)
	}
	return &m, nil
}

// saveMeta persists m via the protocol spec.md §4.7 requires: ensure
// segments/ exists, write meta.json.tmp, fsync, rename into place, then
// best-effort fsync the containing directory — all handled by
// segment.WriteFileAtomic, the same helper segment files use, since both
// are "write to a sibling temp file, fsync, atomically rename" under the
// hood.
func saveMeta(dir string, m *Meta) error {
	if err := os.MkdirAll(segmentsDir(dir), 0o755); err != nil {
		return fmt.Errorf("cairn: create segments dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("cairn: marshal meta: %w", err)
	}
	return segment.WriteFileAtomic(metaPath(dir), data)
}
