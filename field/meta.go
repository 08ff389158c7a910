package field

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cairnsearch/cairn/segment"
)

// metaVersion is the only Meta.Version this implementation writes or
// accepts, same convention as cairn.Meta.
const metaVersion = 1

// SegmentMeta is one field-aware segment's entry in the committed meta
// file — identical shape to cairn.SegmentMeta, since both variants share
// the same segment lifecycle (immutable apart from deletion tracking).
type SegmentMeta struct {
	ID             string `json:"id"`
	NumDocs        int    `json:"num_docs"`
	NumDeletedDocs int    `json:"num_deleted_docs"`
	HasDeletions   bool   `json:"has_deletions"`
	DelGen         int    `json:"del_gen"`
}

// Meta is the atomically committed table of live field-aware segments,
// plus the field schema every one of those segments was built against.
// Fields is fixed at index creation and never changes across commits —
// SPEC_FULL.md §3's "fixed, index-wide field schema established at
// writer-open time".
type Meta struct {
	Version  int           `json:"version"`
	Opstamp  uint64        `json:"opstamp"`
	Fields   []string      `json:"fields"`
	Segments []SegmentMeta `json:"segments"`
}

func segmentsDir(dir string) string { return filepath.Join(dir, "segments") }
func metaPath(dir string) string    { return filepath.Join(dir, "field-meta.json") }

// loadMeta loads dir's field-meta.json. A missing file yields an empty
// meta (version=1, opstamp=0, no fields, no segments) exactly like
// cairn's loadMeta, since a field-aware index directory is freshly
// created the same lazy way.
func loadMeta(dir string) (*Meta, error) {
	data, err := os.ReadFile(metaPath(dir))
	if errors.Is(err, os.ErrNotExist) {
		return &Meta{Version: metaVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("field: read %s: %w", metaPath(dir), err)
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("field: parse %s: %w", metaPath(dir), err)
	}
	return &m, nil
}

// saveMeta persists m via the same write-temp-fsync-rename protocol
// cairn's saveMeta uses, sharing segment.WriteFileAtomic rather than
// reimplementing it.
func saveMeta(dir string, m *Meta) error {
	if err := os.MkdirAll(segmentsDir(dir), 0o755); err != nil {
		return fmt.Errorf("field: create segments dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("field: marshal meta: %w", err)
	}
	return segment.WriteFileAtomic(metaPath(dir), data)
}

// sameFields reports whether a and b name the same fields in the same
// order.
func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
