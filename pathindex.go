package cairn

import (
	"fmt"

	"github.com/cairnsearch/cairn/segment"
)

// docRef locates a live document: which position in meta.Segments owns
// it, and its local id within that segment's .seg file.
type docRef struct {
	segment int
	local   uint32
}

// pathIndex is the writer's in-memory path -> (segment, local id)
// authority, spec.md §3's "Path index": rebuilt at writer open by
// scanning every segment's name list and skipping tombstoned entries. It
// answers "does this path already exist?" for subsequent Add/Delete
// calls in the same writer instance; it has no on-disk representation of
// its own.
type pathIndex struct {
	entries map[string]docRef
}

// buildPathIndex rebuilds a pathIndex from dir's current meta by
// memory-mapping every live segment once, reading its name list, and
// recording the last (i.e. non-tombstoned) owner of each path. Segments
// are walked in meta order, so a path re-added in a later segment
// naturally overwrites the entry its now-tombstoned earlier appearance
// would otherwise have left behind.
func buildPathIndex(dir string, meta *Meta) (*pathIndex, error) {
	pi := &pathIndex{entries: make(map[string]docRef, len(meta.Segments))}
	for segIdx, sm := range meta.Segments {
		id := segment.ID(sm.ID)
		r, err := segment.Open(id.SegPath(segmentsDir(dir)))
		if err != nil {
			return nil, fmt.Errorf("cairn: open segment %s: %w", sm.ID, err)
		}
		del, err := segment.LoadOrEmptyDeletionSet(id.DelPath(segmentsDir(dir)), uint32(sm.NumDocs))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("cairn: load deletions for segment %s: %w", sm.ID, err)
		}
		for local := uint32(0); local < uint32(sm.NumDocs); local++ {
			if del.IsDeleted(local) {
				continue
			}
			name, err := r.Name(local)
			if err != nil {
				r.Close()
				return nil, fmt.Errorf("cairn: read name %d in segment %s: %w", local, sm.ID, err)
			}
			pi.entries[name] = docRef{segment: segIdx, local: local}
		}
		if err := r.Close(); err != nil {
			return nil, err
		}
	}
	return pi, nil
}
