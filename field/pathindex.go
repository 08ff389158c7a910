package field

import (
	"fmt"

	"github.com/cairnsearch/cairn/segment"
)

// docRef locates a live document: which position in meta.Segments owns
// it, and its local id within that segment's file — identical in spirit
// to cairn's docRef, duplicated here rather than shared because the two
// packages' segment readers are different concrete types.
type docRef struct {
	segment int
	local   uint32
}

// pathIndex is the field-aware writer's in-memory path -> (segment,
// local id) authority, rebuilt at writer open exactly like cairn's
// pathIndex.
type pathIndex struct {
	entries map[string]docRef
}

// buildPathIndex rebuilds a pathIndex from dir's current meta by opening
// every live segment once, reading its name list, and recording the last
// (non-tombstoned) owner of each path.
func buildPathIndex(dir string, meta *Meta) (*pathIndex, error) {
	pi := &pathIndex{entries: make(map[string]docRef, len(meta.Segments))}
	for segIdx, sm := range meta.Segments {
		id := segment.ID(sm.ID)
		r, err := openSegment(id.SegPath(segmentsDir(dir)))
		if err != nil {
			return nil, fmt.Errorf("field: open segment %s: %w", sm.ID, err)
		}
		del, err := segment.LoadOrEmptyDeletionSet(id.DelPath(segmentsDir(dir)), uint32(sm.NumDocs))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("field: load deletions for segment %s: %w", sm.ID, err)
		}
		for local := uint32(0); local < uint32(sm.NumDocs); local++ {
			if del.IsDeleted(local) {
				continue
			}
			name, err := r.Name(local)
			if err != nil {
				r.Close()
				return nil, fmt.Errorf("field: read name %d in segment %s: %w", local, sm.ID, err)
			}
			pi.entries[name] = docRef{segment: segIdx, local: local}
		}
		if err := r.Close(); err != nil {
			return nil, err
		}
	}
	return pi, nil
}
