package cairn

import "errors"

var (
	// ErrNotFound is returned by Reader.Name when a global id is out of
	// range of every live segment.
	ErrNotFound = errors.New("cairn: document id not found")

	// ErrSegmentNotFound is returned by Writer.Merge when asked to merge
	// a segment id not present in the current meta.
	ErrSegmentNotFound = errors.New("cairn: segment id not found in meta")
)
