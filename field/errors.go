package field

import "errors"

var (
	// ErrBadMagic is returned by openSegment when a file's header or trailer
	// magic bytes don't match the field-aware segment format.
	ErrBadMagic = errors.New("field: bad magic header or trailer")

	// ErrTruncated is returned when a segment file is shorter than its
	// own trailer claims.
	ErrTruncated = errors.New("field: file truncated or corrupt")

	// ErrNotFound is returned by Name when localID is out of range.
	ErrNotFound = errors.New("field: document id not found")

	// ErrUnknownField is returned by Writer.Add when a caller passes a
	// field name not present in the writer's schema.
	ErrUnknownField = errors.New("field: unknown field name")

	// ErrSegmentNotFound is returned by Writer.Merge when asked to merge
	// a segment id not present in the current meta.
	ErrSegmentNotFound = errors.New("field: segment id not found in meta")

	// ErrSchemaMismatch is returned by OpenWriter/OpenReader when the
	// schema passed in doesn't match the one already committed to an
	// existing index's meta.
	ErrSchemaMismatch = errors.New("field: schema does not match the index's committed field list")
)
