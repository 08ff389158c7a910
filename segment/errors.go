package segment

import "errors"

var (
	// ErrBadMagic is returned by Open when a file's header or trailer
	// magic bytes don't match any known segment format version.
	ErrBadMagic = errors.New("segment: bad magic header or trailer")

	// ErrTruncated is returned when a segment file is shorter than its
	// own trailer claims, which can only happen if the file was
	// corrupted or truncated after being written (the atomic
	// write-then-rename protocol in WriteFileAtomic should make this
	// impossible in normal operation).
	ErrTruncated = errors.New("segment: file truncated or corrupt")

	// ErrNotFound is returned by Name when localID is out of range.
	ErrNotFound = errors.New("segment: document id not found")

	// ErrNoPositions is returned by PositionalPostings and RuneOffsets
	// when called on a v1 (non-positional) segment.
	ErrNoPositions = errors.New("segment: positional data not available in this segment version")
)
