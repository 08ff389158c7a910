package segment

import (
	"strings"

	"github.com/gofrs/uuid"
)

// ID is a segment's 128-bit random identifier, rendered as a 32-character
// hex string (spec.md §3's "id: 128-bit random identifier"). Generated
// with a UUIDv4 — gofrs/uuid's crypto/rand-backed generator is a better
// source of 128 random bits than hand-rolling one, and its 122 bits of
// randomness (6 bits are fixed version/variant markers) are more than
// enough entropy to make collisions across a single index's lifetime
// practically impossible.
type ID string

// NewID generates a fresh random segment ID.
func NewID() (ID, error) {
	u, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return ID(strings.ReplaceAll(u.String(), "-", "")), nil
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// SegPath returns the path of this segment's immutable data file under
// the given segments directory.
func (id ID) SegPath(segmentsDir string) string {
	return segmentsDir + "/" + string(id) + ".seg"
}

// DelPath returns the path of this segment's deletion bitmap file under
// the given segments directory.
func (id ID) DelPath(segmentsDir string) string {
	return segmentsDir + "/" + string(id) + ".del"
}
