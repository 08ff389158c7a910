// Package field implements the field-aware index variant of spec.md
// §4.5/§4.14: a segment codec keyed by (trigram, field) instead of plain
// trigram, a BM25-over-trigrams ranker scored per field with per-field
// boosts, and its own Writer/Reader/Merge incremental lifecycle —
// component K in SPEC_FULL.md's package map, a variant of the segment
// codec (E), the incremental writer/reader (I), and the query/rank
// layer (J). It sits alongside package cairn rather than inside it,
// sharing cairn's segment package for the varint/trigram/posting
// primitives and the atomic-write/mmap helpers, but keeping its own
// meta file and writer/reader types since a field-aware document's
// shape ({path, fields map[string][]byte}) differs from cairn's plain
// {path, content}.
package field

import "fmt"

// FieldID identifies one field within a Schema, by its position in the
// schema's field-name list (0-based), matching spec.md §4.5's "field_id"
// wording.
type FieldID uint32

// Schema fixes the set of fields a field-aware index recognizes, and
// their order on disk. It is established once, at writer-open time, per
// SPEC_FULL.md §3's "fixed, index-wide field schema established at
// writer-open time".
type Schema struct {
	names []string
	ids   map[string]FieldID
}

// NewSchema builds a Schema from an ordered list of field names (for
// example "path", "symbol", "body"). Names must be unique and non-empty.
func NewSchema(names ...string) (*Schema, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("field: schema must have at least one field")
	}
	ids := make(map[string]FieldID, len(names))
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("field: field name must not be empty")
		}
		if _, dup := ids[n]; dup {
			return nil, fmt.Errorf("field: duplicate field name %q", n)
		}
		ids[n] = FieldID(i)
	}
	return &Schema{names: append([]string(nil), names...), ids: ids}, nil
}

// ID returns name's FieldID within the schema.
func (s *Schema) ID(name string) (FieldID, bool) {
	id, ok := s.ids[name]
	return id, ok
}

// Name returns the field name at id.
func (s *Schema) Name(id FieldID) (string, bool) {
	if int(id) >= len(s.names) {
		return "", false
	}
	return s.names[id], true
}

// NumFields returns the number of fields the schema defines.
func (s *Schema) NumFields() int { return len(s.names) }

// Names returns the schema's field names in on-disk order.
func (s *Schema) Names() []string { return append([]string(nil), s.names...) }
