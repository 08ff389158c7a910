package field

import (
	"sort"

	"github.com/cairnsearch/cairn/trigram"
)

// packKey combines a trigram and field id into the single 56-bit sort
// key spec.md §4.5 specifies for the field-aware posting index: `tri<<32
// | field_id`, so the on-disk index can binary-search one packed uint64
// instead of a composite comparison.
func packKey(t trigram.Trigram, f FieldID) uint64 {
	return uint64(t)<<32 | uint64(f)
}

func unpackKey(k uint64) (trigram.Trigram, FieldID) {
	return trigram.Trigram(k >> 32), FieldID(uint32(k))
}

// PostingBuilder accumulates, for each (trigram, field) pair, the
// ascending list of local document ids whose named field contains that
// trigram.
type PostingBuilder map[uint64][]uint32

// Add records that localID's field f contains t. Callers must add
// documents in increasing localID order, matching segment.PostingBuilder's
// contract.
func (b PostingBuilder) Add(t trigram.Trigram, f FieldID, localID uint32) {
	k := packKey(t, f)
	ids := b[k]
	if n := len(ids); n > 0 && ids[n-1] == localID {
		return
	}
	b[k] = append(ids, localID)
}

// sortedKeys returns the builder's packed keys in ascending order, which
// is simultaneously ascending (trigram, field_id) order since field_id
// occupies the low 32 bits of the same key.
func sortedKeys(b PostingBuilder) []uint64 {
	keys := make([]uint64, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
