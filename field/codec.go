package field

import (
	"encoding/binary"

	"github.com/cairnsearch/cairn/segment"
	"github.com/cairnsearch/cairn/trigram"
	"github.com/cairnsearch/cairn/varint"
)

const (
	magicHeader  = "cairn seg f\n"
	magicTrailer = "cairn trlr f\n"
)

// WriteSegment builds a field-aware segment file at path from names
// (document paths by local id), schema (the fixed field-name list this
// segment's postings are keyed against), and postings (accumulated while
// scanning each document's fields), installing it atomically via
// segment.WriteFileAtomic.
//
// On-disk layout, extending v1 (spec.md §4.5):
//
//	magic header "cairn seg f\n"          12 bytes
//	field list       varint(count) + (varint(len)+bytes) per field, in schema order
//	name list        varint(len) + bytes, one entry per document
//	posting lists    encodePostingList(ids), one per (trigram, field), ascending packed key
//	posting index    3-byte trigram + varint(field_id) + varint(offset) + varint(count)
//	trailer          6 big-endian uint64 fields
//	magic trailer "cairn trlr f\n"
//
// The posting index is sorted ascending by the packed 56-bit key
// `tri<<32 | field_id`, so a lookup binary-searches one uint64 comparison
// instead of a composite (trigram, field) comparison.
func WriteSegment(path string, names []string, schema *Schema, postings PostingBuilder) error {
	data := make([]byte, 0, 4096)
	data = append(data, magicHeader...)

	fieldListOff := uint64(len(data))
	fieldNames := schema.Names()
	data = varint.Append(data, uint64(len(fieldNames)))
	for _, name := range fieldNames {
		data = varint.Append(data, uint64(len(name)))
		data = append(data, name...)
	}

	nameListOff := uint64(len(data))
	for _, name := range names {
		data = varint.Append(data, uint64(len(name)))
		data = append(data, name...)
	}

	keys := sortedKeys(postings)
	postingsOff := uint64(len(data))
	offsets := make([]uint64, len(keys))
	for i, k := range keys {
		offsets[i] = uint64(len(data)) - postingsOff
		data = append(data, segment.EncodePostingList(postings[k])...)
	}

	postingIndexOff := uint64(len(data))
	for i, k := range keys {
		t, f := unpackKey(k)
		b := t.Bytes()
		data = append(data, b[0], b[1], b[2])
		data = varint.Append(data, uint64(f))
		data = varint.Append(data, offsets[i])
		data = varint.Append(data, uint64(len(postings[k])))
	}

	data = putUint64s(data, fieldListOff, nameListOff, postingsOff, postingIndexOff, uint64(len(names)), uint64(len(keys)))
	data = append(data, magicTrailer...)

	return segment.WriteFileAtomic(path, data)
}

func putUint64s(buf []byte, vs ...uint64) []byte {
	for _, v := range vs {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v)
		buf = append(buf, b[:]...)
	}
	return buf
}

func getUint64(data []byte, off uint64) uint64 {
	return binary.BigEndian.Uint64(data[off : off+8])
}

// indexEntry is one parsed row of a field-aware segment's posting index.
type indexEntry struct {
	Trigram trigram.Trigram
	Field   FieldID
	Offset  uint64
	Count   uint64
}

func parse(data []byte) (*segmentReader, error) {
	magicLen := len(magicTrailer)
	trailerLen := 48
	if len(data) < len(magicHeader)+magicLen+trailerLen {
		return nil, ErrTruncated
	}
	if string(data[:len(magicHeader)]) != magicHeader {
		return nil, ErrBadMagic
	}
	if string(data[len(data)-magicLen:]) != magicTrailer {
		return nil, ErrBadMagic
	}
	trailerOff := uint64(len(data) - magicLen - trailerLen)

	fieldListOff := getUint64(data, trailerOff)
	nameListOff := getUint64(data, trailerOff+8)
	postingsOff := getUint64(data, trailerOff+16)
	postingIndexOff := getUint64(data, trailerOff+24)
	numDocs := getUint64(data, trailerOff+32)
	numEntries := getUint64(data, trailerOff+40)

	off := fieldListOff
	count, n := varint.Decode(data[off:])
	off += uint64(n)
	names := make([]string, count)
	for i := range names {
		length, n := varint.Decode(data[off:])
		off += uint64(n)
		names[i] = string(data[off : off+length])
		off += length
	}
	schema, err := NewSchema(names...)
	if err != nil {
		return nil, err
	}

	index := make([]indexEntry, 0, numEntries)
	i := postingIndexOff
	for uint64(len(index)) < numEntries {
		t := trigram.Pack(data[i], data[i+1], data[i+2])
		i += 3
		fieldID, n := varint.Decode(data[i:])
		i += uint64(n)
		offset, n := varint.Decode(data[i:])
		i += uint64(n)
		cnt, n := varint.Decode(data[i:])
		i += uint64(n)
		index = append(index, indexEntry{Trigram: t, Field: FieldID(fieldID), Offset: offset, Count: cnt})
	}

	return &segmentReader{
		data:        data,
		schema:      schema,
		numDocs:     numDocs,
		nameListOff: nameListOff,
		postingsOff: postingsOff,
		index:       index,
	}, nil
}
