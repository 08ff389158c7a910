package segment

import "github.com/cairnsearch/cairn/varint"

// WriteSegmentV2 builds a positional segment file, extending
// WriteSegmentV1's layout with per-occurrence (byte_offset, rune_offset)
// pairs in the posting lists and a rune-offset sampler section, per
// spec.md §4.4's positional posting list and §4.5's rune sampler.
//
// On-disk layout:
//
//	magic header "cairn seg 2\n"                    12 bytes
//	name list         same as v1
//	posting lists     EncodePositionalList(files), one per trigram
//	posting index     3-byte trigram + varint(offset) + varint(file count)
//	                  + varint(total position count)
//	rune map          EncodeRuneSampler(samples), one per document
//	trailer           8 big-endian uint64 fields
//	magic trailer "cairn trlr 2\n"
//
// runeSamples must be indexed by local document id, same order as names.
func WriteSegmentV2(path string, names []string, postings PositionalBuilder, runeSamples [][]uint32) error {
	data := make([]byte, 0, 4096)
	data = append(data, magicHeaderV2...)

	nameListOff := uint64(len(data))
	for _, name := range names {
		data = varint.Append(data, uint64(len(name)))
		data = append(data, name...)
	}

	trigrams := sortedTrigrams(postings)
	postingsOff := uint64(len(data))
	offsets := make([]uint64, len(trigrams))
	for i, t := range trigrams {
		offsets[i] = uint64(len(data)) - postingsOff
		data = append(data, EncodePositionalList(postings[t])...)
	}

	postingIndexOff := uint64(len(data))
	for i, t := range trigrams {
		b := t.Bytes()
		data = append(data, b[0], b[1], b[2])
		data = varint.Append(data, offsets[i])
		data = varint.Append(data, uint64(len(postings[t])))

		var totalPositions uint64
		for _, f := range postings[t] {
			totalPositions += uint64(len(f.Positions))
		}
		data = varint.Append(data, totalPositions)
	}

	runeMapOff := uint64(len(data))
	for _, samples := range runeSamples {
		data = append(data, EncodeRuneSampler(samples)...)
	}

	data = putUint64s(data,
		nameListOff, postingsOff, postingIndexOff,
		uint64(len(names)), uint64(len(trigrams)), 0,
		runeMapOff, uint64(len(runeSamples)),
	)
	data = append(data, magicTrailerV2...)

	return WriteFileAtomic(path, data)
}

func parseV2(data []byte) (*Reader, error) {
	magicLen := len(magicTrailerV2)
	trailerLen := 64
	if len(data) < magicLen+trailerLen {
		return nil, ErrTruncated
	}
	if string(data[len(data)-magicLen:]) != magicTrailerV2 {
		return nil, ErrBadMagic
	}
	trailerOff := uint64(len(data) - magicLen - trailerLen)

	nameListOff := getUint64(data, trailerOff)
	postingsOff := getUint64(data, trailerOff+8)
	postingIndexOff := getUint64(data, trailerOff+16)
	numDocs := getUint64(data, trailerOff+24)
	runeMapOff := getUint64(data, trailerOff+48)

	index := readIndex(data, postingIndexOff, runeMapOff, true)

	return &Reader{
		data:        data,
		Version:     2,
		Positional:  true,
		numDocs:     numDocs,
		nameListOff: nameListOff,
		postingsOff: postingsOff,
		index:       index,
		runeMapOff:  runeMapOff,
	}, nil
}
