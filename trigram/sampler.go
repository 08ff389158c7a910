package trigram

// SampleRuneOffsets walks content once and records the byte offset of
// every Nth rune (rune 0, rune N, rune 2N, ...), for building the v2
// segment rune-offset sampler (spec.md's rune->byte conversion table used
// to translate proximity-query rune distances into byte ranges without
// rescanning whole files). A document with fewer than N+1 runes still
// yields its rune-0 sample, so the sampler is never empty for non-empty
// content.
func SampleRuneOffsets(content []byte, every int) []uint32 {
	if every <= 0 {
		every = 100
	}
	var out []uint32
	var runeIdx int
	for i, c := range content {
		if c&0xC0 == 0x80 {
			continue // continuation byte: not the start of a rune
		}
		if runeIdx%every == 0 {
			out = append(out, uint32(i))
		}
		runeIdx++
	}
	return out
}
