package query

import (
	"sort"

	"github.com/cairnsearch/cairn"
	"github.com/cairnsearch/cairn/trigram"
)

// candidate is one globally-identified document ranked by how many of a
// query's trigrams it matched, per spec.md §4.11 step 3.
type candidate struct {
	globalID uint32
	hits     int
}

// candidatesForTrigrams walks every trigram's postings across r, tallies
// hit counts per document, and returns them ordered by (hits descending,
// globalID ascending) so that the most-promising candidates come first
// and ties are deterministic.
func candidatesForTrigrams(r *cairn.Reader, trigrams []trigram.Trigram) []candidate {
	hits := make(map[uint32]int)
	for _, t := range trigrams {
		it := r.LookupTrigram(t)
		for {
			p, ok := it.Next()
			if !ok {
				break
			}
			hits[p.GlobalID]++
		}
	}

	out := make([]candidate, 0, len(hits))
	for id, n := range hits {
		out = append(out, candidate{globalID: id, hits: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].hits != out[j].hits {
			return out[i].hits > out[j].hits
		}
		return out[i].globalID < out[j].globalID
	})
	return out
}
