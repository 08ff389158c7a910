package field

import (
	"math"
	"sort"

	"github.com/cairnsearch/cairn/trigram"
)

// ScoredDoc is one document's aggregated BM25-over-trigrams score,
// summed across every field a query's trigrams matched in. LocalID holds
// the document's global id in the Reader's snapshot (the ids
// Reader.Postings returns), which equals its local id only in a
// single-segment index.
type ScoredDoc struct {
	LocalID uint32
	Score   float64
}

// Rank scores every document in r that contains at least one of
// trigrams, in at least one field, per spec.md §4.14: for each matched
// (doc, field) pair, score += boost[field] * idf(t, field), where
// `idf = ln((N-df+0.5)/(df+0.5)+1)` and df is that trigram's document
// frequency within that field. Per-field scores are summed per document;
// N is r.NumDocs(). Results are sorted by score descending, ties broken
// by LocalID ascending, matching spec.md's tie-break rule.
//
// A nil or missing boosts entry defaults to 1.0 — an unboosted field
// still contributes its raw idf term, matching the teacher's general
// "missing config falls back to a sane default" convention elsewhere in
// this repo's functional-options layers.
func Rank(r *Reader, trigrams []trigram.Trigram, boosts map[FieldID]float64) []ScoredDoc {
	n := float64(r.NumDocs())
	scores := make(map[uint32]float64)

	for fid := FieldID(0); int(fid) < r.schema.NumFields(); fid++ {
		boost, ok := boosts[fid]
		if !ok {
			boost = 1.0
		}
		for _, t := range trigrams {
			ids, ok := r.Postings(t, fid)
			if !ok {
				continue
			}
			df := float64(r.DocFreq(t, fid))
			idf := math.Log((n-df+0.5)/(df+0.5) + 1)
			for _, id := range ids {
				scores[id] += boost * idf
			}
		}
	}

	out := make([]ScoredDoc, 0, len(scores))
	for id, s := range scores {
		out = append(out, ScoredDoc{LocalID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].LocalID < out[j].LocalID
	})
	return out
}
