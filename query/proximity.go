package query

import (
	"sort"

	"go.uber.org/zap"

	"github.com/cairnsearch/cairn"
	"github.com/cairnsearch/cairn/trigram"
)

// Proximity returns, in ascending order, the global ids of every
// document where trigrams a and b both occur within maxDistance runes of
// each other, per spec.md P10. Requires the index to carry positional
// (v2) segments; documents only covered by v1 segments never appear in
// TrigramPositions and so are silently excluded, matching the degraded-
// rather-than-failed behavior TrigramPositions itself documents.
func Proximity(r *cairn.Reader, a, b trigram.Trigram, maxDistance int, opts ...Option) ([]uint32, error) {
	cfg := applyOptions(opts)

	posA, err := r.TrigramPositions(a)
	if err != nil {
		return nil, err
	}
	posB, err := r.TrigramPositions(b)
	if err != nil {
		return nil, err
	}

	var out []uint32
	for id, ap := range posA {
		bp, ok := posB[id]
		if !ok {
			continue
		}
		if anyWithinDistance(ap, bp, maxDistance) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	cfg.logger.Debug("proximity match", zap.Int("hits", len(out)), zap.Int("max_distance", maxDistance))
	return out, nil
}

// anyWithinDistance reports whether any position in a and any position
// in b are within maxDistance runes of each other.
func anyWithinDistance(a, b []trigram.Position, maxDistance int) bool {
	for _, pa := range a {
		for _, pb := range b {
			d := int(pa.RuneOffset) - int(pb.RuneOffset)
			if d < 0 {
				d = -d
			}
			if d <= maxDistance {
				return true
			}
		}
	}
	return false
}
