package query

import (
	"context"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cairnsearch/cairn"
)

// matchFunc verifies one candidate's actual file content against a
// query, returning the snippets it produced and whether the candidate
// should be kept at all.
type matchFunc func(path string, content []byte) ([]Snippet, bool)

// verify runs matchFn over candidates through a bounded worker pool
// (golang.org/x/sync/errgroup.SetLimit), per spec.md §5's "verification
// runs across a bounded pool of goroutines". Each goroutine writes only
// to its own pre-allocated slot in results, so no result-slice mutex is
// needed; candidates a path lookup or file read fails for are dropped
// rather than failing the whole search (spec.md §7).
func verify(r *cairn.Reader, candidates []candidate, matchFn matchFunc, workers int, logger *zap.Logger) ([]Result, error) {
	results := make([]*Result, len(candidates))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			path, err := r.Name(c.globalID)
			if err != nil {
				logger.Debug("verify: dropping candidate, name lookup failed", zap.Uint32("global_id", c.globalID), zap.Error(err))
				return nil
			}
			content, err := os.ReadFile(path)
			if err != nil {
				logger.Debug("verify: dropping candidate, file unreadable", zap.String("path", path), zap.Error(err))
				return nil
			}
			snippets, ok := matchFn(path, content)
			if !ok {
				return nil
			}
			results[i] = &Result{
				GlobalID:   c.globalID,
				MatchCount: c.hits,
				Path:       path,
				Snippets:   snippets,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(results))
	for _, res := range results {
		if res != nil {
			out = append(out, *res)
		}
	}
	return out, nil
}
