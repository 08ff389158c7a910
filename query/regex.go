package query

import (
	"go.uber.org/zap"

	"github.com/cairnsearch/cairn"
	cairnregexp "github.com/cairnsearch/cairn/regexp"
	"github.com/cairnsearch/cairn/trigram"
)

// SearchRegex performs spec.md §4.12's regex search: compile the
// pattern, extract its maximal literal runs, rank every document holding
// any of their trigrams by how many of those trigrams it holds, then
// verify the top 2*maxResults candidates by actually running the
// compiled regex against their file content. A candidate is not
// excluded for lacking some run's trigrams; it only ranks lower.
func SearchRegex(r *cairn.Reader, pattern string, maxResults int, opts ...Option) ([]Result, error) {
	cfg := applyOptions(opts)

	re, err := cairnregexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	runs := cairnregexp.LiteralRuns(pattern)
	union := make(map[trigram.Trigram]struct{})
	for _, run := range runs {
		ts, err := trigram.Extract(run)
		if err != nil {
			// A run containing e.g. a NUL byte cannot itself appear in any
			// indexed document (trigram.Extract rejects NUL content
			// outright); skip it rather than fail the whole query.
			cfg.logger.Debug("skipping unextractable literal run", zap.ByteString("run", run), zap.Error(err))
			continue
		}
		for t := range ts {
			union[t] = struct{}{}
		}
	}
	if len(union) == 0 {
		return nil, cairnregexp.ErrUnconstrainedPattern
	}
	ts := make([]trigram.Trigram, 0, len(union))
	for t := range union {
		ts = append(ts, t)
	}

	candidates := candidatesForTrigrams(r, ts)
	verifyN := 2 * maxResults
	if verifyN > len(candidates) {
		verifyN = len(candidates)
	}
	candidates = candidates[:verifyN]
	cfg.logger.Debug("regex search candidates", zap.String("pattern", pattern), zap.Int("candidates", len(candidates)))

	match := func(path string, content []byte) ([]Snippet, bool) {
		idx := re.FindAllIndex(content)
		if len(idx) == 0 {
			return nil, false
		}
		spans := make([]matchSpan, 0, len(idx))
		for _, pair := range idx {
			spans = append(spans, matchSpan{start: pair[0], end: pair[1]})
		}
		return buildSnippets(content, spans, cfg.contextLines, cfg.maxSnippetsPerFile), true
	}

	results, err := verify(r, candidates, match, cfg.workers, cfg.logger)
	if err != nil {
		return nil, err
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
