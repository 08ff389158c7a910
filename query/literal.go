package query

import (
	"bytes"
	"strings"

	"go.uber.org/zap"

	"github.com/cairnsearch/cairn"
	"github.com/cairnsearch/cairn/trigram"
)

// Search performs spec.md §4.11's literal substring search: extract the
// query's trigrams, rank candidates by hit count, verify the top
// 2*maxResults of them against their actual file content, and return up
// to maxResults ranked Results with merged snippets.
//
// Grounded on google-codesearch's cmd/cgrep main loop (Query + Grep),
// generalized from "print matching lines" into a programmatic Result
// slice with byte-offset spans.
func Search(r *cairn.Reader, query string, maxResults int, opts ...Option) ([]Result, error) {
	cfg := applyOptions(opts)

	trigrams, err := trigram.Extract([]byte(query))
	if err != nil || len(trigrams) == 0 {
		// A query too short to carry a single trigram (or one that is
		// not itself valid extractable content) has no selective index
		// term to search on; spec.md §4.11 step 1 treats this as "no
		// results" rather than a full scan.
		cfg.logger.Debug("literal query has no extractable trigram", zap.String("query", query))
		return nil, nil
	}
	ts := make([]trigram.Trigram, 0, len(trigrams))
	for t := range trigrams {
		ts = append(ts, t)
	}

	candidates := candidatesForTrigrams(r, ts)
	verifyN := 2 * maxResults
	if verifyN > len(candidates) {
		verifyN = len(candidates)
	}
	candidates = candidates[:verifyN]
	cfg.logger.Debug("literal search candidates", zap.String("query", query), zap.Int("candidates", len(candidates)))

	match := func(path string, content []byte) ([]Snippet, bool) {
		if strings.Contains(path, query) {
			pathSnippet := Snippet{Lines: []SnippetLine{{
				LineNumber: 0,
				Content:    path,
				Matches:    [][2]int{{strings.Index(path, query), strings.Index(path, query) + len(query)}},
			}}}
			snippets := buildSnippets(content, findAllLiteral(content, []byte(query)), cfg.contextLines, cfg.maxSnippetsPerFile)
			return append([]Snippet{pathSnippet}, snippets...), true
		}

		spans := findAllLiteral(content, []byte(query))
		if len(spans) == 0 {
			return nil, false
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

// findAllLiteral returns every non-overlapping occurrence of needle in
// content as a matchSpan.
func findAllLiteral(content, needle []byte) []matchSpan {
	if len(needle) == 0 {
		return nil
	}
	var spans []matchSpan
	offset := 0
	for {
		i := bytes.Index(content[offset:], needle)
		if i < 0 {
			break
		}
		start := offset + i
		spans = append(spans, matchSpan{start: start, end: start + len(needle)})
		offset = start + len(needle)
	}
	return spans
}
