// Package query implements the query engine: spec.md §4.11's literal
// substring search, §4.12's regex search, §4.13's proximity queries, and
// the bounded-parallel verification pass both searches rely on. Literal
// verification is grounded on google-codesearch's Grep.Reader
// (regexp/match.go) line-scanning approach, generalized from "print the
// matching line" to "return every match span plus merged context
// snippets"; regex literal-run extraction and proximity are new (see
// SPEC_FULL.md §4).
package query

// SnippetLine is one line of a result snippet: its 1-based line number,
// the byte offset its content starts at within the source file, the
// line's text, and the match spans (relative to the line, as
// [start, end) byte offsets) found on it. Context-only lines (included
// for readability around an actual match) carry no Matches.
type SnippetLine struct {
	LineNumber int
	ByteOffset int
	Content    string
	Matches    [][2]int
}

// Snippet is one contiguous block of matched lines plus surrounding
// context, per spec.md §4.11 step 5's "merge matches that fall on
// adjacent lines into contiguous snippets of context_lines above and
// below".
type Snippet struct {
	Lines []SnippetLine
}

// Result bundles one ranked, verified match, per spec.md §6's
// programmatic surface.
type Result struct {
	GlobalID   uint32
	MatchCount int
	Path       string
	Score      float64
	Snippets   []Snippet
}
