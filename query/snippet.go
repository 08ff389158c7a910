package query

import "sort"

// matchSpan is one match's absolute byte offsets [start, end) within a
// file's content.
type matchSpan struct {
	start, end int
}

// lineStarts returns the byte offset at which each line of content
// begins, index 0 being line 1.
func lineStarts(content []byte) []int {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineIndexForOffset returns the 0-based line index containing the
// given byte offset, via binary search over starts (ascending).
func lineIndexForOffset(starts []int, offset int) int {
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// lineBounds returns [start, end) for line index idx (0-based), not
// including its trailing newline.
func lineBounds(content []byte, starts []int, idx int) (start, end int) {
	start = starts[idx]
	if idx+1 < len(starts) {
		end = starts[idx+1] - 1
	} else {
		end = len(content)
	}
	if end < start {
		end = start
	}
	return start, end
}

// buildSnippets groups spans into contiguous blocks per spec.md §4.11
// step 5: each matched line keeps its own spans, adjacent matched lines
// (within 2*contextLines+1 of each other) are merged into one Snippet
// along with contextLines of surrounding, non-matching lines, and the
// result is capped at maxSnippets blocks.
func buildSnippets(content []byte, spans []matchSpan, contextLines, maxSnippets int) []Snippet {
	if len(spans) == 0 {
		return nil
	}
	starts := lineStarts(content)

	hitsByLine := make(map[int][][2]int)
	for _, sp := range spans {
		li := lineIndexForOffset(starts, sp.start)
		lineStart, _ := lineBounds(content, starts, li)
		hitsByLine[li] = append(hitsByLine[li], [2]int{sp.start - lineStart, sp.end - lineStart})
	}

	matchedLines := make([]int, 0, len(hitsByLine))
	for li := range hitsByLine {
		matchedLines = append(matchedLines, li)
	}
	sort.Ints(matchedLines)

	var groups [][]int
	for _, li := range matchedLines {
		if n := len(groups); n > 0 {
			last := groups[n-1]
			if li <= last[len(last)-1]+2*contextLines+1 {
				groups[n-1] = append(last, li)
				continue
			}
		}
		groups = append(groups, []int{li})
	}

	snippets := make([]Snippet, 0, min(len(groups), maxSnippets))
	for _, g := range groups {
		if len(snippets) >= maxSnippets {
			break
		}
		lo := g[0] - contextLines
		if lo < 0 {
			lo = 0
		}
		hi := g[len(g)-1] + contextLines
		if hi >= len(starts) {
			hi = len(starts) - 1
		}

		lines := make([]SnippetLine, 0, hi-lo+1)
		for li := lo; li <= hi; li++ {
			lineStart, lineEnd := lineBounds(content, starts, li)
			sl := SnippetLine{
				LineNumber: li + 1,
				ByteOffset: lineStart,
				Content:    string(content[lineStart:lineEnd]),
			}
			if m, ok := hitsByLine[li]; ok {
				sl.Matches = m
			}
			lines = append(lines, sl)
		}
		snippets = append(snippets, Snippet{Lines: lines})
	}
	return snippets
}
