package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cairnsearch/cairn"
	cairnregexp "github.com/cairnsearch/cairn/regexp"
)

func TestSearchRegexFindsPattern(t *testing.T) {
	idxDir := t.TempDir()
	srcDir := t.TempDir()

	w, err := cairn.OpenWriter(idxDir)
	require.NoError(t, err)
	aPath := writeDoc(t, w, srcDir, "a.go", "package main\n\nfunc DoWork(x int) int { return x }\n")
	writeDoc(t, w, srcDir, "b.go", "package lib\n\nfunc Other() {}\n")
	require.NoError(t, w.Commit())

	r, err := cairn.OpenReader(idxDir)
	require.NoError(t, err)
	defer r.Close()

	results, err := SearchRegex(r, `func Do\w+\(`, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, aPath, results[0].Path)
}

func TestSearchRegexRejectsUnconstrainedPattern(t *testing.T) {
	idxDir := t.TempDir()
	srcDir := t.TempDir()

	w, err := cairn.OpenWriter(idxDir)
	require.NoError(t, err)
	writeDoc(t, w, srcDir, "a.go", "package main")
	require.NoError(t, w.Commit())

	r, err := cairn.OpenReader(idxDir)
	require.NoError(t, err)
	defer r.Close()

	_, err = SearchRegex(r, `.*`, 10)
	require.ErrorIs(t, err, cairnregexp.ErrUnconstrainedPattern)
}
