package query

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cairnsearch/cairn"
)

func writeDoc(t *testing.T, w *cairn.Writer, dir, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, w.Add(path, []byte(content)))
	return path
}

func TestSearchFindsLiteralSubstring(t *testing.T) {
	idxDir := t.TempDir()
	srcDir := t.TempDir()

	w, err := cairn.OpenWriter(idxDir)
	require.NoError(t, err)
	aPath := writeDoc(t, w, srcDir, "a.go", "package main\n\nfunc NeedleHere() {}\n")
	writeDoc(t, w, srcDir, "b.go", "package lib\n\nfunc Other() {}\n")
	require.NoError(t, w.Commit())

	r, err := cairn.OpenReader(idxDir)
	require.NoError(t, err)
	defer r.Close()

	results, err := Search(r, "NeedleHere", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, aPath, results[0].Path)
	require.NotEmpty(t, results[0].Snippets)
}

func TestSearchTooShortQueryReturnsNoResults(t *testing.T) {
	idxDir := t.TempDir()
	srcDir := t.TempDir()

	w, err := cairn.OpenWriter(idxDir)
	require.NoError(t, err)
	writeDoc(t, w, srcDir, "a.go", "package main")
	require.NoError(t, w.Commit())

	r, err := cairn.OpenReader(idxDir)
	require.NoError(t, err)
	defer r.Close()

	results, err := Search(r, "ab", 10)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearchMatchesOnPathItself(t *testing.T) {
	idxDir := t.TempDir()
	srcDir := t.TempDir()

	w, err := cairn.OpenWriter(idxDir)
	require.NoError(t, err)
	// Content must also carry the query's trigrams so the document
	// actually surfaces as a candidate — the index only covers document
	// content, not paths, so a path-only match with zero trigram overlap
	// in content could never be found in the first place.
	path := writeDoc(t, w, srcDir, "special_name.go", "package main\n// special_name\n")
	require.NoError(t, w.Commit())

	r, err := cairn.OpenReader(idxDir)
	require.NoError(t, err)
	defer r.Close()

	results, err := Search(r, "special_name", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, path, results[0].Path)
	require.Equal(t, 0, results[0].Snippets[0].Lines[0].LineNumber, "path special-case snippet must come first")
}
