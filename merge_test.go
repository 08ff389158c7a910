package cairn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterMergeDropsTombstonesAndPreservesLiveDocs(t *testing.T) {
	dir := t.TempDir()
	srcDir := t.TempDir()

	aPath := filepath.Join(srcDir, "a.go")
	bPath := filepath.Join(srcDir, "b.go")
	cPath := filepath.Join(srcDir, "c.go")
	require.NoError(t, os.WriteFile(aPath, []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(bPath, []byte("package lib"), 0o644))
	require.NoError(t, os.WriteFile(cPath, []byte("package other"), 0o644))

	w, err := OpenWriter(dir)
	require.NoError(t, err)
	require.NoError(t, w.Add(aPath, []byte("package main")))
	require.NoError(t, w.Commit())
	require.NoError(t, w.Add(bPath, []byte("package lib")))
	require.NoError(t, w.Commit())
	require.NoError(t, w.Add(cPath, []byte("package other")))
	require.NoError(t, w.Commit())

	require.NoError(t, w.Delete(bPath))
	require.NoError(t, w.Commit())

	require.Len(t, w.meta.Segments, 3)
	ids := make([]string, 0, 3)
	for _, sm := range w.meta.Segments {
		ids = append(ids, sm.ID)
	}

	require.NoError(t, w.Merge(ids))
	require.Len(t, w.meta.Segments, 1)
	require.Equal(t, 2, w.meta.Segments[0].NumDocs)

	r, err := OpenReader(dir)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, 2, r.DocumentCount())

	var names []string
	for i := 0; i < 2; i++ {
		name, err := r.Name(uint32(i))
		require.NoError(t, err)
		names = append(names, name)
	}
	require.ElementsMatch(t, []string{aPath, cPath}, names)
}

func TestWriterMergeRejectsUnknownSegmentID(t *testing.T) {
	dir := t.TempDir()
	w, err := OpenWriter(dir)
	require.NoError(t, err)
	require.ErrorIs(t, w.Merge([]string{"does-not-exist"}), ErrSegmentNotFound)
}
