package cairn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterAddCommitReopen(t *testing.T) {
	dir := t.TempDir()

	w, err := OpenWriter(dir)
	require.NoError(t, err)

	require.NoError(t, w.Add("a.go", []byte("package main\nfunc main() {}")))
	require.NoError(t, w.Add("b.go", []byte("package lib")))
	require.Equal(t, 2, w.DocumentCount())
	require.NoError(t, w.Commit())

	r, err := OpenReader(dir)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 2, r.DocumentCount())
	require.Equal(t, 1, r.SegmentCount())

	w2, err := OpenWriter(dir)
	require.NoError(t, err)
	require.Equal(t, 2, w2.DocumentCount())
}

func TestWriterDeleteTombstonesAcrossCommits(t *testing.T) {
	dir := t.TempDir()

	w, err := OpenWriter(dir)
	require.NoError(t, err)
	require.NoError(t, w.Add("a.go", []byte("package main")))
	require.NoError(t, w.Commit())

	require.NoError(t, w.Delete("a.go"))
	require.Equal(t, 0, w.DocumentCount())
	require.NoError(t, w.Commit())

	r, err := OpenReader(dir)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, 0, r.DocumentCount())
}

func TestWriterDedupesSamePathWithinOneCommit(t *testing.T) {
	dir := t.TempDir()

	w, err := OpenWriter(dir)
	require.NoError(t, err)
	require.NoError(t, w.Add("a.go", []byte("package main\nfunc First() {}")))
	require.NoError(t, w.Add("a.go", []byte("package main\nfunc Second() {}")))
	require.NoError(t, w.Commit())

	r, err := OpenReader(dir)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 1, r.DocumentCount())
	name, err := r.Name(0)
	require.NoError(t, err)
	require.Equal(t, "a.go", name)
}

func TestWriterAutoCommitsAtFlushThreshold(t *testing.T) {
	dir := t.TempDir()

	w, err := OpenWriter(dir, WithFlushThreshold(2))
	require.NoError(t, err)
	require.NoError(t, w.Add("a.go", []byte("package main")))
	require.NoError(t, w.Add("b.go", []byte("package lib")))

	r, err := OpenReader(dir)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, 2, r.DocumentCount(), "adding the 2nd doc should have auto-committed at the threshold")
}
