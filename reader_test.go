package cairn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cairnsearch/cairn/trigram"
)

func TestReaderTrigramIteratorSkipsDeleted(t *testing.T) {
	dir := t.TempDir()

	w, err := OpenWriter(dir)
	require.NoError(t, err)
	require.NoError(t, w.Add("a.go", []byte("package main")))
	require.NoError(t, w.Add("b.go", []byte("package lib")))
	require.NoError(t, w.Commit())
	require.NoError(t, w.Delete("a.go"))
	require.NoError(t, w.Commit())

	r, err := OpenReader(dir)
	require.NoError(t, err)
	defer r.Close()

	ts, err := trigram.Extract([]byte("pac"))
	require.NoError(t, err)
	require.Len(t, ts, 1)
	var tri trigram.Trigram
	for tt := range ts {
		tri = tt
	}

	it := r.LookupTrigram(tri)
	var paths []string
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		name, err := r.Name(p.GlobalID)
		require.NoError(t, err)
		paths = append(paths, name)
	}
	require.Equal(t, []string{"b.go"}, paths)
}

func TestReaderSnapshotIsolation(t *testing.T) {
	dir := t.TempDir()

	w, err := OpenWriter(dir)
	require.NoError(t, err)
	require.NoError(t, w.Add("a.go", []byte("package main")))
	require.NoError(t, w.Commit())

	r, err := OpenReader(dir)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, w.Add("b.go", []byte("package lib")))
	require.NoError(t, w.Commit())

	require.Equal(t, 1, r.DocumentCount(), "a reader opened before the second commit must not see it")

	r2, err := OpenReader(dir)
	require.NoError(t, err)
	defer r2.Close()
	require.Equal(t, 2, r2.DocumentCount())
}
