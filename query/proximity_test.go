package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cairnsearch/cairn"
	"github.com/cairnsearch/cairn/trigram"
)

func TestProximityFindsNearbyTrigrams(t *testing.T) {
	idxDir := t.TempDir()
	srcDir := t.TempDir()

	w, err := cairn.OpenWriter(idxDir, cairn.WithPositional(true))
	require.NoError(t, err)
	nearPath := writeDoc(t, w, srcDir, "near.go", "foo bar")
	pad := make([]byte, 500)
	for i := range pad {
		pad[i] = ' '
	}
	writeDoc(t, w, srcDir, "far.go", "foo"+string(pad)+"bar")
	require.NoError(t, w.Commit())

	r, err := cairn.OpenReader(idxDir)
	require.NoError(t, err)
	defer r.Close()

	fooTris, err := trigram.Extract([]byte("foo"))
	require.NoError(t, err)
	barTris, err := trigram.Extract([]byte("bar"))
	require.NoError(t, err)
	var fooT, barT trigram.Trigram
	for t := range fooTris {
		fooT = t
	}
	for t := range barTris {
		barT = t
	}

	ids, err := Proximity(r, fooT, barT, 10)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	name, err := r.Name(ids[0])
	require.NoError(t, err)
	require.Equal(t, nearPath, name)
}
