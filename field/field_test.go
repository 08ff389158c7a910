package field

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cairnsearch/cairn/trigram"
)

func widgetTrigram(t *testing.T) trigram.Trigram {
	t.Helper()
	ts, err := trigram.Extract([]byte("Wid"))
	require.NoError(t, err)
	require.Len(t, ts, 1)
	var tri trigram.Trigram
	for k := range ts {
		tri = k
	}
	return tri
}

func TestWriterCommitAndRank(t *testing.T) {
	schema, err := NewSchema("symbol", "body")
	require.NoError(t, err)

	dir := t.TempDir()
	w, err := OpenWriter(dir, schema)
	require.NoError(t, err)

	require.NoError(t, w.Add("a.go", map[string][]byte{
		"symbol": []byte("Widget"),
		"body":   []byte("package main\ntype Widget struct{}"),
	}))
	require.NoError(t, w.Add("b.go", map[string][]byte{
		"symbol": []byte("Gadget"),
		"body":   []byte("package main\ntype Gadget struct{}\n// Widget-compatible"),
	}))
	require.NoError(t, w.Commit())
	require.Equal(t, 2, w.DocumentCount())

	r, err := OpenReader(dir)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 2, r.NumDocs())
	require.Equal(t, 1, r.SegmentCount())

	symbolID, ok := r.Schema().ID("symbol")
	require.True(t, ok)
	bodyID, ok := r.Schema().ID("body")
	require.True(t, ok)

	tri := widgetTrigram(t)

	idsSymbol, ok := r.Postings(tri, symbolID)
	require.True(t, ok)
	require.Equal(t, []uint32{0}, idsSymbol)

	idsBody, ok := r.Postings(tri, bodyID)
	require.True(t, ok)
	require.ElementsMatch(t, []uint32{0, 1}, idsBody)

	name0, err := r.Name(0)
	require.NoError(t, err)
	require.Equal(t, "a.go", name0)

	ranked := Rank(r, []trigram.Trigram{tri}, map[FieldID]float64{symbolID: 2.0, bodyID: 1.0})
	require.NotEmpty(t, ranked)
	require.Equal(t, uint32(0), ranked[0].LocalID, "doc 0 scores higher: matches both the boosted symbol field and body")
}

func TestWriterDeleteAndReopen(t *testing.T) {
	schema, err := NewSchema("symbol", "body")
	require.NoError(t, err)

	dir := t.TempDir()
	w, err := OpenWriter(dir, schema)
	require.NoError(t, err)
	require.NoError(t, w.Add("a.go", map[string][]byte{"symbol": []byte("Widget"), "body": []byte("Widget")}))
	require.NoError(t, w.Add("b.go", map[string][]byte{"symbol": []byte("Gadget"), "body": []byte("Gadget")}))
	require.NoError(t, w.Commit())

	require.NoError(t, w.Delete("a.go"))
	require.NoError(t, w.Commit())
	require.Equal(t, 1, w.DocumentCount())

	r, err := OpenReader(dir)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, 1, r.NumDocs())

	// Global ids still count the tombstoned a.go (id 0), so b.go is id 1.
	name, err := r.Name(1)
	require.NoError(t, err)
	require.Equal(t, "b.go", name)
}

func TestWriterMerge(t *testing.T) {
	schema, err := NewSchema("symbol", "body")
	require.NoError(t, err)

	dir := t.TempDir()
	w, err := OpenWriter(dir, schema, WithFlushThreshold(1))
	require.NoError(t, err)

	require.NoError(t, w.Add("a.go", map[string][]byte{"symbol": []byte("Widget"), "body": []byte("Widget")}))
	require.NoError(t, w.Add("b.go", map[string][]byte{"symbol": []byte("Gadget"), "body": []byte("Gadget")}))
	require.NoError(t, w.Add("c.go", map[string][]byte{"symbol": []byte("Gizmo"), "body": []byte("Gizmo")}))
	require.Equal(t, 3, w.DocumentCount())

	ids := make([]string, 0, len(w.meta.Segments))
	for _, sm := range w.meta.Segments {
		ids = append(ids, sm.ID)
	}
	require.NoError(t, w.Merge(ids))

	r, err := OpenReader(dir)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, 1, r.SegmentCount())
	require.Equal(t, 3, r.NumDocs())

	tri := widgetTrigram(t)
	symbolID, _ := r.Schema().ID("symbol")
	ids2, ok := r.Postings(tri, symbolID)
	require.True(t, ok)
	require.Equal(t, []uint32{0}, ids2)
}

func TestSchemaRejectsDuplicateNames(t *testing.T) {
	_, err := NewSchema("body", "body")
	require.Error(t, err)
}

func TestOpenWriterRejectsSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	schema, err := NewSchema("symbol", "body")
	require.NoError(t, err)
	w, err := OpenWriter(dir, schema)
	require.NoError(t, err)
	require.NoError(t, w.Add("a.go", map[string][]byte{"symbol": []byte("x")}))
	require.NoError(t, w.Commit())

	other, err := NewSchema("body", "symbol")
	require.NoError(t, err)
	_, err = OpenWriter(dir, other)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestWriteSegmentDirect(t *testing.T) {
	schema, err := NewSchema("symbol", "body")
	require.NoError(t, err)

	postings := make(PostingBuilder)
	tri := widgetTrigram(t)
	symbolID, _ := schema.ID("symbol")
	postings.Add(tri, symbolID, 0)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.fseg")
	require.NoError(t, WriteSegment(path, []string{"a.go"}, schema, postings))

	r, err := openSegment(path)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, 1, r.NumDocs())
}
