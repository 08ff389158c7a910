package segment

import (
	"path/filepath"
	"testing"

	"github.com/cairnsearch/cairn/trigram"
)

func TestWriteSegmentV1RoundTrip(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.go", "b.go", "c.go"}
	postings := PostingBuilder{}
	for localID, content := range [][]byte{
		[]byte("package main"),
		[]byte("package main\nfunc main() {}"),
		[]byte("package lib"),
	} {
		ts, err := trigram.Extract(content)
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		for tri := range ts {
			postings.Add(tri, uint32(localID))
		}
	}

	path := filepath.Join(dir, "test.seg")
	if err := WriteSegmentV1(path, names, postings); err != nil {
		t.Fatalf("WriteSegmentV1: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.Version != 1 || r.Positional {
		t.Fatalf("Version=%d Positional=%v, want 1/false", r.Version, r.Positional)
	}
	if r.NumDocs() != len(names) {
		t.Fatalf("NumDocs() = %d, want %d", r.NumDocs(), len(names))
	}
	for i, name := range names {
		got, err := r.Name(uint32(i))
		if err != nil || got != name {
			t.Errorf("Name(%d) = %q, %v; want %q", i, got, err, name)
		}
	}

	pkg := trigram.Pack('p', 'a', 'c')
	ids, ok := r.Postings(pkg)
	if !ok {
		t.Fatalf("Postings(%q): not found", pkg)
	}
	if len(ids) != 3 {
		t.Errorf("Postings(%q) = %v, want all 3 docs", pkg, ids)
	}

	if _, err := r.PositionalPostings(pkg); err != ErrNoPositions {
		t.Errorf("PositionalPostings on v1 segment: err = %v, want ErrNoPositions", err)
	}
}

func TestWriteSegmentV2RoundTrip(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.go", "b.go"}
	contents := [][]byte{
		[]byte("package main"),
		[]byte("package other"),
	}

	postings := PositionalBuilder{}
	runeSamples := make([][]uint32, len(contents))
	for localID, content := range contents {
		positions, err := trigram.ExtractPositions(content)
		if err != nil {
			t.Fatalf("ExtractPositions: %v", err)
		}
		for tri, pos := range positions {
			postings.Add(tri, uint32(localID), pos)
		}
		runeSamples[localID] = trigram.SampleRuneOffsets(content, 100)
	}

	path := filepath.Join(dir, "test.seg")
	if err := WriteSegmentV2(path, names, postings, runeSamples); err != nil {
		t.Fatalf("WriteSegmentV2: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.Version != 2 || !r.Positional {
		t.Fatalf("Version=%d Positional=%v, want 2/true", r.Version, r.Positional)
	}

	pkg := trigram.Pack('p', 'a', 'c')
	files, err := r.PositionalPostings(pkg)
	if err != nil {
		t.Fatalf("PositionalPostings: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("PositionalPostings(%q) = %v, want 2 files", pkg, files)
	}
	for _, f := range files {
		if len(f.Positions) != 1 || f.Positions[0].ByteOffset != 0 {
			t.Errorf("file %d positions = %v, want one match at offset 0", f.LocalID, f.Positions)
		}
	}

	offs, err := r.RuneOffsets(0)
	if err != nil {
		t.Fatalf("RuneOffsets: %v", err)
	}
	if len(offs) == 0 || offs[0] != 0 {
		t.Errorf("RuneOffsets(0) = %v, want first sample at 0", offs)
	}
}
