package segment

import (
	"fmt"
	"os"

	"github.com/blevesearch/mmap-go"
)

// mappedFile is a read-only memory-mapped segment file. google-codesearch
// hand-rolls its own mmap_unix.go/mmap_windows.go pair (index/mmap_*.go)
// for exactly this purpose; we get the same cross-platform MAP_SHARED,
// read-only mapping from blevesearch/mmap-go (bleve's own segment store
// uses it for the same reason) instead of carrying two platform-specific
// files in this repo.
type mappedFile struct {
	f    *os.File
	data mmap.MMap
}

func openMappedFile(path string) (*mappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segment: open %s: %w", path, err)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("segment: mmap %s: %w", path, err)
	}
	return &mappedFile{f: f, data: data}, nil
}

func (m *mappedFile) Bytes() []byte { return m.data }

func (m *mappedFile) Close() error {
	err := m.data.Unmap()
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
