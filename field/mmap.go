package field

import (
	"fmt"
	"os"

	"github.com/blevesearch/mmap-go"
)

// mappedFile is a read-only memory-mapped field-aware segment file, the
// same blevesearch/mmap-go wrapper package segment uses for its plain and
// positional segments.
type mappedFile struct {
	f    *os.File
	data mmap.MMap
}

func openMappedFile(path string) (*mappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("field: open %s: %w", path, err)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("field: mmap %s: %w", path, err)
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
