// Package backingstore reads pages from the persistent storage that backs
// the simulated address space.
package backingstore

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/vmsim/mem/vm"
)

// ErrRead is returned when the backing store is missing or does not hold
// the requested bytes.
var ErrRead = errors.New("backing store read error")

// MinSize is the smallest acceptable backing store, in bytes.
const MinSize = vm.NumPages * vm.PageSize

// A Store serves whole pages out of a byte blob.
type Store struct {
	r    io.ReaderAt
	size int64
	file *os.File
}

// Open opens a file-backed store.
func Open(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	s, err := New(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s.file = f

	return s, nil
}

// New wraps a reader of the given size as a store.
func New(r io.ReaderAt, size int64) (*Store, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no reader", ErrRead)
	}

	if size < MinSize {
		return nil, fmt.Errorf("%w: store holds %d bytes, need at least %d",
			ErrRead, size, MinSize)
	}

	return &Store{r: r, size: size}, nil
}

// Size returns the number of bytes in the store.
func (s *Store) Size() int64 {
	return s.size
}

// LoadPage reads one page. It never returns partial data.
func (s *Store) LoadPage(page vm.PageIndex) ([]byte, error) {
	buf := make([]byte, vm.PageSize)
	offset := int64(page) * vm.PageSize

	n, err := s.r.ReadAt(buf, offset)
	if n < len(buf) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}

		return nil, fmt.Errorf("%w: page %d: read %d of %d bytes: %v",
			ErrRead, page, n, len(buf), err)
	}

	return buf, nil
}

// Close releases the underlying file, if the store opened one.
func (s *Store) Close() error {
	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	return err
}
