package pstore

import (
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Source is anything a Reader can resolve byte ranges against: an
// io.ReaderAt plus its total length. FromBytes adapts an in-memory byte
// slice, FromReaderAt adapts an io.ReaderAt of known length such as an
// *os.File, and OpenFile returns a memory-mapped region.
type Source interface {
	io.ReaderAt
	Len() int
}

// bytesSource adapts a plain []byte to Source.
type bytesSource []byte

func (b bytesSource) Len() int { return len(b) }

func (b bytesSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(b)) {
		return 0, fmt.Errorf("pstore: ReadAt offset %d out of range", off)
	}

	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// FromBytes wraps an in-memory byte slice as a Source. The slice must not
// be modified while a Reader built over it is in use.
func FromBytes(b []byte) Source {
	return bytesSource(b)
}

// readerAtSource adapts an io.ReaderAt with a known total length to Source.
type readerAtSource struct {
	io.ReaderAt
	length int
}

func (s readerAtSource) Len() int { return s.length }

// FromReaderAt wraps an io.ReaderAt of known length as a Source — e.g. an
// *os.File opened without memory-mapping.
func FromReaderAt(r io.ReaderAt, length int) Source {
	return readerAtSource{ReaderAt: r, length: length}
}

// mmapSource is a memory-mapped file-backed Source, opened by OpenFile.
type mmapSource struct {
	file *os.File
	data mmap.MMap
}

func (s *mmapSource) Len() int { return len(s.data) }

func (s *mmapSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(s.data)) {
		return 0, fmt.Errorf("pstore: ReadAt offset %d out of range", off)
	}

	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// Close unmaps the file and closes the underlying file handle.
func (s *mmapSource) Close() error {
	if err := s.data.Unmap(); err != nil {
		s.file.Close()
		return fmt.Errorf("pstore: unmapping file: %w", err)
	}

	return s.file.Close()
}

// OpenFile memory-maps path read-only and returns it as a Source, via
// github.com/edsrzf/mmap-go. The returned Source also implements io.Closer;
// callers should close it once the Reader built over it is done, which
// unmaps the region and releases the file handle (spec.md §5's resource
// discipline).
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pstore: opening %s: %w", path, err)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pstore: mapping %s: %w", path, err)
	}

	return &mmapSource{file: f, data: data}, nil
}
