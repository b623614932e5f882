// Package binary provides bounds-checked binary reading primitives for
// image container parsing.
package binary

import (
	"encoding/binary"
	"fmt"
	"io"
)

// SafeReader wraps io.ReaderAt with bounds checking and helpful error messages.
type SafeReader struct {
	r    io.ReaderAt
	path string
	size int64
}

// NewSafeReader creates a new SafeReader.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	return &SafeReader{
		r:    r,
		size: size,
		path: path,
	}
}

// Path returns the file path associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the total size of the underlying source in bytes.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// ReadAt reads bytes at the given offset with context for error messages.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	// Check bounds
	if off < 0 || off >= sr.size {
		return fmt.Errorf("%s: offset %d out of bounds (file size: %d) while reading %s",
			sr.path, off, sr.size, what)
	}

	if off+int64(len(b)) > sr.size {
		return fmt.Errorf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
			sr.path, len(b), off, sr.size, what)
	}

	n, err := sr.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", sr.path, what, off, err)
	}

	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, expected %d",
			sr.path, what, off, n, len(b))
	}

	return nil
}

// ReadLE reads a value of type T at the given offset in little-endian
// byte order (XISF envelope and pixel samples).
func ReadLE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return read[T](sr, off, what, binary.LittleEndian)
}

// ReadBE reads a value of type T at the given offset in big-endian byte
// order (FITS data records).
func ReadBE[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	return read[T](sr, off, what, binary.BigEndian)
}

func read[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string, order binary.ByteOrder) (T, error) {
	var zero T
	size := sizeOf(zero)

	buf := make([]byte, size)
	if err := sr.ReadAt(buf, off, what); err != nil {
		return zero, err
	}

	var val T
	switch any(zero).(type) {
	case uint8:
		val = T(buf[0])
	case uint16:
		val = T(order.Uint16(buf))
	case uint32:
		val = T(order.Uint32(buf))
	case uint64:
		val = T(order.Uint64(buf))
	}

	return val, nil
}

func sizeOf[T uint8 | uint16 | uint32 | uint64](zero T) int {
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

// Reader provides sequential reading with automatic offset tracking.
type Reader struct {
	*SafeReader
	offset int64
}

// NewReader creates a new Reader starting at the given offset.
func NewReader(sr *SafeReader, offset int64) *Reader {
	return &Reader{
		SafeReader: sr,
		offset:     offset,
	}
}

// ReadString reads a fixed-length byte string and advances the offset.
func (r *Reader) ReadString(length int, what string) (string, error) {
	buf := make([]byte, length)
	if err := r.SafeReader.ReadAt(buf, r.offset, what); err != nil {
		return "", err
	}

	r.offset += int64(length)
	return string(buf), nil
}

// ReadBytes reads length bytes and advances the offset.
func (r *Reader) ReadBytes(length int, what string) ([]byte, error) {
	buf := make([]byte, length)
	if err := r.SafeReader.ReadAt(buf, r.offset, what); err != nil {
		return nil, err
	}

	r.offset += int64(length)
	return buf, nil
}

// Skip advances the offset by n bytes.
func (r *Reader) Skip(n int64) {
	r.offset += n
}

// Offset returns the current offset.
func (r *Reader) Offset() int64 {
	return r.offset
}
