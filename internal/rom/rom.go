// Package rom implements the mutable, paged PRG+CHR payload buffer of a loaded image.
package rom

import (
	"errors"
	"fmt"

	"github.com/retroenv/neshexedit/internal/header"
)

const (
	// PageSize is the number of bytes in one page.
	PageSize = 4096
	// RowSize is the number of bytes in one display row.
	RowSize = 16
	// RowsPerPage is the number of rows of a full page.
	RowsPerPage = PageSize / RowSize
)

var (
	// ErrTruncated is returned when the declared regions exceed the file length.
	ErrTruncated = errors.New("image file is truncated")
	// ErrOutOfRange is returned for offsets and pages outside of the buffer.
	ErrOutOfRange = errors.New("out of range")
)

// Buffer contains the PRG region directly followed by the CHR region.
// Offsets are logical offsets into this combined region, the header
// and trainer of the source file are not part of it.
type Buffer struct {
	data    []byte
	prgSize int
}

// Load copies the payload described by the header out of the file data.
func Load(data []byte, hdr header.Info) (*Buffer, error) {
	start := hdr.RomStart()
	end := start + hdr.PayloadSize()
	if len(data) < end {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrTruncated, end, len(data))
	}

	b := &Buffer{
		data:    make([]byte, hdr.PayloadSize()),
		prgSize: hdr.PRGSize,
	}
	copy(b.data, data[start:end])
	return b, nil
}

// New returns a buffer holding a copy of the given payload.
// The whole payload is treated as PRG.
func New(data []byte) *Buffer {
	b := &Buffer{
		data:    make([]byte, len(data)),
		prgSize: len(data),
	}
	copy(b.data, data)
	return b
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Read returns the byte at the given offset.
func (b *Buffer) Read(offset int) (byte, error) {
	if err := b.checkRange(offset, 1); err != nil {
		return 0, err
	}
	return b.data[offset], nil
}

// Write replaces the byte at the given offset.
func (b *Buffer) Write(offset int, value byte) error {
	if err := b.checkRange(offset, 1); err != nil {
		return err
	}
	b.data[offset] = value
	return nil
}

// WriteBytes replaces len(data) bytes starting at the given offset.
// The buffer is not modified if any part of the range is out of bounds.
func (b *Buffer) WriteBytes(offset int, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := b.checkRange(offset, len(data)); err != nil {
		return err
	}
	copy(b.data[offset:], data)
	return nil
}

// Bytes returns a copy of the current buffer contents.
func (b *Buffer) Bytes() []byte {
	data := make([]byte, len(b.data))
	copy(data, b.data)
	return data
}

// Region returns the name of the region that contains the offset.
func (b *Buffer) Region(offset int) (string, error) {
	if err := b.checkRange(offset, 1); err != nil {
		return "", err
	}
	if offset < b.prgSize {
		return "PRG", nil
	}
	return "CHR", nil
}

func (b *Buffer) checkRange(offset, length int) error {
	if offset < 0 || offset+length > len(b.data) {
		if length == 1 {
			return fmt.Errorf("%w: offset $%X, buffer size $%X", ErrOutOfRange, offset, len(b.data))
		}
		return fmt.Errorf("%w: offset $%X length %d, buffer size $%X", ErrOutOfRange, offset, length, len(b.data))
	}
	return nil
}
