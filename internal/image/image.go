// Package image rebuilds a complete cartridge image from the original
// framing bytes and the current payload buffer.
package image

import (
	"fmt"

	"github.com/retroenv/neshexedit/internal/header"
	"github.com/retroenv/neshexedit/internal/rom"
)

// Rebuild returns the header and trainer bytes of the original file
// followed by the current buffer contents. The original has to be the
// data that the buffer was loaded from, this is not verified.
func Rebuild(original []byte, hdr header.Info, buf *rom.Buffer) ([]byte, error) {
	start := hdr.RomStart()
	if len(original) < start {
		return nil, fmt.Errorf("%w: original has %d bytes, framing needs %d", rom.ErrTruncated, len(original), start)
	}

	output := make([]byte, start, start+buf.Len())
	copy(output, original[:start])
	output = append(output, buf.Bytes()...)
	return output, nil
}

// Diff returns the offsets at which a and b differ. Bytes beyond the end
// of the shorter slice are reported as differing.
func Diff(a, b []byte) []int {
	var offsets []int
	for i := range max(len(a), len(b)) {
		if i >= len(a) || i >= len(b) || a[i] != b[i] {
			offsets = append(offsets, i)
		}
	}
	return offsets
}
