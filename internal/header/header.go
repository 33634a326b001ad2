// Package header decodes the iNES and NES 2.0 cartridge header.
package header

import (
	"bytes"
	"errors"
	"fmt"
)

const (
	// Size is the size of the header at the start of every image.
	Size = 16
	// TrainerSize is the size of the optional trainer that follows the header.
	TrainerSize = 512
	// PRGUnit is the size of one PRG ROM unit.
	PRGUnit = 16384
	// CHRUnit is the size of one CHR ROM unit.
	CHRUnit = 8192
)

const (
	flags6Trainer  = 0x04
	flags7Format   = 0x0C
	flags7Extended = 0x08
)

// Magic is the signature that every image starts with.
var Magic = []byte{'N', 'E', 'S', 0x1A}

// ErrFormat is returned for data that is not a valid image.
var ErrFormat = errors.New("invalid image format")

// Info describes the layout of the regions that follow the header.
type Info struct {
	PRGSize     int
	CHRSize     int
	TrainerSize int
	Extended    bool // NES 2.0 size decoding was applied
}

// Parse decodes the header at the start of data.
// Only the region sizes and the trainer flag are interpreted.
func Parse(data []byte) (Info, error) {
	if len(data) < Size {
		return Info{}, fmt.Errorf("%w: %d bytes is too small to be a valid image", ErrFormat, len(data))
	}
	if !bytes.Equal(data[:len(Magic)], Magic) {
		return Info{}, fmt.Errorf("%w: missing NES header signature", ErrFormat)
	}

	prgUnits := int(data[4])
	chrUnits := int(data[5])

	info := Info{
		Extended: data[7]&flags7Format == flags7Extended,
	}
	if info.Extended {
		prgUnits |= int(data[9]&0x0F) << 8
		chrUnits |= int(data[9]>>4) << 8
	}
	if data[6]&flags6Trainer != 0 {
		info.TrainerSize = TrainerSize
	}

	info.PRGSize = prgUnits * PRGUnit
	info.CHRSize = chrUnits * CHRUnit
	return info, nil
}

// RomStart returns the file offset of the first PRG byte.
func (i Info) RomStart() int {
	return Size + i.TrainerSize
}

// PayloadSize returns the combined size of the PRG and CHR regions.
func (i Info) PayloadSize() int {
	return i.PRGSize + i.CHRSize
}

// ImageSize returns the number of bytes that a complete image occupies.
func (i Info) ImageSize() int {
	return i.RomStart() + i.PayloadSize()
}

// Format returns the name of the header revision.
func (i Info) Format() string {
	if i.Extended {
		return "NES 2.0"
	}
	return "iNES"
}
