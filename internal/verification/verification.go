// Package verification verifies that a saved image kept the framing of the original file.
package verification

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/neshexedit/internal/header"
	"github.com/retroenv/neshexedit/internal/image"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
	"github.com/retroenv/retrogolib/log"
)

const maxLoggedDiffs = 10

var errMismatch = errors.New("saved image does not match original layout")

// VerifyFile reads the saved file and verifies it against the original data.
func VerifyFile(logger *log.Logger, original []byte, path string) error {
	saved, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading saved file for comparison: %w", err)
	}
	return VerifyOutput(logger, original, saved)
}

// VerifyOutput verifies that the saved image has the same size, header and
// trainer as the original. Payload differences are expected and logged.
func VerifyOutput(logger *log.Logger, original, saved []byte) error {
	hdr, err := header.Parse(original)
	if err != nil {
		return fmt.Errorf("parsing original header: %w", err)
	}

	if len(saved) != hdr.ImageSize() {
		return fmt.Errorf("%w: size %d, expected %d", errMismatch, len(saved), hdr.ImageSize())
	}
	framing := hdr.RomStart()
	if !bytes.Equal(original[:framing], saved[:framing]) {
		diffs := image.Diff(original[:framing], saved[:framing])
		return fmt.Errorf("%w: header or trainer modified at offset %d", errMismatch, diffs[0])
	}

	if err := compareCartridgeDetails(logger, original, saved); err != nil {
		return fmt.Errorf("comparing cartridge details: %w", err)
	}

	diffs := image.Diff(original[framing:hdr.ImageSize()], saved[framing:])
	for i, offset := range diffs {
		if i == maxLoggedDiffs {
			break
		}
		logger.Debug("Payload modified",
			log.Hex("offset", offset),
			log.Hex("original", original[framing+offset]),
			log.Hex("saved", saved[framing+offset]))
	}
	logger.Info("Verification successful", log.Int("modified_bytes", len(diffs)))
	return nil
}

// compareCartridgeDetails decodes both images with an independent cartridge
// parser and checks the fields that an edit of the payload must not change.
func compareCartridgeDetails(logger *log.Logger, original, saved []byte) error {
	cart1, err := cartridge.LoadFile(bytes.NewReader(original))
	if err != nil {
		return fmt.Errorf("loading original cartridge: %w", err)
	}
	cart2, err := cartridge.LoadFile(bytes.NewReader(saved))
	if err != nil {
		return fmt.Errorf("loading saved cartridge: %w", err)
	}

	if len(cart1.PRG) != len(cart2.PRG) {
		return fmt.Errorf("%w: PRG size %d, expected %d", errMismatch, len(cart2.PRG), len(cart1.PRG))
	}
	if len(cart1.CHR) != len(cart2.CHR) {
		return fmt.Errorf("%w: CHR size %d, expected %d", errMismatch, len(cart2.CHR), len(cart1.CHR))
	}
	if !bytes.Equal(cart1.Trainer, cart2.Trainer) {
		return fmt.Errorf("%w: trainer mismatch", errMismatch)
	}
	if cart1.Mapper != cart2.Mapper {
		return fmt.Errorf("%w: mapper mismatch, expected %d but got %d", errMismatch, cart1.Mapper, cart2.Mapper)
	}
	if cart1.Mirror != cart2.Mirror {
		return fmt.Errorf("%w: mirror mismatch, expected %d but got %d", errMismatch, cart1.Mirror, cart2.Mirror)
	}
	if cart1.Battery != cart2.Battery {
		return fmt.Errorf("%w: battery mismatch, expected %d but got %d", errMismatch, cart1.Battery, cart2.Battery)
	}

	logger.Debug("Cartridge details match",
		log.Int("prg_size", len(cart1.PRG)),
		log.Int("chr_size", len(cart1.CHR)),
		log.Uint16("mapper", cart1.Mapper))
	return nil
}
