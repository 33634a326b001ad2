// Package app provides the main application helpers for the editor.
package app

import (
	"github.com/retroenv/neshexedit/internal/loader"
	"github.com/retroenv/neshexedit/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// PrintInfo prints the information about the input file and the layout of the image.
func PrintInfo(logger *log.Logger, opts options.Program, img *loader.Image) {
	if opts.Quiet {
		return
	}

	hdr := img.Header
	logger.Info("Loaded NES ROM",
		log.String("file", opts.Input),
		log.String("format", hdr.Format()),
		log.Int("prg_size", hdr.PRGSize),
		log.Int("chr_size", hdr.CHRSize),
		log.Int("trainer_size", hdr.TrainerSize),
		log.Int("pages", img.Buffer.PageCount()),
	)

	if trailing := len(img.Original) - hdr.ImageSize(); trailing > 0 {
		logger.Warn("File contains data after the CHR region that will not be saved",
			log.Int("bytes", trailing))
	}
}
