// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/retroenv/neshexedit/internal/app"
	"github.com/retroenv/neshexedit/internal/editor"
	"github.com/retroenv/neshexedit/internal/options"
	"github.com/retroenv/neshexedit/internal/search"
	"github.com/retroenv/neshexedit/internal/shell"
	"github.com/retroenv/neshexedit/internal/verification"
	"github.com/retroenv/neshexedit/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// Processor runs the requested queries and edits for input files.
type Processor struct {
	logger *log.Logger
	input  io.Reader // shell input
	output io.Writer
}

// New creates a new file processor.
func New(logger *log.Logger, input io.Reader, output io.Writer) *Processor {
	return &Processor{
		logger: logger,
		input:  input,
		output: output,
	}
}

// ProcessFile handles the complete file processing workflow: load, print
// the requested pages and search results, apply patches, save and verify.
func (p *Processor) ProcessFile(ctx context.Context, opts options.Program) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	session := editor.New()
	if err := session.Open(opts.Input); err != nil {
		return fmt.Errorf("loading image: %w", err)
	}
	app.PrintInfo(p.logger, opts, session.Image())

	w := writer.New(p.output, writer.Options{
		LowerCase:    opts.LowerCase,
		NoASCII:      opts.NoASCII,
		RegionLabels: opts.RegionLabels,
	})

	if err := p.runQueries(session, opts, w); err != nil {
		return err
	}

	if opts.HasEdits() {
		if err := p.applyEdits(session, opts); err != nil {
			return fmt.Errorf("applying edits: %w", err)
		}
		if err := p.save(session, opts); err != nil {
			return err
		}
	}

	if opts.Shell {
		sh := shell.New(p.logger, session, p.input, p.output, writer.Options{
			LowerCase:    opts.LowerCase,
			NoASCII:      opts.NoASCII,
			RegionLabels: opts.RegionLabels,
		})
		if err := sh.Run(ctx); err != nil {
			return fmt.Errorf("running shell: %w", err)
		}
	}
	return nil
}

func (p *Processor) runQueries(session *editor.Session, opts options.Program, w *writer.Writer) error {
	if opts.Find != "" {
		offsets, err := session.Search(opts.Find)
		if err != nil {
			return fmt.Errorf("searching: %w", err)
		}
		p.logger.Info("Search finished", log.String("pattern", opts.Find), log.Int("matches", len(offsets)))
		for _, offset := range offsets {
			if _, err := fmt.Fprintf(p.output, "%08X\n", offset); err != nil {
				return fmt.Errorf("writing search result: %w", err)
			}
		}
	}

	if opts.Goto != "" {
		if _, err := session.Goto(opts.Goto); err != nil {
			return fmt.Errorf("going to address: %w", err)
		}
		if err := p.writeCurrentPage(session, w); err != nil {
			return err
		}
	}

	if opts.Page > 0 {
		if err := session.SetPage(opts.Page - 1); err != nil {
			return fmt.Errorf("selecting page: %w", err)
		}
		if err := p.writeCurrentPage(session, w); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) writeCurrentPage(session *editor.Session, w *writer.Writer) error {
	page, err := session.CurrentPage()
	if err != nil {
		return fmt.Errorf("getting page: %w", err)
	}
	buf := session.Image().Buffer
	if err := w.WritePageHeader(buf, page); err != nil {
		return err
	}
	if err := w.WritePage(buf, page); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	return nil
}

// applyEdits applies all byte patches and text patches in the order given.
func (p *Processor) applyEdits(session *editor.Session, opts options.Program) error {
	for _, patch := range opts.Patches {
		offset, value, err := splitPatch(patch)
		if err != nil {
			return err
		}
		data, err := search.ParseQuery(value)
		if err != nil {
			return fmt.Errorf("parsing patch '%s': %w", patch, err)
		}
		if err := session.SetBytes(offset, data); err != nil {
			return fmt.Errorf("applying patch '%s': %w", patch, err)
		}
		p.logger.Debug("Patched bytes", log.Hex("offset", offset), log.Int("length", len(data)))
	}

	for _, patch := range opts.Texts {
		offset, text, err := splitPatch(patch)
		if err != nil {
			return err
		}
		if err := session.SetText(offset, text); err != nil {
			return fmt.Errorf("applying text patch '%s': %w", patch, err)
		}
		p.logger.Debug("Patched text", log.Hex("offset", offset), log.String("text", text))
	}
	return nil
}

func (p *Processor) save(session *editor.Session, opts options.Program) error {
	output := opts.Output
	if output == "" {
		output = GenerateOutputFilename(opts.Input)
	}

	if err := session.Save(output); err != nil {
		return err
	}
	p.logger.Info("Saved", log.String("file", output))

	if opts.Verify {
		if err := verification.VerifyFile(p.logger, session.Image().Original, output); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
	}
	return nil
}

// splitPatch splits an ADDR=VALUE patch into its parsed address and value.
func splitPatch(patch string) (int, string, error) {
	address, value, ok := strings.Cut(patch, "=")
	if !ok || value == "" {
		return 0, "", fmt.Errorf("%w: patch '%s' is not in ADDR=VALUE format", search.ErrInvalidQuery, patch)
	}
	offset, err := editor.ParseAddress(address)
	if err != nil {
		return 0, "", fmt.Errorf("parsing patch '%s': %w", patch, err)
	}
	return offset, value, nil
}

// GetFilesToProcess returns list of files to process based on options.
// Batch matches that are outputs of an earlier run are skipped.
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		files := matches[:0]
		for _, match := range matches {
			if !isEditedOutput(match) {
				files = append(files, match)
			}
		}
		return files, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates the name of the edited file for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	if ext == "" {
		ext = ".nes"
	}
	return inputFile[:len(inputFile)-len(filepath.Ext(inputFile))] + ".edited" + ext
}

func isEditedOutput(file string) bool {
	name := strings.TrimSuffix(file, filepath.Ext(file))
	return strings.HasSuffix(name, ".edited")
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version string) {
	if opts.Quiet {
		return
	}
	logger.Info("neshexedit - NES ROM hex editor", log.String("version", version))
}
