package shell

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/retroenv/neshexedit/internal/editor"
	"github.com/retroenv/neshexedit/internal/search"
	"github.com/retroenv/retrogolib/log"
)

func (s *Shell) help(_ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := commands[name]
		s.printf("  %-30s %s\n", cmd.usage, cmd.help)
	}
	return nil
}

func (s *Shell) open(args []string) error {
	path := strings.Join(args, " ")
	if err := s.session.Open(path); err != nil {
		return fmt.Errorf("failed to load: %w", err)
	}

	hdr := s.session.Image().Header
	s.logger.Info("Loaded",
		log.String("file", path),
		log.Int("prg_size", hdr.PRGSize),
		log.Int("chr_size", hdr.CHRSize))
	return s.showPage()
}

func (s *Shell) save(args []string) error {
	path := strings.Join(args, " ")
	if err := s.session.Save(path); err != nil {
		return err
	}
	s.logger.Info("Saved", log.String("file", path))
	return nil
}

func (s *Shell) info(_ []string) error {
	img := s.session.Image()
	if img == nil {
		return editor.ErrNoImage
	}

	hdr := img.Header
	s.printf("file:    %s\n", s.session.Path())
	s.printf("format:  %s\n", hdr.Format())
	s.printf("trainer: %d bytes\n", hdr.TrainerSize)
	s.printf("PRG:     %d bytes at $%08X\n", hdr.PRGSize, 0)
	s.printf("CHR:     %d bytes at $%08X\n", hdr.CHRSize, hdr.PRGSize)
	s.printf("pages:   %d\n", img.Buffer.PageCount())
	return nil
}

func (s *Shell) page(args []string) error {
	if len(args) > 0 {
		index, err := parsePageNumber(args[0])
		if err != nil {
			return err
		}
		if err := s.session.SetPage(index); err != nil {
			return err
		}
	}
	return s.showPage()
}

func (s *Shell) next(_ []string) error {
	if !s.session.Loaded() {
		return editor.ErrNoImage
	}
	if !s.session.NextPage() {
		return errors.New("already on the last page")
	}
	return s.showPage()
}

func (s *Shell) prev(_ []string) error {
	if !s.session.Loaded() {
		return editor.ErrNoImage
	}
	if !s.session.PrevPage() {
		return errors.New("already on the first page")
	}
	return s.showPage()
}

func (s *Shell) gotoAddress(args []string) error {
	offset, err := s.session.Goto(args[0])
	if err != nil {
		return err
	}
	s.printf("Jumped to address %08X\n", offset)
	return s.showPage()
}

func (s *Shell) find(args []string) error {
	query := strings.Join(args, "")
	offsets, err := s.session.Search(query)
	if err != nil {
		return err
	}
	if len(offsets) == 0 {
		s.printf("No matches for %s\n", strings.ToUpper(query))
		return nil
	}

	s.printf("Found %d matches for %s\n", len(offsets), strings.ToUpper(query))
	for i, offset := range offsets {
		if i == maxListedMatches {
			s.printf("  ...\n")
			break
		}
		s.printf("  %08X\n", offset)
	}
	return s.showPage()
}

func (s *Shell) read(args []string) error {
	offset, err := editor.ParseAddress(args[0])
	if err != nil {
		return err
	}
	value, err := s.session.Read(offset)
	if err != nil {
		return err
	}
	s.printf("%08X: %02X\n", offset, value)
	return nil
}

func (s *Shell) set(args []string) error {
	offset, err := editor.ParseAddress(args[0])
	if err != nil {
		return err
	}
	data, err := search.ParseQuery(strings.Join(args[1:], ""))
	if err != nil {
		return err
	}
	if err := s.session.SetBytes(offset, data); err != nil {
		return err
	}
	return s.showRows(offset, len(data))
}

func (s *Shell) cell(args []string) error {
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: invalid row '%s'", search.ErrInvalidQuery, args[0])
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: invalid column '%s'", search.ErrInvalidQuery, args[1])
	}
	value, err := editor.ParseValue(args[2])
	if err != nil {
		return err
	}

	offset, err := s.session.SetCell(row, col, value)
	if err != nil {
		return err
	}
	return s.showRows(offset, 1)
}

func (s *Shell) text(args []string) error {
	offset, err := editor.ParseAddress(args[0])
	if err != nil {
		return err
	}
	text := args[1]
	if err := s.session.SetText(offset, text); err != nil {
		return err
	}
	return s.showRows(offset, utf8.RuneCountInString(text))
}
