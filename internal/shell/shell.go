// Package shell implements a line based interactive shell to inspect and
// edit the loaded image. Errors of a command are printed and the shell
// continues with the next command.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/retroenv/neshexedit/internal/editor"
	"github.com/retroenv/neshexedit/internal/rom"
	"github.com/retroenv/neshexedit/internal/search"
	"github.com/retroenv/neshexedit/internal/writer"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

const maxListedMatches = 16

type command struct {
	usage   string
	help    string
	minArgs int
	rawText bool // the last argument is the unmodified rest of the line
	handler func(s *Shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help": {usage: "help", help: "list all commands", handler: (*Shell).help},
		"open": {usage: "open <file>", help: "load an image", minArgs: 1, handler: (*Shell).open},
		"save": {usage: "save <file>", help: "write the edited image", minArgs: 1, handler: (*Shell).save},
		"info": {usage: "info", help: "show the layout of the loaded image", handler: (*Shell).info},
		"page": {usage: "page [number]", help: "show the current or given page", handler: (*Shell).page},
		"next": {usage: "next", help: "show the next page", handler: (*Shell).next},
		"prev": {usage: "prev", help: "show the previous page", handler: (*Shell).prev},
		"goto": {usage: "goto <address>", help: "show the page of a hex address", minArgs: 1, handler: (*Shell).gotoAddress},
		"find": {usage: "find <hex bytes>", help: "search for a byte sequence", minArgs: 1, handler: (*Shell).find},
		"read": {usage: "read <address>", help: "show the byte at a hex address", minArgs: 1, handler: (*Shell).read},
		"set":  {usage: "set <address> <hex bytes>", help: "replace bytes at a hex address", minArgs: 2, handler: (*Shell).set},
		"cell": {usage: "cell <row> <column> <value>", help: "replace a byte by its position on the current page", minArgs: 3, handler: (*Shell).cell},
		"text": {usage: "text <address> <text>", help: "replace bytes at a hex address with ASCII text", minArgs: 2, rawText: true, handler: (*Shell).text},
		"quit": {usage: "quit", help: "leave the shell"},
		"exit": {usage: "exit", help: "leave the shell"},
	}
}

// Shell reads commands from an input stream and runs them against a session.
type Shell struct {
	logger  *log.Logger
	session *editor.Session
	input   io.Reader
	output  io.Writer
	writer  *writer.Writer

	realInput bool
}

// New returns a shell for the session. A prompt is only printed if the
// input is a terminal.
func New(logger *log.Logger, session *editor.Session, input io.Reader, output io.Writer,
	options writer.Options) *Shell {

	s := &Shell{
		logger:  logger,
		session: session,
		input:   input,
		output:  output,
		writer:  writer.New(output, options),
	}
	if f, ok := input.(*os.File); ok {
		s.realInput = term.IsTerminal(int(f.Fd()))
	}
	return s
}

// Run processes commands until the input ends, a quit command is read or
// the context is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.input)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.realInput {
			s.printf("%s> ", s.promptName())
		}
		if !scanner.Scan() {
			break
		}

		quit, err := s.Execute(scanner.Text())
		if err != nil {
			s.printf("* %s\n", err)
		}
		if quit {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// Execute runs a single command line and returns whether the shell should quit.
func (s *Shell) Execute(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]

	cmd, ok := commands[name]
	if ok && cmd.rawText {
		args = splitRaw(line, cmd.minArgs)
	}
	switch {
	case !ok:
		return false, fmt.Errorf("unknown command '%s', type help for a list of commands", name)
	case cmd.handler == nil:
		return true, nil
	case len(args) < cmd.minArgs:
		return false, fmt.Errorf("usage: %s", cmd.usage)
	}

	s.logger.Debug("Executing command", log.String("command", name), log.Int("args", len(args)))
	return false, cmd.handler(s, args)
}

func (s *Shell) promptName() string {
	if !s.session.Loaded() {
		return "neshexedit"
	}
	return fmt.Sprintf("%d/%d", s.session.PageIndex()+1, s.session.PageCount())
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.output, format, args...)
}

// showPage renders the current page.
func (s *Shell) showPage() error {
	page, err := s.session.CurrentPage()
	if err != nil {
		return err
	}
	buf := s.session.Image().Buffer
	if err := s.writer.WritePageHeader(buf, page); err != nil {
		return err
	}
	return s.writer.WritePage(buf, page)
}

// showRows re-renders the rows that contain the modified range.
func (s *Shell) showRows(offset, length int) error {
	buf := s.session.Image().Buffer
	first := offset - offset%rom.RowSize
	for row := first; row < offset+length; row += rom.RowSize {
		if err := s.writer.WriteRow(buf, row); err != nil {
			return err
		}
	}
	return nil
}

// splitRaw splits the arguments of a command line into at most count
// arguments. Arguments before the last one are separated by whitespace,
// the last one is the remainder of the line after a single separator and
// keeps all its whitespace.
func splitRaw(line string, count int) []string {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)
	rest = skipField(rest) // command name

	var args []string
	for len(args) < count-1 {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			return args
		}
		field := rest
		if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
			field = rest[:i]
		}
		args = append(args, field)
		rest = rest[len(field):]
	}

	_, size := utf8.DecodeRuneInString(rest)
	if rest = rest[size:]; rest != "" {
		args = append(args, rest)
	}
	return args
}

func skipField(s string) string {
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[i:]
	}
	return ""
}

// parsePageNumber parses a 1 based page number as shown to the user.
func parsePageNumber(arg string) (int, error) {
	number, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid page number '%s'", search.ErrInvalidQuery, arg)
	}
	return number - 1, nil
}
