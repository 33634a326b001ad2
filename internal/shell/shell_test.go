package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/neshexedit/internal/editor"
	"github.com/retroenv/neshexedit/internal/header"
	"github.com/retroenv/neshexedit/internal/rom"
	"github.com/retroenv/neshexedit/internal/search"
	"github.com/retroenv/neshexedit/internal/writer"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func writeROM(t *testing.T) string {
	t.Helper()

	data := make([]byte, header.Size+2*header.PRGUnit+header.CHRUnit)
	copy(data, header.Magic)
	data[4] = 2
	data[5] = 1
	copy(data[header.Size+0x5010:], []byte{0xDE, 0xAD, 0xBE, 0xEF})

	path := filepath.Join(t.TempDir(), "game.nes")
	assert.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func runScript(t *testing.T, session *editor.Session, script ...string) string {
	t.Helper()

	out := &bytes.Buffer{}
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	s := New(log.NewTestLogger(t), session, in, out, writer.Options{})
	assert.NoError(t, s.Run(context.Background()))
	return out.String()
}

func TestRunScript(t *testing.T) {
	path := writeROM(t)
	output := filepath.Join(t.TempDir(), "edited.nes")
	session := editor.New()

	out := runScript(t, session,
		"open "+path,
		"find de ad",
		"set 5012 00 11",
		"text 20 HI",
		"save "+output,
		"quit",
		"read 0", // never executed
	)

	assert.Contains(t, out, "; Page 1/10")
	assert.Contains(t, out, "Found 1 matches for DEAD")
	assert.Contains(t, out, "; Page 6/10")
	assert.Contains(t, out, "00005010: DE AD 00 11")
	assert.Contains(t, out, "00000020: 48 49 00")
	assert.False(t, strings.Contains(out, "00000000: 00\n"))

	saved, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0x00, 0x11}, saved[header.Size+0x5010:header.Size+0x5014])
	assert.Equal(t, []byte("HI"), saved[header.Size+0x20:header.Size+0x22])
}

func TestErrorsDoNotStopShell(t *testing.T) {
	path := writeROM(t)
	session := editor.New()

	out := runScript(t, session,
		"read 0",
		"bogus",
		"open "+path,
		"find XYZ",
		"goto FFFFFF",
		"set 9FFF 00 00",
		"cell 0 16 FF",
		"prev",
		"read 5011",
	)

	assert.Contains(t, out, "* "+editor.ErrNoImage.Error())
	assert.Contains(t, out, "* unknown command 'bogus'")
	assert.Contains(t, out, search.ErrInvalidQuery.Error())
	assert.Contains(t, out, rom.ErrOutOfRange.Error())
	assert.Contains(t, out, "* already on the first page")
	assert.Contains(t, out, "00005011: AD")

	value, err := session.Read(0x9FFF)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), value)
}

func TestFailedOpenEmptiesSession(t *testing.T) {
	path := writeROM(t)
	broken := filepath.Join(t.TempDir(), "broken.nes")
	assert.NoError(t, os.WriteFile(broken, []byte("NES"), 0600))

	session := editor.New()
	out := runScript(t, session,
		"open "+path,
		"open "+broken,
	)

	assert.Contains(t, out, "* failed to load")
	assert.False(t, session.Loaded())
}

func TestNavigation(t *testing.T) {
	session := editor.New()
	assert.NoError(t, session.Open(writeROM(t)))

	out := runScript(t, session,
		"next",
		"page 10",
		"next",
		"goto 4000",
		"cell 1 2 7f",
		"info",
		"help",
	)

	assert.Contains(t, out, "; Page 2/10")
	assert.Contains(t, out, "; Page 10/10")
	assert.Contains(t, out, "* already on the last page")
	assert.Contains(t, out, "Jumped to address 00004000")
	assert.Contains(t, out, "00004010: 00 00 7F")
	assert.Contains(t, out, "format:  iNES")
	assert.Contains(t, out, "cell <row> <column> <value>")
	assert.Equal(t, 4, session.PageIndex())
}

func TestExecute(t *testing.T) {
	s := New(log.NewTestLogger(t), editor.New(), strings.NewReader(""), &bytes.Buffer{}, writer.Options{})

	quit, err := s.Execute("   ")
	assert.NoError(t, err)
	assert.False(t, quit)

	quit, err = s.Execute("EXIT")
	assert.NoError(t, err)
	assert.True(t, quit)

	_, err = s.Execute("set 10")
	assert.ErrorContains(t, err, "usage: set")
}

func TestTextKeepsWhitespace(t *testing.T) {
	session := editor.New()
	assert.NoError(t, session.Open(writeROM(t)))
	s := New(log.NewTestLogger(t), session, strings.NewReader(""), &bytes.Buffer{}, writer.Options{})

	_, err := s.Execute("text 20 A  B")
	assert.NoError(t, err)
	_, err = s.Execute("text\t30\t x\ty ")
	assert.NoError(t, err)

	data := session.Image().Buffer.Bytes()
	assert.Equal(t, []byte("A  B\x00"), data[0x20:0x25])
	assert.Equal(t, []byte(" x\ty \x00"), data[0x30:0x36])

	_, err = s.Execute("text 40 ")
	assert.ErrorContains(t, err, "usage: text")
}

func TestSplitRaw(t *testing.T) {
	tests := []struct {
		line     string
		expected []string
	}{
		{"text 20 A  B", []string{"20", "A  B"}},
		{"  text   20   lead", []string{"20", "  lead"}},
		{"text 20", []string{"20"}},
		{"text", nil},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, splitRaw(test.line, 2))
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(log.NewTestLogger(t), editor.New(), strings.NewReader("help\n"), &bytes.Buffer{}, writer.Options{})
	err := s.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
