// Package editor implements an editing session for a single loaded image.
package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/neshexedit/internal/loader"
	"github.com/retroenv/neshexedit/internal/rom"
	"github.com/retroenv/neshexedit/internal/search"
)

// ErrNoImage is returned by operations that require a loaded image.
var ErrNoImage = errors.New("no image loaded")

// Session holds the loaded image and the current page. The zero value
// is not usable, sessions are created with New.
type Session struct {
	loader *loader.Loader
	image  *loader.Image
	path   string
	page   int
}

// New returns an empty session.
func New() *Session {
	return &Session{
		loader: loader.New(),
	}
}

// Open loads the image at the given path and replaces the current one.
// On failure the session is reset to the empty state.
func (s *Session) Open(path string) error {
	img, err := s.loader.Load(path)
	if err != nil {
		s.Reset()
		return err
	}
	s.replace(img, path)
	return nil
}

// OpenBytes loads an image from memory, name is used as its path.
// On failure the session is reset to the empty state.
func (s *Session) OpenBytes(name string, data []byte) error {
	img, err := s.loader.LoadFromBytes(data)
	if err != nil {
		s.Reset()
		return err
	}
	s.replace(img, name)
	return nil
}

// Save writes the current image to the given path.
func (s *Session) Save(path string) error {
	if s.image == nil {
		return ErrNoImage
	}
	if err := s.loader.Save(path, s.image); err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	return nil
}

// Reset discards the loaded image.
func (s *Session) Reset() {
	s.image = nil
	s.path = ""
	s.page = 0
}

// Loaded returns whether an image is loaded.
func (s *Session) Loaded() bool {
	return s.image != nil
}

// Image returns the loaded image or nil.
func (s *Session) Image() *loader.Image {
	return s.image
}

// Path returns the path that the image was loaded from.
func (s *Session) Path() string {
	return s.path
}

// PageIndex returns the index of the current page.
func (s *Session) PageIndex() int {
	return s.page
}

// PageCount returns the number of pages of the loaded image.
func (s *Session) PageCount() int {
	if s.image == nil {
		return 0
	}
	return s.image.Buffer.PageCount()
}

// CurrentPage returns the current page of the loaded image.
func (s *Session) CurrentPage() (rom.Page, error) {
	if s.image == nil {
		return rom.Page{}, ErrNoImage
	}
	return s.image.Buffer.Page(s.page)
}

// SetPage changes the current page.
func (s *Session) SetPage(index int) error {
	if s.image == nil {
		return ErrNoImage
	}
	if _, err := s.image.Buffer.Page(index); err != nil {
		return err
	}
	s.page = index
	return nil
}

// NextPage moves to the next page and returns false if the current page is the last one.
func (s *Session) NextPage() bool {
	if s.page+1 >= s.PageCount() {
		return false
	}
	s.page++
	return true
}

// PrevPage moves to the previous page and returns false if the current page is the first one.
func (s *Session) PrevPage() bool {
	if s.image == nil || s.page == 0 {
		return false
	}
	s.page--
	return true
}

// Goto parses a hex address and moves to the page that contains it.
// The address can be prefixed by $ or 0x.
func (s *Session) Goto(address string) (int, error) {
	if s.image == nil {
		return 0, ErrNoImage
	}

	offset, err := ParseAddress(address)
	if err != nil {
		return 0, err
	}
	page, err := s.image.Buffer.PageOf(offset)
	if err != nil {
		return 0, err
	}
	s.page = page
	return offset, nil
}

// Search returns all offsets that match the hex query and moves to the
// page of the first match.
func (s *Session) Search(query string) ([]int, error) {
	if s.image == nil {
		return nil, ErrNoImage
	}

	offsets, err := search.Find(s.image.Buffer, query)
	if err != nil {
		return nil, err
	}
	if len(offsets) > 0 {
		s.page = offsets[0] / rom.PageSize
	}
	return offsets, nil
}

// Read returns the byte at the given offset.
func (s *Session) Read(offset int) (byte, error) {
	if s.image == nil {
		return 0, ErrNoImage
	}
	return s.image.Buffer.Read(offset)
}

// SetByte replaces the byte at the given offset.
func (s *Session) SetByte(offset int, value byte) error {
	if s.image == nil {
		return ErrNoImage
	}
	return s.image.Buffer.Write(offset, value)
}

// SetBytes replaces the bytes starting at the given offset.
func (s *Session) SetBytes(offset int, data []byte) error {
	if s.image == nil {
		return ErrNoImage
	}
	return s.image.Buffer.WriteBytes(offset, data)
}

// SetCell replaces the byte at the row and column of the current page
// and returns its offset.
func (s *Session) SetCell(row, col int, value byte) (int, error) {
	if s.image == nil {
		return 0, ErrNoImage
	}

	offset, err := s.image.Buffer.OffsetAt(s.page, row, col)
	if err != nil {
		return 0, err
	}
	if err := s.image.Buffer.Write(offset, value); err != nil {
		return 0, err
	}
	return offset, nil
}

// SetText writes the characters of text as bytes starting at the given
// offset. Characters outside of 0-255 are rejected and nothing is written.
func (s *Session) SetText(offset int, text string) error {
	if s.image == nil {
		return ErrNoImage
	}

	data, err := textBytes(text)
	if err != nil {
		return err
	}
	return s.image.Buffer.WriteBytes(offset, data)
}

// ParseAddress parses a hex address with an optional $ or 0x prefix.
func ParseAddress(address string) (int, error) {
	s := strings.TrimSpace(address)
	s = strings.TrimPrefix(s, "$")
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}

	value, err := strconv.ParseUint(s, 16, 31)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid hex address '%s'", search.ErrInvalidQuery, address)
	}
	return int(value), nil
}

// ParseValue parses a hex byte value.
func ParseValue(value string) (byte, error) {
	s := strings.TrimPrefix(strings.TrimSpace(value), "$")
	b, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid byte value '%s'", search.ErrInvalidQuery, value)
	}
	return byte(b), nil
}

func textBytes(text string) ([]byte, error) {
	data := make([]byte, 0, len(text))
	for _, r := range text {
		if r > 0xFF {
			return nil, fmt.Errorf("%w: character '%c' does not fit into a byte", search.ErrInvalidQuery, r)
		}
		data = append(data, byte(r))
	}
	return data, nil
}

func (s *Session) replace(img *loader.Image, path string) {
	s.image = img
	s.path = path
	s.page = 0
}
