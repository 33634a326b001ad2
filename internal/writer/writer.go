// Package writer renders pages of the ROM buffer as hex and ASCII rows.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/neshexedit/internal/rom"
)

const (
	asciiFirst = 0x20
	asciiLast  = 0x7E
)

// Writer renders buffer rows to an output stream.
type Writer struct {
	options Options
	writer  io.Writer
}

// Options of the writer.
type Options struct {
	LowerCase    bool // output hex digits in lower case
	NoASCII      bool // omit the ASCII column
	RegionLabels bool // prefix rows with the PRG/CHR region name
}

// New creates a new writer.
func New(writer io.Writer, options Options) *Writer {
	return &Writer{
		options: options,
		writer:  writer,
	}
}

// WritePage writes all rows of the page.
func (w Writer) WritePage(buf *rom.Buffer, page rom.Page) error {
	for _, row := range page.Rows() {
		if err := w.writeRow(buf, row); err != nil {
			return err
		}
	}
	return nil
}

// WriteRow writes only the row that contains the offset, it is used to
// refresh the display after a single byte was modified.
func (w Writer) WriteRow(buf *rom.Buffer, offset int) error {
	index, err := buf.PageOf(offset)
	if err != nil {
		return fmt.Errorf("getting page of offset: %w", err)
	}
	page, err := buf.Page(index)
	if err != nil {
		return fmt.Errorf("getting page: %w", err)
	}
	row, err := page.RowOf(offset)
	if err != nil {
		return fmt.Errorf("getting row: %w", err)
	}
	return w.writeRow(buf, row)
}

// WritePageHeader writes a line describing the page position.
func (w Writer) WritePageHeader(buf *rom.Buffer, page rom.Page) error {
	end := page.Start + len(page.Data) - 1
	if _, err := fmt.Fprintf(w.writer, "; Page %d/%d  $%08X-$%08X\n",
		page.Index+1, buf.PageCount(), page.Start, end); err != nil {
		return fmt.Errorf("writing page header: %w", err)
	}
	return nil
}

// FormatRow formats up to rom.RowSize bytes as "offset: hex-bytes  ascii".
// Short rows are padded so that the ASCII column stays aligned.
func (w Writer) FormatRow(offset int, data []byte) string {
	buf := &strings.Builder{}

	hexFormat := "%02X"
	offsetFormat := "%08X: "
	if w.options.LowerCase {
		hexFormat = "%02x"
		offsetFormat = "%08x: "
	}
	fmt.Fprintf(buf, offsetFormat, offset)

	for i := range rom.RowSize {
		if i > 0 {
			buf.WriteByte(' ')
		}
		if i < len(data) {
			fmt.Fprintf(buf, hexFormat, data[i])
		} else {
			buf.WriteString("  ")
		}
	}

	if w.options.NoASCII {
		return strings.TrimRight(buf.String(), " ")
	}

	buf.WriteString("  ")
	buf.WriteString(ASCII(data))
	return buf.String()
}

// ASCII returns the printable representation of the bytes, bytes outside
// of the printable ASCII range are shown as a dot.
func ASCII(data []byte) string {
	buf := make([]byte, len(data))
	for i, b := range data {
		if b >= asciiFirst && b <= asciiLast {
			buf[i] = b
		} else {
			buf[i] = '.'
		}
	}
	return string(buf)
}

func (w Writer) writeRow(buf *rom.Buffer, row rom.Row) error {
	line := w.FormatRow(row.Offset, row.Data)

	if w.options.RegionLabels {
		region, err := buf.Region(row.Offset)
		if err != nil {
			return fmt.Errorf("getting region: %w", err)
		}
		line = region + " " + line
	}

	if _, err := fmt.Fprintf(w.writer, "%s\n", line); err != nil {
		return fmt.Errorf("writing row: %w", err)
	}
	return nil
}
