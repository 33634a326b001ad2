package rom

import "fmt"

// Page is a view of up to PageSize bytes of the buffer. It shares
// memory with the buffer, writes are visible through it.
type Page struct {
	Index int
	Start int // logical offset of the first byte
	Data  []byte
}

// Row is a view of up to RowSize bytes of a page.
type Row struct {
	Index  int // row index within the page
	Offset int // logical offset of the first byte
	Data   []byte
}

// PageCount returns the number of pages needed to cover the buffer.
func (b *Buffer) PageCount() int {
	return (len(b.data) + PageSize - 1) / PageSize
}

// Page returns the page with the given index.
func (b *Buffer) Page(index int) (Page, error) {
	if index < 0 || index >= b.PageCount() {
		return Page{}, fmt.Errorf("%w: page %d, page count %d", ErrOutOfRange, index, b.PageCount())
	}

	start := index * PageSize
	end := min(start+PageSize, len(b.data))
	return Page{
		Index: index,
		Start: start,
		Data:  b.data[start:end:end],
	}, nil
}

// PageOf returns the index of the page that contains the offset.
func (b *Buffer) PageOf(offset int) (int, error) {
	if err := b.checkRange(offset, 1); err != nil {
		return 0, err
	}
	return offset / PageSize, nil
}

// OffsetAt translates a row and column of a page into a logical offset.
// This is the only mapping that display positions may be converted with.
func (b *Buffer) OffsetAt(page, row, col int) (int, error) {
	if col < 0 || col >= RowSize {
		return 0, fmt.Errorf("%w: column %d", ErrOutOfRange, col)
	}
	if row < 0 || row >= RowsPerPage {
		return 0, fmt.Errorf("%w: row %d", ErrOutOfRange, row)
	}
	if page < 0 || page >= b.PageCount() {
		return 0, fmt.Errorf("%w: page %d, page count %d", ErrOutOfRange, page, b.PageCount())
	}

	offset := page*PageSize + row*RowSize + col
	if err := b.checkRange(offset, 1); err != nil {
		return 0, err
	}
	return offset, nil
}

// Rows splits the page into rows of RowSize bytes, the last row can be shorter.
func (p Page) Rows() []Row {
	rows := make([]Row, 0, (len(p.Data)+RowSize-1)/RowSize)
	for i := 0; i < len(p.Data); i += RowSize {
		end := min(i+RowSize, len(p.Data))
		rows = append(rows, Row{
			Index:  i / RowSize,
			Offset: p.Start + i,
			Data:   p.Data[i:end:end],
		})
	}
	return rows
}

// RowOf returns the row of the page that contains the offset.
func (p Page) RowOf(offset int) (Row, error) {
	if offset < p.Start || offset >= p.Start+len(p.Data) {
		return Row{}, fmt.Errorf("%w: offset $%X is not on page %d", ErrOutOfRange, offset, p.Index)
	}

	index := (offset - p.Start) / RowSize
	start := index * RowSize
	end := min(start+RowSize, len(p.Data))
	return Row{
		Index:  index,
		Offset: p.Start + start,
		Data:   p.Data[start:end:end],
	}, nil
}
