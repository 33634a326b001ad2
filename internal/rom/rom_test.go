package rom

import (
	"errors"
	"testing"

	"github.com/retroenv/neshexedit/internal/header"
	"github.com/retroenv/retrogolib/assert"
)

// buildImage creates an image with a payload of incrementing bytes.
func buildImage(hdr header.Info) []byte {
	data := make([]byte, hdr.ImageSize())
	copy(data, header.Magic)
	for i := hdr.RomStart(); i < len(data); i++ {
		data[i] = byte(i - hdr.RomStart())
	}
	return data
}

func TestLoad(t *testing.T) {
	hdr := header.Info{PRGSize: 2 * header.PRGUnit, CHRSize: header.CHRUnit}
	data := buildImage(hdr)

	buf, err := Load(data, hdr)
	assert.NoError(t, err)
	assert.Equal(t, 40960, buf.Len())
	assert.Equal(t, 10, buf.PageCount())

	page, err := buf.Page(9)
	assert.NoError(t, err)
	assert.Equal(t, PageSize, len(page.Data))
	assert.Equal(t, 9*PageSize, page.Start)

	value, err := buf.Read(0x1234)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x34), value)
}

func TestLoadSkipsTrainer(t *testing.T) {
	hdr := header.Info{PRGSize: header.PRGUnit, TrainerSize: header.TrainerSize}
	data := buildImage(hdr)
	for i := header.Size; i < hdr.RomStart(); i++ {
		data[i] = 0xEE
	}

	buf, err := Load(data, hdr)
	assert.NoError(t, err)
	assert.Equal(t, header.PRGUnit, buf.Len())

	value, err := buf.Read(0)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), value)
}

func TestLoadTruncated(t *testing.T) {
	hdr := header.Info{PRGSize: 2 * header.PRGUnit, CHRSize: header.CHRUnit, TrainerSize: header.TrainerSize}
	data := buildImage(hdr)

	for _, length := range []int{0, header.Size, hdr.RomStart(), len(data) - 1} {
		buf, err := Load(data[:length], hdr)
		assert.True(t, errors.Is(err, ErrTruncated), "length %d", length)
		assert.True(t, buf == nil)
	}
}

func TestLoadCopiesData(t *testing.T) {
	hdr := header.Info{PRGSize: header.PRGUnit}
	data := buildImage(hdr)

	buf, err := Load(data, hdr)
	assert.NoError(t, err)
	assert.NoError(t, buf.Write(0, 0xAA))
	assert.Equal(t, byte(0), data[header.Size])
}

func TestWriteRead(t *testing.T) {
	original := make([]byte, 64)
	for i := range original {
		original[i] = byte(i * 3)
	}

	for _, offset := range []int{0, 1, 31, 63} {
		for _, value := range []byte{0x00, 0x7F, 0x80, 0xFF} {
			buf := New(original)
			assert.NoError(t, buf.Write(offset, value))

			got, err := buf.Read(offset)
			assert.NoError(t, err)
			assert.Equal(t, value, got)

			data := buf.Bytes()
			for i := range data {
				if i != offset {
					assert.Equal(t, original[i], data[i], "offset %d changed", i)
				}
			}
		}
	}
}

func TestOutOfRange(t *testing.T) {
	buf := New(make([]byte, 16))

	_, err := buf.Read(16)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = buf.Read(-1)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	assert.True(t, errors.Is(buf.Write(16, 1), ErrOutOfRange))
	assert.True(t, errors.Is(buf.Write(-1, 1), ErrOutOfRange))

	_, err = New(nil).Read(0)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestWriteBytes(t *testing.T) {
	buf := New(make([]byte, 8))

	assert.NoError(t, buf.WriteBytes(6, []byte{1, 2}))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 2}, buf.Bytes())

	err := buf.WriteBytes(7, []byte{3, 4})
	assert.True(t, errors.Is(err, ErrOutOfRange))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 2}, buf.Bytes())

	assert.NoError(t, buf.WriteBytes(8, nil))
}

func TestRegion(t *testing.T) {
	hdr := header.Info{PRGSize: header.PRGUnit, CHRSize: header.CHRUnit}
	buf, err := Load(buildImage(hdr), hdr)
	assert.NoError(t, err)

	region, err := buf.Region(header.PRGUnit - 1)
	assert.NoError(t, err)
	assert.Equal(t, "PRG", region)

	region, err = buf.Region(header.PRGUnit)
	assert.NoError(t, err)
	assert.Equal(t, "CHR", region)

	_, err = buf.Region(buf.Len())
	assert.True(t, errors.Is(err, ErrOutOfRange))
}
