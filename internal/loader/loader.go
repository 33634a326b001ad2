// Package loader handles loading and saving of cartridge image files.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/neshexedit/internal/header"
	"github.com/retroenv/neshexedit/internal/image"
	"github.com/retroenv/neshexedit/internal/rom"
)

// ErrIO is returned for failures of the underlying file system.
var ErrIO = errors.New("i/o error")

// Image is a loaded cartridge image. Original keeps the exact file data
// that was loaded, it provides the header and trainer bytes on save.
type Image struct {
	Header   header.Info
	Buffer   *rom.Buffer
	Original []byte
}

// Loader handles loading cartridge files from disk.
type Loader struct{}

// New creates a new cartridge loader.
func New() *Loader {
	return &Loader{}
}

// Load reads and parses the cartridge file at the given path.
func (l *Loader) Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading file %s: %w", ErrIO, path, err)
	}

	img, err := l.LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return img, nil
}

// LoadFromBytes parses cartridge data that is already in memory.
// The data is retained as the original framing source and must not be
// modified by the caller afterwards.
func (l *Loader) LoadFromBytes(data []byte) (*Image, error) {
	hdr, err := header.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}

	buf, err := rom.Load(data, hdr)
	if err != nil {
		return nil, fmt.Errorf("loading payload: %w", err)
	}

	return &Image{
		Header:   hdr,
		Buffer:   buf,
		Original: data,
	}, nil
}

// Save rebuilds the image and replaces the file at the given path with it.
// The data is written to a temporary file in the same directory first and
// renamed afterwards, the destination never contains a partial image.
func (l *Loader) Save(path string, img *Image) error {
	data, err := image.Rebuild(img.Original, img.Header, img.Buffer)
	if err != nil {
		return fmt.Errorf("rebuilding image: %w", err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("%w: writing file %s: %w", ErrIO, path, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	file, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(file.Name())
		}
	}()

	if _, err = file.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = file.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(file.Name(), fileMode(path)); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err = os.Rename(file.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// fileMode returns the permissions of an existing destination file so that
// replacing it keeps them, new files are created world readable.
func fileMode(path string) os.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return 0o644
	}
	return info.Mode().Perm()
}
