package verification

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/neshexedit/internal/header"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func buildROM() []byte {
	data := make([]byte, header.Size+header.PRGUnit+header.CHRUnit)
	copy(data, header.Magic)
	data[4] = 1
	data[5] = 1
	data[6] = 0x01 // vertical mirroring
	for i := header.Size; i < len(data); i++ {
		data[i] = byte(i)
	}
	return data
}

func TestVerifyOutput(t *testing.T) {
	logger := log.NewTestLogger(t)

	tests := []struct {
		name    string
		modify  func([]byte) []byte
		wantErr bool
	}{
		{
			name:   "unmodified",
			modify: func(b []byte) []byte { return b },
		},
		{
			name: "payload edits",
			modify: func(b []byte) []byte {
				b[header.Size] = 0xEA
				b[len(b)-1] = 0x00
				return b
			},
		},
		{
			name: "header modified",
			modify: func(b []byte) []byte {
				b[6] = 0x00
				return b
			},
			wantErr: true,
		},
		{
			name:    "shortened",
			modify:  func(b []byte) []byte { return b[:len(b)-1] },
			wantErr: true,
		},
		{
			name:    "extended",
			modify:  func(b []byte) []byte { return append(b, 0) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := buildROM()
			saved := tt.modify(buildROM())

			err := VerifyOutput(logger, original, saved)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifyFile(t *testing.T) {
	logger := log.NewTestLogger(t)
	original := buildROM()

	path := filepath.Join(t.TempDir(), "saved.nes")
	assert.NoError(t, os.WriteFile(path, original, 0600))
	assert.NoError(t, VerifyFile(logger, original, path))

	assert.Error(t, VerifyFile(logger, original, filepath.Join(t.TempDir(), "missing.nes")))
}
