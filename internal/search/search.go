// Package search implements exact byte sequence search over the ROM buffer.
package search

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/retroenv/neshexedit/internal/rom"
)

// ErrInvalidQuery is returned for empty or malformed search patterns.
var ErrInvalidQuery = errors.New("invalid query")

// ParseQuery converts a hex digit string like "DE AD be ef" into bytes.
// Whitespace is ignored, the digit count has to be even.
func ParseQuery(query string) ([]byte, error) {
	normalized := strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, query))

	if normalized == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidQuery)
	}
	if len(normalized)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of hex digits in '%s'", ErrInvalidQuery, query)
	}

	pattern, err := hex.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s' is not a hex string", ErrInvalidQuery, query)
	}
	return pattern, nil
}

// FindAll returns the offsets of all occurrences of pattern in data in
// ascending order. Overlapping occurrences are all returned.
func FindAll(data, pattern []byte) ([]int, error) {
	if len(pattern) == 0 {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidQuery)
	}

	var offsets []int
	for start := 0; start+len(pattern) <= len(data); {
		index := bytes.Index(data[start:], pattern)
		if index < 0 {
			break
		}
		offsets = append(offsets, start+index)
		start += index + 1
	}
	return offsets, nil
}

// Find parses the hex query and searches the buffer for it.
func Find(buf *rom.Buffer, query string) ([]int, error) {
	pattern, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}
	return FindAll(buf.Bytes(), pattern)
}
