package document

import (
	"fmt"
	"unicode/utf8"
)

// ByteOffset is a byte position in the document, the fundamental position
// type.
type ByteOffset = int64

// Position is a 1-based line/column position. Column counts bytes (UTF-8
// code units) from the start of the line, so Position{1, 1} is offset 0.
type Position struct {
	Line   int64
	Column int64
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	if p.Line != other.Line {
		if p.Line < other.Line {
			return -1
		}
		return 1
	}
	if p.Column != other.Column {
		if p.Column < other.Column {
			return -1
		}
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

// PositionUTF16 is a 1-based line/column position where the column counts
// UTF-16 code units. LSP-style consumers speak this encoding.
type PositionUTF16 struct {
	Line   int64
	Column int64
}

// String returns a human-readable representation of the position.
func (p PositionUTF16) String() string {
	return fmt.Sprintf("(%d:%d utf16)", p.Line, p.Column)
}

// utf16Length counts UTF-16 code units in a string.
func utf16Length(s string) int64 {
	var n int64
	for _, r := range s {
		if r >= 0x10000 {
			n += 2 // surrogate pair
		} else {
			n++
		}
	}
	return n
}

// byteColumnFromUTF16 converts a UTF-16 unit count to a byte offset
// within line. ok is false when the count lands past the line or inside a
// surrogate pair.
func byteColumnFromUTF16(line string, units int64) (int64, bool) {
	var seen int64
	var bytes int64
	for _, r := range line {
		if seen == units {
			return bytes, true
		}
		if r >= 0x10000 {
			seen += 2
			if seen > units {
				return 0, false // between surrogate halves
			}
		} else {
			seen++
		}
		bytes += int64(utf8.RuneLen(r))
	}
	if seen == units {
		return bytes, true
	}
	return 0, false
}
