package bufpool

import "errors"

// ErrOutOfRange is returned when a read exceeds a buffer's bounds.
var ErrOutOfRange = errors.New("buffer offset out of range")

// Buffer is an append-only chunk of raw text. Existing bytes are never
// modified; "deleting" text means pieces stop referencing it.
type Buffer struct {
	id       int32
	data     []byte
	newlines []int64 // offsets of every '\n' in data, ascending
}

// ID returns the buffer's identity within its pool.
func (b *Buffer) ID() int32 {
	return b.id
}

// Len returns the number of bytes currently stored.
func (b *Buffer) Len() int64 {
	return int64(len(b.data))
}

// ReadRange returns the text in [start, end).
func (b *Buffer) ReadRange(start, end int64) (string, error) {
	if start < 0 || start > end || end > b.Len() {
		return "", ErrOutOfRange
	}
	return string(b.data[start:end]), nil
}

// append adds text, recording newline offsets as they arrive.
func (b *Buffer) append(text string) {
	base := int64(len(b.data))
	b.data = append(b.data, text...)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			b.newlines = append(b.newlines, base+int64(i))
		}
	}
}

// newlineRange returns the index bounds [lo, hi) into the newline table
// covering newlines in [start, end).
func (b *Buffer) newlineRange(start, end int64) (int, int) {
	lo := searchInt64(b.newlines, start)
	hi := searchInt64(b.newlines, end)
	return lo, hi
}

// searchInt64 returns the smallest index i with s[i] >= v.
func searchInt64(s []int64, v int64) int {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if s[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
