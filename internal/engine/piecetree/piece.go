package piecetree

import "github.com/loomtext/loom/internal/engine/bufpool"

// Summary holds the aggregate metrics for a piece or subtree.
type Summary struct {
	Bytes    int64
	Newlines int64
}

// Add combines two summaries.
func (s Summary) Add(other Summary) Summary {
	return Summary{
		Bytes:    s.Bytes + other.Bytes,
		Newlines: s.Newlines + other.Newlines,
	}
}

// piece references a contiguous span of one buffer. The data and nl slice
// headers were captured when the span was created and never change; nl
// holds the absolute buffer offsets of every '\n' in the span.
//
// A piece never spans buffer boundaries and is owned by exactly one leaf.
type piece struct {
	bufID int32
	off   int64
	data  []byte
	nl    []int64
}

func pieceFromSpan(s bufpool.Span) piece {
	return piece{bufID: s.BufID, off: s.Off, data: s.Data, nl: s.NL}
}

func (p piece) span() bufpool.Span {
	return bufpool.Span{BufID: p.bufID, Off: p.off, Data: p.data, NL: p.nl}
}

func (p piece) len() int64 {
	return int64(len(p.data))
}

func (p piece) newlines() int64 {
	return int64(len(p.nl))
}

func (p piece) summary() Summary {
	return Summary{Bytes: p.len(), Newlines: p.newlines()}
}

func (p piece) isEmpty() bool {
	return len(p.data) == 0
}

// split partitions the piece at a relative byte offset. Both halves keep
// subslices of the captured headers, so no copying happens. A split point
// between the CR and LF of a CRLF pair is fine: the '\n' stays with the
// right half and keeps the linefeed count exact.
func (p piece) split(rel int64) (piece, piece) {
	abs := p.off + rel
	idx := searchInt64(p.nl, abs)
	left := piece{
		bufID: p.bufID,
		off:   p.off,
		data:  p.data[:rel:rel],
		nl:    p.nl[:idx:idx],
	}
	right := piece{
		bufID: p.bufID,
		off:   abs,
		data:  p.data[rel:],
		nl:    p.nl[idx:],
	}
	return left, right
}

// newlinesBefore counts '\n' bytes in the piece strictly before the
// relative offset.
func (p piece) newlinesBefore(rel int64) int64 {
	return int64(searchInt64(p.nl, p.off+rel))
}

// newlineAt returns the relative offset of the k-th (0-based) '\n' in the
// piece.
func (p piece) newlineAt(k int64) int64 {
	return p.nl[k] - p.off
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
