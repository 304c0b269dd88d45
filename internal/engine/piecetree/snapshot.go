package piecetree

import "strings"

// Snapshot is an immutable view of the tree at a point in time. It shares
// the tree's nodes and the pool's captured spans, so taking one is O(1)
// and it remains valid across any number of later edits or compactions.
// Safe for concurrent use from any goroutine.
type Snapshot struct {
	root *node
}

// Len returns the total byte length of the document.
func (s Snapshot) Len() int64 {
	if s.root == nil {
		return 0
	}
	return s.root.len()
}

// LineCount returns the number of lines (linefeeds + 1).
func (s Snapshot) LineCount() int64 {
	if s.root == nil {
		return 1
	}
	return s.root.summary.Newlines + 1
}

// Text returns the full document as a string.
func (s Snapshot) Text() string {
	if s.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(s.Len()))
	s.root.appendTo(&sb)
	return sb.String()
}

// Slice returns the text in the byte range [start, end). Bounds are
// clamped to the document.
func (s Snapshot) Slice(start, end int64) string {
	if s.root == nil || start >= end {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if end > s.Len() {
		end = s.Len()
	}
	var sb strings.Builder
	sb.Grow(int(end - start))
	s.root.appendRange(&sb, start, end)
	return sb.String()
}

// ByteAt returns the byte at the given offset.
func (s Snapshot) ByteAt(offset int64) (byte, bool) {
	if s.root == nil || offset < 0 || offset >= s.Len() {
		return 0, false
	}
	return s.root.byteAt(offset), true
}

// LineAt returns the 0-based line containing offset. An offset pointing at
// a '\n' belongs to the line that the '\n' terminates.
func (s Snapshot) LineAt(offset int64) int64 {
	if s.root == nil {
		return 0
	}
	if offset < 0 {
		return 0
	}
	if offset > s.Len() {
		offset = s.Len()
	}
	return s.root.newlinesBefore(offset)
}

// LineStart returns the byte offset where the 0-based line begins.
func (s Snapshot) LineStart(line int64) int64 {
	if s.root == nil || line <= 0 {
		return 0
	}
	if line >= s.LineCount() {
		return s.Len()
	}
	return s.root.newlineOffset(line-1) + 1
}

// LineEnd returns the byte offset just past the last content byte of the
// 0-based line, excluding its terminator ('\n' or "\r\n").
func (s Snapshot) LineEnd(line int64) int64 {
	if s.root == nil {
		return 0
	}
	if line >= s.LineCount()-1 {
		return s.Len()
	}
	end := s.root.newlineOffset(line) // offset of the '\n'
	if end > 0 {
		if b, ok := s.ByteAt(end - 1); ok && b == '\r' {
			return end - 1
		}
	}
	return end
}

// Line returns the text of the 0-based line without its terminator. A
// trailing '\r' from a CRLF break is stripped.
func (s Snapshot) Line(line int64) string {
	return s.Slice(s.LineStart(line), s.LineEnd(line))
}

// lineRawEnd returns the offset just past the line including its
// terminator; for the last line this is the document end.
func (s Snapshot) lineRawEnd(line int64) int64 {
	if line >= s.LineCount()-1 {
		return s.Len()
	}
	return s.root.newlineOffset(line) + 1
}

// Point is a 0-based line/column position; column is a byte offset within
// the line.
type Point struct {
	Line   int64
	Column int64
}

// OffsetToPoint converts a byte offset to a 0-based line/column position.
func (s Snapshot) OffsetToPoint(offset int64) Point {
	if offset < 0 {
		offset = 0
	}
	if offset > s.Len() {
		offset = s.Len()
	}
	line := s.LineAt(offset)
	return Point{Line: line, Column: offset - s.LineStart(line)}
}

// PointToOffset converts a 0-based line/column position to a byte offset.
// The column is clamped to the line's raw extent.
func (s Snapshot) PointToOffset(p Point) int64 {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= s.LineCount() {
		return s.Len()
	}
	start := s.LineStart(p.Line)
	end := s.lineRawEnd(p.Line)
	offset := start + p.Column
	if offset < start {
		return start
	}
	if offset > end {
		return end
	}
	return offset
}

// Pieces returns the number of pieces in the snapshot. Useful for tests
// and diagnostics.
func (s Snapshot) Pieces() int {
	if s.root == nil {
		return 0
	}
	return len(s.root.appendPieces(nil))
}
