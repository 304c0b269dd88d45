package document

import "github.com/loomtext/loom/internal/engine/piecetree"

// Snapshot is an immutable view of the document at a point in time.
// Taking one is O(1); it stays valid and consistent no matter how the
// document changes afterwards, including across compaction. Safe for
// concurrent use from any goroutine.
type Snapshot struct {
	tree    piecetree.Snapshot
	version int64
}

// Version returns the document version the snapshot was taken at.
func (s Snapshot) Version() int64 {
	return s.version
}

// Text returns the full content of the snapshot.
func (s Snapshot) Text() string {
	return s.tree.Text()
}

// Len returns the total byte length.
func (s Snapshot) Len() ByteOffset {
	return s.tree.Len()
}

// LineCount returns the number of lines (linefeeds + 1).
func (s Snapshot) LineCount() int64 {
	return s.tree.LineCount()
}

// Slice returns the text in [start, end), clamped to the document.
func (s Snapshot) Slice(start, end ByteOffset) string {
	return s.tree.Slice(start, end)
}

// Line returns the 1-based line's text without its terminator.
func (s Snapshot) Line(line int64) (string, error) {
	if line < 1 || line > s.tree.LineCount() {
		return "", ErrInvalidPosition
	}
	return s.tree.Line(line - 1), nil
}
