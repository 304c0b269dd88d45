package piecetree

import (
	"github.com/loomtext/loom/internal/engine/bufpool"
)

// Tree is the mutable handle over the persistent piece tree. It is not
// safe for concurrent use; the owning document serializes access.
type Tree struct {
	pool *bufpool.Pool
	root *node
}

// New creates an empty tree backed by the given pool.
func New(pool *bufpool.Pool) *Tree {
	return &Tree{pool: pool, root: newLeafNode()}
}

// FromString creates a tree holding the initial document content. The
// text is chunked into add-buffer sized pieces so later compaction and
// piece splits work at a uniform grain.
func FromString(pool *bufpool.Pool, text string) *Tree {
	t := New(pool)
	if len(text) == 0 {
		return t
	}

	const chunkSize = bufpool.DefaultAddBufferLimit
	var pieces []piece
	for len(text) > 0 {
		n := chunkSize
		if n > len(text) {
			n = len(text)
		}
		pieces = append(pieces, pieceFromSpan(pool.Append(text[:n])))
		text = text[n:]
	}
	t.root = buildFromPieces(pieces)
	return t
}

// Snapshot returns an immutable view of the current content.
func (t *Tree) Snapshot() Snapshot {
	return Snapshot{root: t.root}
}

// Len returns the total byte length of the document.
func (t *Tree) Len() int64 { return t.Snapshot().Len() }

// LineCount returns the number of lines (linefeeds + 1).
func (t *Tree) LineCount() int64 { return t.Snapshot().LineCount() }

// Text returns the full document content.
func (t *Tree) Text() string { return t.Snapshot().Text() }

// Slice returns the text in [start, end).
func (t *Tree) Slice(start, end int64) string { return t.Snapshot().Slice(start, end) }

// Line returns the 0-based line's text without its terminator.
func (t *Tree) Line(line int64) string { return t.Snapshot().Line(line) }

// LineAt returns the 0-based line containing offset.
func (t *Tree) LineAt(offset int64) int64 { return t.Snapshot().LineAt(offset) }

// LineStart returns the byte offset where the 0-based line begins.
func (t *Tree) LineStart(line int64) int64 { return t.Snapshot().LineStart(line) }

// LineEnd returns the end of the 0-based line, excluding its terminator.
func (t *Tree) LineEnd(line int64) int64 { return t.Snapshot().LineEnd(line) }

// OffsetToPoint converts a byte offset to a 0-based position.
func (t *Tree) OffsetToPoint(offset int64) Point { return t.Snapshot().OffsetToPoint(offset) }

// PointToOffset converts a 0-based position to a byte offset.
func (t *Tree) PointToOffset(p Point) int64 { return t.Snapshot().PointToOffset(p) }

// Insert inserts text at the byte offset. The offset must be in
// [0, Len()]; the caller validates.
func (t *Tree) Insert(offset int64, text string) {
	if len(text) == 0 {
		return
	}
	if offset < 0 {
		offset = 0
	}
	if offset > t.Len() {
		offset = t.Len()
	}

	if t.extendTail(offset, text) {
		return
	}

	p := pieceFromSpan(t.pool.Append(text))
	left, right := t.root.split(offset)
	t.root = concat(concat(left, buildFromPieces([]piece{p})), right)
}

// extendTail grows an existing piece in place when the insertion point is
// exactly at the end of the most recently appended span. This keeps
// sequential typing from creating a node per keystroke.
func (t *Tree) extendTail(offset int64, text string) bool {
	tail, ok := t.root.pieceEndingAt(offset)
	if !ok {
		return false
	}
	extended, ok := t.pool.ExtendContiguous(tail.span(), text)
	if !ok {
		return false
	}
	newRoot, ok := t.root.replacePieceEndingAt(offset, pieceFromSpan(extended))
	if !ok {
		return false
	}
	t.root = newRoot
	return true
}

// Delete removes the byte range [start, end). Whole pieces inside the
// range are dropped; boundary pieces are split, leaving zero, one, or two
// remainders.
func (t *Tree) Delete(start, end int64) {
	if start >= end {
		return
	}
	if start < 0 {
		start = 0
	}
	if end > t.Len() {
		end = t.Len()
	}

	left, rest := t.root.split(start)
	_, right := rest.split(end - start)
	t.root = concat(left, right)
}

// Replace substitutes the byte range [start, end) with text.
func (t *Tree) Replace(start, end int64, text string) {
	t.Delete(start, end)
	t.Insert(start, text)
}

// Compact rebuilds the pool from the live pieces, dropping unreferenced
// bytes, and rewires the tree onto the fresh storage. Must run under the
// document's exclusive lock. Snapshots taken earlier keep reading the old
// storage.
func (t *Tree) Compact() {
	pieces := t.root.appendPieces(nil)
	spans := make([]bufpool.Span, len(pieces))
	for i, p := range pieces {
		spans[i] = p.span()
	}

	fresh := t.pool.Rebuild(spans)
	rebuilt := make([]piece, len(fresh))
	for i, s := range fresh {
		rebuilt[i] = pieceFromSpan(s)
	}
	t.root = buildFromPieces(rebuilt)
}

// LiveBytes returns the number of bytes referenced by live pieces.
func (t *Tree) LiveBytes() int64 {
	return t.Len()
}

// ShouldCompact reports whether pool occupancy has dropped below ratio.
func (t *Tree) ShouldCompact(ratio float64) bool {
	return t.pool.ShouldCompact(t.LiveBytes(), ratio)
}
