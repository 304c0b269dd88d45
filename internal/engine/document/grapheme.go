package document

import "github.com/rivo/uniseg"

// NextGraphemeBoundary returns the smallest grapheme cluster boundary
// strictly after offset, clamped to the document length. An offset in
// the middle of a cluster moves to the cluster's end.
func (d *Document) NextGraphemeBoundary(offset ByteOffset) ByteOffset {
	d.mu.RLock()
	defer d.mu.RUnlock()

	docLen := d.tree.Len()
	if offset >= docLen {
		return docLen
	}
	if offset < 0 {
		offset = 0
	}

	// Clusters never span a completed line: walking the raw line
	// containing the offset is enough. CRLF is itself one cluster and
	// stays inside the raw extent.
	line := d.tree.LineAt(offset)
	start := d.tree.LineStart(line)
	raw := d.tree.Slice(start, d.rawLineEndLocked(line))

	pos := start
	state := -1
	rest := raw
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		pos += int64(len(cluster))
		if pos > offset {
			return pos
		}
	}
	return docLen
}

// PrevGraphemeBoundary returns the largest grapheme cluster boundary
// strictly before offset, clamped to zero.
func (d *Document) PrevGraphemeBoundary(offset ByteOffset) ByteOffset {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if offset <= 0 {
		return 0
	}
	if docLen := d.tree.Len(); offset > docLen {
		offset = docLen
	}

	// The byte just before the offset pins the line; at a line start
	// that byte is the previous line's terminator.
	line := d.tree.LineAt(offset - 1)
	start := d.tree.LineStart(line)
	raw := d.tree.Slice(start, d.rawLineEndLocked(line))

	prev := start
	pos := start
	state := -1
	rest := raw
	for len(rest) > 0 && pos < offset {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		prev = pos
		pos += int64(len(cluster))
	}
	return prev
}

// rawLineEndLocked returns the offset just past the 0-based line,
// terminator included.
func (d *Document) rawLineEndLocked(line int64) ByteOffset {
	if line >= d.tree.LineCount()-1 {
		return d.tree.Len()
	}
	return d.tree.LineStart(line + 1)
}
