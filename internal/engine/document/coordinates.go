package document

// OffsetToPosition converts a byte offset to a 1-based line and byte
// column. Offset Len() maps to the position just past the last byte.
func (d *Document) OffsetToPosition(offset ByteOffset) (Position, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if offset < 0 || offset > d.tree.Len() {
		return Position{}, ErrInvalidPosition
	}
	line := d.tree.LineAt(offset)
	return Position{Line: line + 1, Column: offset - d.tree.LineStart(line) + 1}, nil
}

// PositionToOffset converts a 1-based line/byte-column position to a
// byte offset. The column may point one past the line's raw extent,
// terminator included; as a convenience, (LineCount()+1, 1) maps to
// Len() so the position just past a trailing newline round-trips.
func (d *Document) PositionToOffset(p Position) (ByteOffset, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start, rawEnd, err := d.lineExtentLocked(p.Line)
	if err != nil {
		if err == errPastEnd && p.Column == 1 {
			return d.tree.Len(), nil
		}
		return 0, ErrInvalidPosition
	}
	if p.Column < 1 || start+p.Column-1 > rawEnd {
		return 0, ErrInvalidPosition
	}
	return start + p.Column - 1, nil
}

// LineAtOffset returns the 1-based line containing the byte offset. An
// offset pointing at a linefeed belongs to the line it terminates;
// offset Len() belongs to the last line.
func (d *Document) LineAtOffset(offset ByteOffset) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if offset < 0 || offset > d.tree.Len() {
		return 0, ErrInvalidPosition
	}
	return d.tree.LineAt(offset) + 1, nil
}

// OffsetAtLine returns the byte offset where the 1-based line begins.
func (d *Document) OffsetAtLine(line int64) (ByteOffset, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if line < 1 || line > d.tree.LineCount() {
		return 0, ErrInvalidPosition
	}
	return d.tree.LineStart(line - 1), nil
}

// OffsetToPositionUTF16 converts a byte offset to a 1-based line and
// UTF-16 code-unit column, the coordinate space of LSP and similar
// protocols.
func (d *Document) OffsetToPositionUTF16(offset ByteOffset) (PositionUTF16, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if offset < 0 || offset > d.tree.Len() {
		return PositionUTF16{}, ErrInvalidPosition
	}
	line := d.tree.LineAt(offset)
	prefix := d.tree.Slice(d.tree.LineStart(line), offset)
	return PositionUTF16{Line: line + 1, Column: utf16Length(prefix) + 1}, nil
}

// PositionUTF16ToOffset converts a 1-based line/UTF-16-column position
// to a byte offset. Columns inside a surrogate pair or past the line's
// raw extent are rejected.
func (d *Document) PositionUTF16ToOffset(p PositionUTF16) (ByteOffset, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start, rawEnd, err := d.lineExtentLocked(p.Line)
	if err != nil {
		if err == errPastEnd && p.Column == 1 {
			return d.tree.Len(), nil
		}
		return 0, ErrInvalidPosition
	}
	if p.Column < 1 {
		return 0, ErrInvalidPosition
	}
	col, ok := byteColumnFromUTF16(d.tree.Slice(start, rawEnd), p.Column-1)
	if !ok {
		return 0, ErrInvalidPosition
	}
	return start + col, nil
}

// lineExtentLocked returns the raw extent of a 1-based line, terminator
// included. errPastEnd marks the phantom line just past a trailing
// newline.
func (d *Document) lineExtentLocked(line int64) (start, rawEnd ByteOffset, err error) {
	count := d.tree.LineCount()
	if line == count+1 {
		return 0, 0, errPastEnd
	}
	if line < 1 || line > count {
		return 0, 0, ErrInvalidPosition
	}
	start = d.tree.LineStart(line - 1)
	if line >= count {
		rawEnd = d.tree.Len()
	} else {
		rawEnd = d.tree.LineStart(line)
	}
	return start, rawEnd, nil
}
