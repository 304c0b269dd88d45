package document

import (
	"github.com/google/uuid"

	"github.com/loomtext/loom/internal/engine/decoration"
	"github.com/loomtext/loom/internal/event"
)

// Decoration is a tracked range with a stickiness policy. Edits move its
// boundaries; it never absorbs text inserted around it unless the policy
// says so.
type Decoration = decoration.Decoration

// Stickiness controls how a decoration's boundaries react to edits at
// its edges.
type Stickiness = decoration.Stickiness

// Stickiness policies.
const (
	GrowsOnEdit = decoration.GrowsOnEdit
	StaysFixed  = decoration.StaysFixed
)

// AddDecoration registers a decoration over [start, end) and returns its
// ID. The range must lie within the document; start may equal end.
func (d *Document) AddDecoration(start, end ByteOffset, st Stickiness, data any) (uuid.UUID, error) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()
	d.mu.Lock()

	if start < 0 || start > end || end > d.tree.Len() {
		d.mu.Unlock()
		return uuid.UUID{}, ErrInvalidRange
	}
	dec := d.decorations.Add(start, end, st, data)
	version := d.version
	d.mu.Unlock()

	d.notifier.EmitDecorations(event.DecorationsChanged{Version: version, Added: 1})
	return dec.ID, nil
}

// RemoveDecoration deletes a decoration by ID.
func (d *Document) RemoveDecoration(id uuid.UUID) error {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()
	d.mu.Lock()

	if err := d.decorations.Remove(id); err != nil {
		d.mu.Unlock()
		return err
	}
	version := d.version
	d.mu.Unlock()

	d.notifier.EmitDecorations(event.DecorationsChanged{Version: version, Removed: 1})
	return nil
}

// Decoration returns the current state of a decoration.
func (d *Document) Decoration(id uuid.UUID) (Decoration, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	dec, ok := d.decorations.Get(id)
	if !ok {
		return Decoration{}, ErrUnknownDecoration
	}
	return dec, nil
}

// QueryDecorations returns the decorations overlapping [start, end],
// boundaries included, ordered by start offset.
func (d *Document) QueryDecorations(start, end ByteOffset) ([]Decoration, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if start < 0 || start > end || end > d.tree.Len() {
		return nil, ErrInvalidRange
	}
	return d.decorations.QueryRange(start, end), nil
}

// AllDecorations returns every decoration ordered by start offset.
func (d *Document) AllDecorations() []Decoration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.decorations.All()
}

// DecorationCount returns the number of registered decorations.
func (d *Document) DecorationCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.decorations.Len()
}
