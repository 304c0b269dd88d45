package decoration

import (
	"errors"
	"sort"

	"github.com/google/uuid"
)

// ErrUnknownDecoration reports an ID the index does not hold.
var ErrUnknownDecoration = errors.New("unknown decoration")

// Index holds a document's decorations. It is not safe for concurrent
// use; the owning document serializes access.
type Index struct {
	root *treapNode
	byID map[uuid.UUID]*Decoration
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{byID: make(map[uuid.UUID]*Decoration)}
}

// Add registers a new decoration over [start, end) and returns it with a
// fresh ID. The caller validates the range against the document.
func (ix *Index) Add(start, end int64, st Stickiness, data any) Decoration {
	dec := &Decoration{
		ID:         uuid.New(),
		Start:      start,
		End:        end,
		Stickiness: st,
		Data:       data,
	}
	ix.byID[dec.ID] = dec
	ix.root = insertNode(ix.root, dec)
	return *dec
}

// Remove deletes the decoration with the given ID.
func (ix *Index) Remove(id uuid.UUID) error {
	dec, ok := ix.byID[id]
	if !ok {
		return ErrUnknownDecoration
	}
	delete(ix.byID, id)
	ix.root = eraseNode(ix.root, dec)
	return nil
}

// Get returns the decoration's current state.
func (ix *Index) Get(id uuid.UUID) (Decoration, bool) {
	dec, ok := ix.byID[id]
	if !ok {
		return Decoration{}, false
	}
	return *dec, true
}

// Len returns the number of decorations held.
func (ix *Index) Len() int {
	return len(ix.byID)
}

// QueryRange returns the decorations overlapping [start, end], inclusive
// at both boundaries, ordered by start offset (ties by ID). Zero-length
// decorations sitting exactly on a boundary are included.
func (ix *Index) QueryRange(start, end int64) []Decoration {
	if end < start {
		return nil
	}
	var out []Decoration
	queryNode(ix.root, start, end, &out)
	return out
}

// All returns every decoration ordered by start offset.
func (ix *Index) All() []Decoration {
	out := make([]Decoration, 0, len(ix.byID))
	walkNode(ix.root, func(d *Decoration) {
		out = append(out, *d)
	})
	return out
}

// Restore forces a decoration back to the given extent, regardless of
// stickiness. Undo uses this to reinstate captured boundaries exactly.
func (ix *Index) Restore(id uuid.UUID, start, end int64) error {
	dec, ok := ix.byID[id]
	if !ok {
		return ErrUnknownDecoration
	}
	if dec.Start == start && dec.End == end {
		return nil
	}
	// Reposition by re-insertion: the jump is not monotone, so an
	// in-place update could break the key order.
	ix.root = eraseNode(ix.root, dec)
	dec.Start = start
	dec.End = end
	ix.root = insertNode(ix.root, dec)
	return nil
}

// Adjust maps every decoration across a batch of applied edits. Deltas
// are processed highest offset first so earlier deltas cannot disturb the
// coordinates later ones were expressed in. It returns the number of
// decoration moves (a decoration moved by two deltas counts twice).
func (ix *Index) Adjust(deltas []Delta) int {
	if len(deltas) == 0 || ix.root == nil {
		return 0
	}
	ordered := make([]Delta, len(deltas))
	copy(ordered, deltas)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Start > ordered[j].Start
	})

	moved := 0
	var touched []*Decoration
	for _, d := range ordered {
		touched = touched[:0]
		collectTouched(ix.root, d, &touched)
		for _, dec := range touched {
			// Erase before mutating: the node is still findable under
			// its old key, and re-insertion restores the key order no
			// matter how the delta reordered equal starts.
			ix.root = eraseNode(ix.root, dec)
			d.apply(dec)
			ix.root = insertNode(ix.root, dec)
			moved++
		}
	}
	return moved
}
