package history

import (
	"time"

	"github.com/google/uuid"
)

// Edit is a single range replacement in byte offsets: the text in
// [Start, End) is replaced by Text. Offsets are relative to the document
// state at the moment the edit is applied.
type Edit struct {
	Start int64
	End   int64
	Text  string
}

// Range is a selection span in byte offsets.
type Range struct {
	Start int64
	End   int64
}

// DecorationState records one decoration's extent at a point in time.
type DecorationState struct {
	ID    uuid.UUID
	Start int64
	End   int64
}

// Kind classifies an entry for coalescing. Only insert and the two delete
// kinds participate in typing runs; everything else is KindOther and never
// coalesces.
type Kind int

const (
	KindOther Kind = iota
	KindInsert
	KindDeleteBackward
	KindDeleteForward
)

// Entry is one undoable unit. Inverse edits roll the change back when
// applied in order; Redo edits roll it forward again when applied in
// order. Both sequences are self-consistent: each edit's offsets are valid
// in the document state produced by the edits before it.
type Entry struct {
	Inverse []Edit
	Redo    []Edit

	SelectionBefore []Range
	SelectionAfter  []Range

	// Extents of decorations whose boundaries fell inside the edited
	// ranges, captured before and after the change. Undo restores the
	// before set exactly instead of re-deriving it from deltas.
	DecorationsBefore []DecorationState
	DecorationsAfter  []DecorationState

	Kind Kind

	timestamp time.Time

	// Coalescing anchor: where the typing run currently sits. For inserts
	// this is the end of the inserted text; for backspace the start of the
	// deleted range; for delete-forward the (stationary) deletion point.
	anchor int64
}

// anchorFor computes the coalescing anchor from the entry's single redo
// edit. Entries with zero or multiple edits never coalesce.
func (e *Entry) anchorFor() (int64, bool) {
	if len(e.Redo) != 1 {
		return 0, false
	}
	ed := e.Redo[0]
	switch e.Kind {
	case KindInsert:
		if ed.Start != ed.End {
			return 0, false
		}
		return ed.Start + int64(len(ed.Text)), true
	case KindDeleteBackward, KindDeleteForward:
		if len(ed.Text) != 0 {
			return 0, false
		}
		return ed.Start, true
	default:
		return 0, false
	}
}

// continues reports whether next extends the typing run ending at e,
// tolerating a position gap of at most locality bytes.
func (e *Entry) continues(next *Entry, locality int64) bool {
	if e.Kind != next.Kind || len(next.Redo) != 1 {
		return false
	}
	ed := next.Redo[0]
	var at int64
	switch next.Kind {
	case KindInsert:
		if ed.Start != ed.End {
			return false
		}
		at = ed.Start
	case KindDeleteBackward:
		if len(ed.Text) != 0 {
			return false
		}
		at = ed.End
	case KindDeleteForward:
		if len(ed.Text) != 0 {
			return false
		}
		at = ed.Start
	default:
		return false
	}
	d := at - e.anchor
	if d < 0 {
		d = -d
	}
	return d <= locality
}

// absorb folds next into e. Redo edits replay oldest-first, inverse edits
// newest-first, so concatenation stays exact without any offset algebra.
func (e *Entry) absorb(next *Entry) {
	e.Redo = append(e.Redo, next.Redo...)
	e.Inverse = append(append([]Edit(nil), next.Inverse...), e.Inverse...)
	e.SelectionAfter = next.SelectionAfter
	e.DecorationsBefore = mergeStates(e.DecorationsBefore, next.DecorationsBefore)
	e.DecorationsAfter = mergeStates(next.DecorationsAfter, e.DecorationsAfter)
	e.timestamp = next.timestamp
	if a, ok := next.anchorFor(); ok {
		e.anchor = a
	}
}

// mergeStates keeps every state from primary and adds states from
// secondary whose IDs are not already present.
func mergeStates(primary, secondary []DecorationState) []DecorationState {
	if len(secondary) == 0 {
		return primary
	}
	seen := make(map[uuid.UUID]struct{}, len(primary))
	for _, s := range primary {
		seen[s.ID] = struct{}{}
	}
	out := primary
	for _, s := range secondary {
		if _, ok := seen[s.ID]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// EntryInfo describes a stack entry for UI listings.
type EntryInfo struct {
	Kind      Kind
	Edits     int
	Timestamp time.Time
}

func (e *Entry) info() EntryInfo {
	return EntryInfo{Kind: e.Kind, Edits: len(e.Redo), Timestamp: e.timestamp}
}
