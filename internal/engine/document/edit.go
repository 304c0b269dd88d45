package document

import (
	"sort"

	"github.com/google/uuid"

	"github.com/loomtext/loom/internal/engine/decoration"
	"github.com/loomtext/loom/internal/engine/history"
	"github.com/loomtext/loom/internal/event"
)

// ApplyEdits applies a batch of edits atomically. All ranges are
// interpreted against the pre-batch document; they may touch but not
// overlap. The result carries the applied deltas in ascending start
// order and the new version. No-op batches still bump the version and
// emit an event with zero changes.
func (d *Document) ApplyEdits(edits []Edit) (ApplyResult, error) {
	return d.applyBatch(edits, history.KindOther)
}

// Insert inserts text at the byte offset. Sequential Insert calls
// coalesce into a single undo step when they form a typing run.
func (d *Document) Insert(offset ByteOffset, text string) (ApplyResult, error) {
	return d.applyBatch([]Edit{NewInsert(offset, text)}, history.KindInsert)
}

// Delete removes the byte range [start, end). Sequential deletions
// coalesce for undo as a backspace run (each landing where the previous
// one started).
func (d *Document) Delete(start, end ByteOffset) (ApplyResult, error) {
	return d.applyBatch([]Edit{NewDelete(start, end)}, history.KindDeleteBackward)
}

// DeleteForward removes [start, end), coalescing for undo as a
// delete-forward run (repeated deletion at a stationary offset).
func (d *Document) DeleteForward(start, end ByteOffset) (ApplyResult, error) {
	return d.applyBatch([]Edit{NewDelete(start, end)}, history.KindDeleteForward)
}

// Replace substitutes [start, end) with text.
func (d *Document) Replace(start, end ByteOffset, text string) (ApplyResult, error) {
	return d.applyBatch([]Edit{NewEdit(NewRange(start, end), text)}, history.KindOther)
}

// applyBatch validates, applies, records history, adjusts decorations,
// and emits exactly one event.
func (d *Document) applyBatch(edits []Edit, kind history.Kind) (ApplyResult, error) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()
	d.mu.Lock()

	docLen := d.tree.Len()
	for _, e := range edits {
		if e.Range.Start < 0 || e.Range.Start > e.Range.End || e.Range.End > docLen {
			d.mu.Unlock()
			return ApplyResult{}, ErrInvalidRange
		}
	}

	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Range.Start < ordered[j].Range.Start
	})
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Range.End > ordered[i].Range.Start {
			d.mu.Unlock()
			return ApplyResult{}, ErrOverlappingEdits
		}
	}

	deltas := make([]Delta, 0, len(ordered))
	for _, e := range ordered {
		if e.IsNoOp() {
			continue
		}
		deltas = append(deltas, Delta{
			Start:   e.Range.Start,
			End:     e.Range.End,
			NewLen:  int64(len(e.NewText)),
			OldText: d.tree.Slice(e.Range.Start, e.Range.End),
			NewText: e.NewText,
		})
	}

	// Capture the extents of decorations the batch touches; undo
	// restores these exactly, because boundary adjustment inside an
	// edited range is not invertible.
	before := d.affectedDecorations(deltas)

	// Highest offset first, so lower ranges keep their coordinates.
	for i := len(deltas) - 1; i >= 0; i-- {
		d.tree.Replace(deltas[i].Start, deltas[i].End, deltas[i].NewText)
	}

	d.version++
	version := d.version

	shifted := 0
	if len(deltas) > 0 {
		decDeltas := make([]decoration.Delta, len(deltas))
		for i, dl := range deltas {
			decDeltas[i] = decoration.Delta{Start: dl.Start, End: dl.End, NewLen: dl.NewLen}
		}
		shifted = d.decorations.Adjust(decDeltas)
	}

	selBefore := d.selection
	d.selection = mapSelection(d.selection, deltas)

	if len(deltas) > 0 {
		d.hist.Push(d.buildEntry(deltas, before, selBefore, kind))
	}

	d.maybeCompactLocked()

	ev := event.ContentChanged{Version: version, Changes: changesFromDeltas(deltas)}
	d.changeLog.Append(ev)

	var decEv *event.DecorationsChanged
	if shifted > 0 {
		decEv = &event.DecorationsChanged{Version: version, Shifted: shifted}
	}

	d.mu.Unlock()
	d.notifier.EmitContent(ev, decEv)

	return ApplyResult{Version: version, Deltas: deltas}, nil
}

// buildEntry converts applied deltas into a history entry. The redo run
// replays oldest-first with cumulative shifts applied; the inverse run
// replays newest-first in post-batch coordinates. Both are sequential:
// each edit is valid in the state left by the edits before it.
func (d *Document) buildEntry(deltas []Delta, before []history.DecorationState, selBefore []Range, kind history.Kind) history.Entry {
	redo := make([]history.Edit, 0, len(deltas))
	inverse := make([]history.Edit, 0, len(deltas))

	var shift int64
	for _, dl := range deltas {
		post := dl.Start + shift
		redo = append(redo, history.Edit{
			Start: post,
			End:   post + (dl.End - dl.Start),
			Text:  dl.NewText,
		})
		inverse = append(inverse, history.Edit{
			Start: post,
			End:   post + dl.NewLen,
			Text:  dl.OldText,
		})
		shift += dl.Shift()
	}
	for i, j := 0, len(inverse)-1; i < j; i, j = i+1, j-1 {
		inverse[i], inverse[j] = inverse[j], inverse[i]
	}

	after := make([]history.DecorationState, 0, len(before))
	for _, st := range before {
		if dec, ok := d.decorations.Get(st.ID); ok {
			after = append(after, history.DecorationState{ID: dec.ID, Start: dec.Start, End: dec.End})
		}
	}

	return history.Entry{
		Inverse:           inverse,
		Redo:              redo,
		SelectionBefore:   toHistoryRanges(selBefore),
		SelectionAfter:    toHistoryRanges(d.selection),
		DecorationsBefore: before,
		DecorationsAfter:  after,
		Kind:              kind,
	}
}

// affectedDecorations lists, once each, the decorations overlapping any
// edited range.
func (d *Document) affectedDecorations(deltas []Delta) []history.DecorationState {
	if len(deltas) == 0 || d.decorations.Len() == 0 {
		return nil
	}
	var out []history.DecorationState
	seen := make(map[uuid.UUID]struct{})
	for _, dl := range deltas {
		for _, dec := range d.decorations.QueryRange(dl.Start, dl.End) {
			if _, ok := seen[dec.ID]; ok {
				continue
			}
			seen[dec.ID] = struct{}{}
			out = append(out, history.DecorationState{ID: dec.ID, Start: dec.Start, End: dec.End})
		}
	}
	return out
}

// mapSelection carries selection ranges across a batch. Positions inside
// a replaced range land just past the replacement.
func mapSelection(sel []Range, deltas []Delta) []Range {
	if len(sel) == 0 || len(deltas) == 0 {
		return sel
	}
	out := make([]Range, len(sel))
	for i, r := range sel {
		out[i] = Range{Start: mapOffset(r.Start, deltas), End: mapOffset(r.End, deltas)}
		if out[i].End < out[i].Start {
			out[i].End = out[i].Start
		}
	}
	return out
}

func mapOffset(p ByteOffset, deltas []Delta) ByteOffset {
	var shift int64
	for _, dl := range deltas {
		if dl.End <= p {
			shift += dl.Shift()
			continue
		}
		if dl.Start >= p {
			break
		}
		return dl.Start + shift + dl.NewLen
	}
	return p + shift
}

func changesFromDeltas(deltas []Delta) []event.Change {
	if len(deltas) == 0 {
		return nil
	}
	changes := make([]event.Change, len(deltas))
	for i, dl := range deltas {
		changes[i] = event.Change{
			Start:          dl.Start,
			End:            dl.End,
			RangeLength:    dl.End - dl.Start,
			NewText:        dl.NewText,
			NewRangeLength: dl.NewLen,
		}
	}
	return changes
}

func toHistoryRanges(sel []Range) []history.Range {
	if len(sel) == 0 {
		return nil
	}
	out := make([]history.Range, len(sel))
	for i, r := range sel {
		out[i] = history.Range{Start: r.Start, End: r.End}
	}
	return out
}

func fromHistoryRanges(sel []history.Range) []Range {
	if len(sel) == 0 {
		return nil
	}
	out := make([]Range, len(sel))
	for i, r := range sel {
		out[i] = Range{Start: r.Start, End: r.End}
	}
	return out
}
