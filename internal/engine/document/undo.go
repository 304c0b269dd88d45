package document

import (
	"github.com/loomtext/loom/internal/engine/decoration"
	"github.com/loomtext/loom/internal/engine/history"
	"github.com/loomtext/loom/internal/event"
)

// Undo reverts the most recent undo step. Content, decoration extents,
// and the selection return to their pre-change state; the version still
// moves forward by one. One event is emitted with the reverting changes
// in application order.
func (d *Document) Undo() (ApplyResult, error) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	entry, err := d.hist.Undo()
	if err != nil {
		return ApplyResult{}, err
	}

	d.mu.Lock()
	deltas, shifted := d.replayLocked(entry.Inverse)
	shifted += d.restoreExtentsLocked(entry.DecorationsBefore)
	d.selection = fromHistoryRanges(entry.SelectionBefore)
	return d.finishReplayLocked(deltas, shifted), nil
}

// Redo reapplies the most recently undone step.
func (d *Document) Redo() (ApplyResult, error) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	entry, err := d.hist.Redo()
	if err != nil {
		return ApplyResult{}, err
	}

	d.mu.Lock()
	deltas, shifted := d.replayLocked(entry.Redo)
	shifted += d.restoreExtentsLocked(entry.DecorationsAfter)
	d.selection = fromHistoryRanges(entry.SelectionAfter)
	return d.finishReplayLocked(deltas, shifted), nil
}

// replayLocked applies a sequential edit run: each edit's offsets are
// valid in the state left by the edits before it. Decorations are
// adjusted per edit for the same reason; the second result counts their
// moves.
func (d *Document) replayLocked(edits []history.Edit) ([]Delta, int) {
	deltas := make([]Delta, 0, len(edits))
	shifted := 0
	for _, e := range edits {
		old := d.tree.Slice(e.Start, e.End)
		d.tree.Replace(e.Start, e.End, e.Text)
		shifted += d.decorations.Adjust([]decoration.Delta{{Start: e.Start, End: e.End, NewLen: int64(len(e.Text))}})
		deltas = append(deltas, Delta{
			Start:   e.Start,
			End:     e.End,
			NewLen:  int64(len(e.Text)),
			OldText: old,
			NewText: e.Text,
		})
	}
	return deltas, shifted
}

// restoreExtentsLocked pins touched decorations back to their captured
// boundaries, since stickiness adjustment inside an edited range is not
// invertible. Unknown IDs are skipped: the decoration was removed after
// the edit.
func (d *Document) restoreExtentsLocked(states []history.DecorationState) int {
	restored := 0
	for _, st := range states {
		dec, ok := d.decorations.Get(st.ID)
		if !ok || (dec.Start == st.Start && dec.End == st.End) {
			continue
		}
		_ = d.decorations.Restore(st.ID, st.Start, st.End)
		restored++
	}
	return restored
}

// finishReplayLocked bumps the version, emits, and releases the write
// lock. Caller holds both emitMu and mu.
func (d *Document) finishReplayLocked(deltas []Delta, shifted int) ApplyResult {
	d.version++
	version := d.version

	d.maybeCompactLocked()

	ev := event.ContentChanged{Version: version, Changes: changesFromDeltas(deltas)}
	d.changeLog.Append(ev)

	var decEv *event.DecorationsChanged
	if shifted > 0 {
		decEv = &event.DecorationsChanged{Version: version, Shifted: shifted}
	}

	d.mu.Unlock()
	d.notifier.EmitContent(ev, decEv)

	return ApplyResult{Version: version, Deltas: deltas}
}
