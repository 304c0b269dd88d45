// Package history tracks undo and redo state for a document.
//
// The stack stores data, not behavior: each entry carries the edits that
// roll a change back and the edits that roll it forward again, plus the
// selection and the decoration extents needed to restore surrounding
// state exactly. The owning document applies those edits through its
// normal edit path, so undo and redo produce change events and version
// bumps like any other edit.
//
// # Coalescing
//
// Consecutive small edits merge into a single entry when they form a
// typing run: same kind, contiguous position, and within the grouping
// window. A pause longer than the window, a cursor jump, or a change of
// kind (typing vs. backspace vs. delete-forward) starts a new entry.
// Coalescing is deterministic; the clock is injectable for tests.
//
// # Grouping
//
// Explicit groups collapse any number of entries into one undo unit:
//
//	stack.BeginGroup("Find and Replace")
//	// ... multiple edits pushed ...
//	stack.EndGroup()
//
// Now all edits undo together with one step.
package history
