package event

// Change describes one range replacement inside a batch.
type Change struct {
	// Start and End delimit the replaced range [Start, End).
	Start int64
	End   int64

	// RangeLength is End - Start, the number of bytes removed.
	RangeLength int64

	// NewText is the replacement text; empty for a pure deletion.
	NewText string

	// NewRangeLength is len(NewText), the number of bytes inserted.
	NewRangeLength int64
}

// ContentChanged is emitted once per applied edit batch, undo, or redo.
// For edit batches the changes are in pre-batch coordinates, ascending by
// Start and non-overlapping; for undo and redo they are in application
// order, each valid in the state left by the changes before it. An empty
// Changes slice still carries a version bump (an accepted no-op batch).
type ContentChanged struct {
	// Version is the document version after this batch.
	Version int64

	Changes []Change
}

// DecorationsChanged is emitted when an edit batch moved decoration
// boundaries, or when decorations were added, removed, or restored.
type DecorationsChanged struct {
	// Version is the document version at which the decorations moved.
	Version int64

	// Added and Removed count explicit registrations and removals;
	// Shifted counts boundary moves caused by edits.
	Added   int
	Removed int
	Shifted int
}
