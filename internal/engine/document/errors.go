package document

import (
	"errors"

	"github.com/loomtext/loom/internal/engine/decoration"
	"github.com/loomtext/loom/internal/engine/history"
	"github.com/loomtext/loom/internal/engine/piecetree"
)

// Errors returned by document operations.
var (
	// ErrInvalidRange reports an edit or read range outside the document
	// or with Start > End.
	ErrInvalidRange = errors.New("invalid range")

	// ErrOverlappingEdits reports a batch with overlapping ranges.
	// Touching ranges are allowed.
	ErrOverlappingEdits = errors.New("overlapping edits")

	// ErrInvalidPosition reports a line/column outside the document.
	ErrInvalidPosition = errors.New("invalid position")
)

// Re-exported sentinels so callers only import this package.
var (
	ErrUnknownDecoration = decoration.ErrUnknownDecoration
	ErrNothingToUndo     = history.ErrNothingToUndo
	ErrNothingToRedo     = history.ErrNothingToRedo
	ErrCorruption        = piecetree.ErrCorruption
)

// errPastEnd marks the phantom position just past a trailing newline,
// which position conversion accepts at column 1 only.
var errPastEnd = errors.New("past end of document")
