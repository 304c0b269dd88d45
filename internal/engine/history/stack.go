package history

import (
	"errors"
	"sync"
	"time"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Defaults for stack configuration.
const (
	DefaultMaxEntries       = 1000
	DefaultCoalesceWindow   = 750 * time.Millisecond
	DefaultCoalesceLocality = 0
)

// Option is a functional option for configuring a Stack.
type Option func(*Stack)

// WithMaxEntries bounds the undo stack depth.
func WithMaxEntries(n int) Option {
	return func(s *Stack) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithCoalesceWindow sets the maximum pause between edits in a typing run.
// Zero disables coalescing.
func WithCoalesceWindow(d time.Duration) Option {
	return func(s *Stack) {
		if d >= 0 {
			s.window = d
		}
	}
}

// WithCoalesceLocality sets the position gap, in bytes, still treated as a
// continuous typing run.
func WithCoalesceLocality(n int64) Option {
	return func(s *Stack) {
		if n >= 0 {
			s.locality = n
		}
	}
}

// WithClock replaces the time source. Tests use this to drive the
// coalescing window deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Stack) {
		if now != nil {
			s.now = now
		}
	}
}

// Stack manages undo/redo state for a document. Safe for concurrent use.
type Stack struct {
	mu sync.Mutex

	undo []*Entry
	redo []*Entry

	// Grouping state
	grouping   bool
	groupName  string
	groupEntry *Entry

	maxEntries int
	window     time.Duration
	locality   int64
	now        func() time.Time
}

// New creates a stack with the given options.
func New(opts ...Option) *Stack {
	s := &Stack{
		maxEntries: DefaultMaxEntries,
		window:     DefaultCoalesceWindow,
		locality:   DefaultCoalesceLocality,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Push records a completed change. The redo stack is cleared. The entry
// coalesces into the previous one when it continues a typing run; inside a
// group it is folded into the pending group entry instead.
func (s *Stack) Push(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.timestamp = s.now()
	if a, ok := e.anchorFor(); ok {
		e.anchor = a
	} else {
		e.Kind = KindOther
	}

	if s.grouping {
		if s.groupEntry == nil {
			ge := e
			ge.Kind = KindOther
			s.groupEntry = &ge
		} else {
			s.groupEntry.absorb(&e)
		}
		return
	}

	s.redo = nil

	if s.window > 0 && e.Kind != KindOther && len(s.undo) > 0 {
		top := s.undo[len(s.undo)-1]
		if top.Kind == e.Kind &&
			e.timestamp.Sub(top.timestamp) <= s.window &&
			top.continues(&e, s.locality) {
			top.absorb(&e)
			return
		}
	}

	s.pushLocked(&e)
}

// pushLocked appends an entry and enforces the depth bound.
func (s *Stack) pushLocked(e *Entry) {
	s.undo = append(s.undo, e)
	if len(s.undo) > s.maxEntries {
		excess := len(s.undo) - s.maxEntries
		s.undo = s.undo[excess:]
	}
}

// Undo pops the newest entry and moves it to the redo stack. The caller
// applies the entry's Inverse edits and restores DecorationsBefore.
func (s *Stack) Undo() (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grouping {
		return Entry{}, ErrNothingToUndo
	}
	if len(s.undo) == 0 {
		return Entry{}, ErrNothingToUndo
	}

	e := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, e)
	return *e, nil
}

// Redo pops the newest undone entry and moves it back to the undo stack.
// The caller applies the entry's Redo edits and restores DecorationsAfter.
func (s *Stack) Redo() (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grouping {
		return Entry{}, ErrNothingToRedo
	}
	if len(s.redo) == 0 {
		return Entry{}, ErrNothingToRedo
	}

	e := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, e)
	return *e, nil
}

// CanUndo reports whether an undo entry is available.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether a redo entry is available.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// UndoCount returns the number of undo entries available.
func (s *Stack) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo)
}

// RedoCount returns the number of redo entries available.
func (s *Stack) RedoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo)
}

// BeginGroup starts an explicit group. Entries pushed until EndGroup
// collapse into a single undo unit. Nested calls are ignored.
func (s *Stack) BeginGroup(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grouping {
		return
	}
	s.grouping = true
	s.groupName = name
	s.groupEntry = nil
}

// EndGroup finishes the group and pushes the collapsed entry.
func (s *Stack) EndGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.grouping {
		return
	}
	s.grouping = false

	if s.groupEntry == nil {
		return
	}
	s.redo = nil
	s.pushLocked(s.groupEntry)
	s.groupEntry = nil
}

// CancelGroup discards the pending group without recording it.
// Note: edits already applied still affect the document.
func (s *Stack) CancelGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grouping = false
	s.groupEntry = nil
}

// IsGrouping reports whether a group is open.
func (s *Stack) IsGrouping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grouping
}

// Clear removes all undo/redo history.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.undo = nil
	s.redo = nil
	s.grouping = false
	s.groupEntry = nil
}

// UndoInfo lists the undo entries, oldest first.
func (s *Stack) UndoInfo() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]EntryInfo, len(s.undo))
	for i, e := range s.undo {
		out[i] = e.info()
	}
	return out
}

// RedoInfo lists the redo entries, oldest first.
func (s *Stack) RedoInfo() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]EntryInfo, len(s.redo))
	for i, e := range s.redo {
		out[i] = e.info()
	}
	return out
}

// PeekUndo returns info about the next undo entry without removing it.
func (s *Stack) PeekUndo() (EntryInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return EntryInfo{}, false
	}
	return s.undo[len(s.undo)-1].info(), true
}

// PeekRedo returns info about the next redo entry without removing it.
func (s *Stack) PeekRedo() (EntryInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redo) == 0 {
		return EntryInfo{}, false
	}
	return s.redo[len(s.redo)-1].info(), true
}

// SetMaxEntries changes the depth bound, trimming oldest entries if the
// stack is already deeper.
func (s *Stack) SetMaxEntries(n int) {
	if n <= 0 {
		n = DefaultMaxEntries
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.maxEntries = n
	if len(s.undo) > n {
		excess := len(s.undo) - n
		s.undo = s.undo[excess:]
	}
}

// MaxEntries returns the depth bound.
func (s *Stack) MaxEntries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxEntries
}
