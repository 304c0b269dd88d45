package document

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/loomtext/loom/internal/config"
	"github.com/loomtext/loom/internal/engine/bufpool"
	"github.com/loomtext/loom/internal/engine/decoration"
	"github.com/loomtext/loom/internal/engine/history"
	"github.com/loomtext/loom/internal/engine/piecetree"
	"github.com/loomtext/loom/internal/event"
)

// Option is a functional option for configuring a Document.
type Option func(*settings)

type settings struct {
	cfg    config.Config
	logger *slog.Logger
	now    func() time.Time
}

// WithConfig applies engine settings. Unset fields should come from
// config.Default(), not the zero value.
func WithConfig(cfg config.Config) Option {
	return func(s *settings) {
		s.cfg = cfg
	}
}

// WithLogger sets the logger used at operational seams (compaction).
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the undo-coalescing time source. Tests use this to
// drive the grouping window deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// Document is a text document. All methods are thread-safe.
type Document struct {
	// emitMu sequences mutation+notification pairs, so listeners observe
	// strictly increasing versions and may read the document from inside
	// a callback. Listeners must not edit the document.
	emitMu sync.Mutex

	mu          sync.RWMutex
	pool        *bufpool.Pool
	tree        *piecetree.Tree
	decorations *decoration.Index
	hist        *history.Stack
	notifier    *event.Notifier
	changeLog   *event.Log
	version     int64
	selection   []Range

	autoCompact  bool
	compactRatio float64
}

// New creates an empty document.
func New(opts ...Option) *Document {
	s := settings{cfg: config.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}

	histOpts := []history.Option{
		history.WithMaxEntries(s.cfg.History.MaxEntries),
		history.WithCoalesceWindow(s.cfg.History.Window()),
		history.WithCoalesceLocality(s.cfg.History.GroupingLocality),
	}
	if s.now != nil {
		histOpts = append(histOpts, history.WithClock(s.now))
	}

	pool := bufpool.New(
		bufpool.WithAddBufferLimit(s.cfg.Pool.AddBufferLimit),
		bufpool.WithLogger(s.logger),
	)
	return &Document{
		pool:         pool,
		tree:         piecetree.New(pool),
		decorations:  decoration.NewIndex(),
		hist:         history.New(histOpts...),
		notifier:     event.NewNotifier(),
		changeLog:    event.NewLog(s.cfg.Events.ChangeLogCapacity),
		version:      1,
		autoCompact:  s.cfg.Pool.AutoCompact,
		compactRatio: s.cfg.Pool.CompactionRatio,
	}
}

// FromString creates a document with initial content. Lone CR line
// endings are normalized to LF; CRLF is preserved.
func FromString(text string, opts ...Option) *Document {
	d := New(opts...)
	d.tree = piecetree.FromString(d.pool, normalizeLoneCR(text))
	return d
}

// FromReader creates a document from an io.Reader. All content is read
// first so a CR at a read boundary cannot be mistaken for a lone CR.
func FromReader(r io.Reader, opts ...Option) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return FromString(string(data), opts...), nil
}

// normalizeLoneCR rewrites CR line endings without a following LF to LF.
func normalizeLoneCR(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\r' && (i+1 >= len(s) || s[i+1] != '\n') {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// Read operations

// Text returns the full document content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.Text()
}

// TextRange returns the text in [start, end).
func (d *Document) TextRange(start, end ByteOffset) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if start < 0 || start > end || end > d.tree.Len() {
		return "", ErrInvalidRange
	}
	return d.tree.Slice(start, end), nil
}

// Len returns the total byte length of the document.
func (d *Document) Len() ByteOffset {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.Len()
}

// LineCount returns the number of lines (linefeeds + 1).
func (d *Document) LineCount() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.LineCount()
}

// Line returns the 1-based line's text without its terminator. A
// trailing CR from a CRLF break is stripped.
func (d *Document) Line(line int64) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if line < 1 || line > d.tree.LineCount() {
		return "", ErrInvalidPosition
	}
	return d.tree.Line(line - 1), nil
}

// Version returns the current document version. Versions start at 1 and
// increase by exactly one per successful mutation, no-ops included.
func (d *Document) Version() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Selection returns the current selection ranges.
func (d *Document) Selection() []Range {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Range(nil), d.selection...)
}

// SetSelection records the selection. It feeds the undo snapshots: undo
// restores the selection that was active before the undone change.
func (d *Document) SetSelection(sel []Range) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection = append([]Range(nil), sel...)
}

// Snapshot returns an immutable view of the current content, safe for
// concurrent use while the document keeps changing.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Snapshot{tree: d.tree.Snapshot(), version: d.version}
}

// History and grouping

// CanUndo reports whether an undo step is available.
func (d *Document) CanUndo() bool {
	return d.hist.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (d *Document) CanRedo() bool {
	return d.hist.CanRedo()
}

// BeginGroup starts an explicit undo group: every edit until EndGroup
// undoes as one step.
func (d *Document) BeginGroup(name string) {
	d.hist.BeginGroup(name)
}

// EndGroup closes the current undo group.
func (d *Document) EndGroup() {
	d.hist.EndGroup()
}

// Events

// OnDidChangeContent registers a listener for content changes. Exactly
// one event is delivered per mutation, in version order.
func (d *Document) OnDidChangeContent(fn func(event.ContentChanged)) *event.Subscription {
	return d.notifier.OnContentChanged(fn)
}

// OnDidChangeDecorations registers a listener for decoration changes.
func (d *Document) OnDidChangeDecorations(fn func(event.DecorationsChanged)) *event.Subscription {
	return d.notifier.OnDecorationsChanged(fn)
}

// ChangesSince returns the retained change events newer than version,
// oldest first. ok is false when the log has dropped events the caller
// would need; resynchronize from Text or a Snapshot in that case.
func (d *Document) ChangesSince(version int64) ([]event.ContentChanged, bool) {
	return d.changeLog.Since(version)
}

// Maintenance

// CheckInvariants verifies the piece tree's structural invariants,
// returning ErrCorruption with a diagnostic dump on violation.
func (d *Document) CheckInvariants() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.CheckInvariants()
}

// CompactNow rebuilds storage from live pieces, dropping unreferenced
// bytes. Content and version are unchanged; existing snapshots keep
// reading the old storage.
func (d *Document) CompactNow() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree.Compact()
}

// maybeCompactLocked compacts when occupancy dropped below the
// configured ratio. Caller holds the write lock.
func (d *Document) maybeCompactLocked() {
	if d.autoCompact && d.tree.ShouldCompact(d.compactRatio) {
		d.tree.Compact()
	}
}
