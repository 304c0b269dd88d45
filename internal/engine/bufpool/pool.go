package bufpool

import (
	"log/slog"
)

// DefaultAddBufferLimit is the add-buffer size at which the pool rolls
// over to a fresh buffer.
const DefaultAddBufferLimit = 64 * 1024

// Span is a stable reference to a contiguous range of one buffer.
//
// Data and NL are slice headers captured when the span was created.
// Buffer contents are append-only, so the captured headers remain valid
// regardless of later appends or pool compaction. NL holds the absolute
// buffer offsets of every '\n' inside the span.
type Span struct {
	BufID int32
	Off   int64
	Data  []byte
	NL    []int64
}

// Len returns the span length in bytes.
func (s Span) Len() int64 {
	return int64(len(s.Data))
}

// Newlines returns the number of '\n' bytes in the span.
func (s Span) Newlines() int64 {
	return int64(len(s.NL))
}

// Option is a functional option for configuring a Pool.
type Option func(*Pool)

// WithAddBufferLimit sets the size at which the add buffer rolls over.
func WithAddBufferLimit(limit int64) Option {
	return func(p *Pool) {
		if limit > 0 {
			p.limit = limit
		}
	}
}

// WithLogger sets the logger used for compaction reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Pool owns the buffers backing a document. All mutating methods must be
// called under the document's exclusive lock; captured Spans may be read
// without any lock.
type Pool struct {
	limit  int64
	logger *slog.Logger

	bufs   []*Buffer
	add    *Buffer
	nextID int32
}

// New creates an empty pool.
func New(opts ...Option) *Pool {
	p := &Pool{
		limit:  DefaultAddBufferLimit,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.add = p.newBuffer()
	return p
}

func (p *Pool) newBuffer() *Buffer {
	b := &Buffer{id: p.nextID}
	p.nextID++
	p.bufs = append(p.bufs, b)
	return b
}

// Append stores text and returns a span referencing it. A single Append
// never splits across buffers: if the add buffer is already at its limit a
// fresh buffer is started, and oversized texts simply grow that buffer.
func (p *Pool) Append(text string) Span {
	if p.add.Len() >= p.limit && p.add.Len() > 0 {
		p.add = p.newBuffer()
	}
	off := p.add.Len()
	p.add.append(text)
	return p.capture(p.add, off, p.add.Len())
}

// ExtendContiguous grows span in place with text, succeeding only when the
// span ends exactly at the add buffer's current end. This is the tail
// append fast path for sequential typing: the caller keeps one piece
// instead of growing the piece count on every keystroke.
func (p *Pool) ExtendContiguous(span Span, text string) (Span, bool) {
	if span.BufID != p.add.id || span.Off+span.Len() != p.add.Len() {
		return Span{}, false
	}
	p.add.append(text)
	return p.capture(p.add, span.Off, p.add.Len()), true
}

// capture builds a Span with stable slice headers for [start, end).
func (p *Pool) capture(b *Buffer, start, end int64) Span {
	lo, hi := b.newlineRange(start, end)
	return Span{
		BufID: b.id,
		Off:   start,
		Data:  b.data[start:end:end],
		NL:    b.newlines[lo:hi:hi],
	}
}

// Stats describes pool occupancy.
type Stats struct {
	Buffers    int
	TotalBytes int64
}

// Stats returns current pool occupancy.
func (p *Pool) Stats() Stats {
	var total int64
	for _, b := range p.bufs {
		total += b.Len()
	}
	return Stats{Buffers: len(p.bufs), TotalBytes: total}
}

// ShouldCompact reports whether live bytes have dropped below ratio of the
// stored total. ratio is in (0, 1].
func (p *Pool) ShouldCompact(liveBytes int64, ratio float64) bool {
	if ratio <= 0 || ratio > 1 {
		return false
	}
	total := p.Stats().TotalBytes
	if total == 0 {
		return false
	}
	return float64(liveBytes)/float64(total) < ratio
}

// Rebuild copies the given live spans, in order, into fresh buffers and
// drops every old buffer from the pool. It returns replacement spans, one
// per input, referencing the new storage. Old spans stay readable until
// their last holder (snapshots, in-flight readers) is gone; the garbage
// collector reclaims the arrays after that.
//
// Rebuild must run under the document's exclusive lock.
func (p *Pool) Rebuild(spans []Span) []Span {
	before := p.Stats()

	p.bufs = nil
	p.add = p.newBuffer()

	out := make([]Span, len(spans))
	for i, s := range spans {
		if p.add.Len() >= p.limit && p.add.Len() > 0 {
			p.add = p.newBuffer()
		}
		off := p.add.Len()
		p.add.append(string(s.Data))
		out[i] = p.capture(p.add, off, p.add.Len())
	}

	after := p.Stats()
	p.logger.Info("buffer pool compacted",
		"buffers_before", before.Buffers,
		"bytes_before", before.TotalBytes,
		"buffers_after", after.Buffers,
		"bytes_after", after.TotalBytes,
		"reclaimed", before.TotalBytes-after.TotalBytes,
	)
	return out
}
