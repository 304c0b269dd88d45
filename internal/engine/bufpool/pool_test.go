package bufpool

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAppendReturnsStableSpan(t *testing.T) {
	p := New(WithLogger(discardLogger()))

	s := p.Append("hello\nworld")
	if s.Len() != 11 {
		t.Errorf("expected span length 11, got %d", s.Len())
	}
	if s.Newlines() != 1 {
		t.Errorf("expected 1 newline, got %d", s.Newlines())
	}
	if string(s.Data) != "hello\nworld" {
		t.Errorf("unexpected span data %q", s.Data)
	}
	if s.NL[0] != 5 {
		t.Errorf("expected newline at offset 5, got %d", s.NL[0])
	}
}

func TestSpanSurvivesLaterAppends(t *testing.T) {
	p := New(WithLogger(discardLogger()))

	s := p.Append("abc")
	// Force the backing array to grow several times.
	for i := 0; i < 100; i++ {
		p.Append("xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx")
	}

	if string(s.Data) != "abc" {
		t.Errorf("captured span changed after appends: %q", s.Data)
	}
}

func TestAddBufferRollover(t *testing.T) {
	p := New(WithAddBufferLimit(8), WithLogger(discardLogger()))

	a := p.Append("12345678") // fills the first buffer
	b := p.Append("next")     // must start a new one

	if a.BufID == b.BufID {
		t.Errorf("expected rollover to a new buffer, both spans in %d", a.BufID)
	}
	if got := p.Stats().Buffers; got != 2 {
		t.Errorf("expected 2 buffers, got %d", got)
	}
}

func TestAppendNeverSplits(t *testing.T) {
	p := New(WithAddBufferLimit(4), WithLogger(discardLogger()))

	s := p.Append("this text exceeds the limit")
	if string(s.Data) != "this text exceeds the limit" {
		t.Errorf("oversized append was split: %q", s.Data)
	}
}

func TestExtendContiguous(t *testing.T) {
	p := New(WithLogger(discardLogger()))

	s := p.Append("hel")
	ext, ok := p.ExtendContiguous(s, "lo\n")
	if !ok {
		t.Fatal("expected contiguous extension to succeed")
	}
	if string(ext.Data) != "hello\n" {
		t.Errorf("expected %q, got %q", "hello\n", ext.Data)
	}
	if ext.Newlines() != 1 {
		t.Errorf("expected 1 newline, got %d", ext.Newlines())
	}
	if ext.Off != s.Off || ext.BufID != s.BufID {
		t.Error("extension moved the span")
	}
}

func TestExtendContiguousRefusesStaleTail(t *testing.T) {
	p := New(WithLogger(discardLogger()))

	s := p.Append("abc")
	p.Append("def") // tail no longer at s's end

	if _, ok := p.ExtendContiguous(s, "x"); ok {
		t.Error("expected extension to fail after intervening append")
	}
}

func TestReadRange(t *testing.T) {
	p := New(WithLogger(discardLogger()))
	s := p.Append("hello")

	// Walk back to the owning buffer through the pool.
	buf := p.add
	got, err := buf.ReadRange(s.Off, s.Off+s.Len())
	if err != nil {
		t.Fatalf("ReadRange failed: %v", err)
	}
	if got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}

	if _, err := buf.ReadRange(0, 100); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := buf.ReadRange(3, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for inverted range, got %v", err)
	}
}

func TestRebuild(t *testing.T) {
	p := New(WithAddBufferLimit(8), WithLogger(discardLogger()))

	a := p.Append("keep one\n")
	p.Append("dead bytes that nothing references")
	b := p.Append("keep two")

	out := p.Rebuild([]Span{a, b})
	if len(out) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(out))
	}
	if string(out[0].Data) != "keep one\n" || string(out[1].Data) != "keep two" {
		t.Errorf("rebuild changed content: %q, %q", out[0].Data, out[1].Data)
	}
	if out[0].Newlines() != 1 {
		t.Errorf("rebuild lost newline metadata: %d", out[0].Newlines())
	}

	// Old spans stay readable.
	if string(a.Data) != "keep one\n" {
		t.Errorf("old span unreadable after rebuild: %q", a.Data)
	}

	if got := p.Stats().TotalBytes; got != 17 {
		t.Errorf("expected 17 live bytes after rebuild, got %d", got)
	}
}

func TestShouldCompact(t *testing.T) {
	p := New(WithLogger(discardLogger()))
	p.Append("0123456789")

	if p.ShouldCompact(9, 0.5) {
		t.Error("90%% occupancy should not trigger compaction at ratio 0.5")
	}
	if !p.ShouldCompact(4, 0.5) {
		t.Error("40%% occupancy should trigger compaction at ratio 0.5")
	}
	if p.ShouldCompact(1, 0) {
		t.Error("ratio 0 must disable compaction")
	}
}
