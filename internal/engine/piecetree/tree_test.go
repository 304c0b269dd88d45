package piecetree

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/loomtext/loom/internal/engine/bufpool"
)

func newTestPool(opts ...bufpool.Option) *bufpool.Pool {
	opts = append(opts, bufpool.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return bufpool.New(opts...)
}

func newTestTree(text string) *Tree {
	return FromString(newTestPool(), text)
}

func TestEmptyTree(t *testing.T) {
	tr := New(newTestPool())

	if tr.Len() != 0 {
		t.Errorf("expected length 0, got %d", tr.Len())
	}
	if tr.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", tr.LineCount())
	}
	if tr.Text() != "" {
		t.Errorf("expected empty text, got %q", tr.Text())
	}
}

func TestFromString(t *testing.T) {
	tr := newTestTree("hello\nworld")

	if tr.Len() != 11 {
		t.Errorf("expected length 11, got %d", tr.Len())
	}
	if tr.LineCount() != 2 {
		t.Errorf("expected 2 lines, got %d", tr.LineCount())
	}
	if tr.Text() != "hello\nworld" {
		t.Errorf("unexpected text %q", tr.Text())
	}
}

func TestInsertSplitsPiece(t *testing.T) {
	tr := newTestTree("helloworld")
	tr.Insert(5, ", ")

	if tr.Text() != "hello, world" {
		t.Errorf("expected %q, got %q", "hello, world", tr.Text())
	}
	if err := tr.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestInsertAtEnds(t *testing.T) {
	tr := newTestTree("middle")
	tr.Insert(0, "start ")
	tr.Insert(tr.Len(), " end")

	if tr.Text() != "start middle end" {
		t.Errorf("got %q", tr.Text())
	}
}

func TestSequentialTypingExtendsTail(t *testing.T) {
	tr := New(newTestPool())

	for _, ch := range []string{"h", "e", "l", "l", "o"} {
		tr.Insert(tr.Len(), ch)
	}

	if tr.Text() != "hello" {
		t.Fatalf("got %q", tr.Text())
	}
	if got := tr.Snapshot().Pieces(); got != 1 {
		t.Errorf("sequential typing should keep 1 piece, got %d", got)
	}
}

func TestTypingAfterJumpStartsNewPiece(t *testing.T) {
	tr := newTestTree("abcdef")
	tr.Insert(3, "x") // mid-document insert splits
	tr.Insert(4, "y") // continues typing right after: extends the x piece

	if tr.Text() != "abcxydef" {
		t.Fatalf("got %q", tr.Text())
	}
	if got := tr.Snapshot().Pieces(); got != 3 {
		t.Errorf("expected 3 pieces (split + typed run), got %d", got)
	}
}

func TestDeleteWithinPiece(t *testing.T) {
	tr := newTestTree("hello, world")
	tr.Delete(5, 7)

	if tr.Text() != "helloworld" {
		t.Errorf("got %q", tr.Text())
	}
	if err := tr.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteAcrossPieces(t *testing.T) {
	// Front inserts cannot ride the tail fast path, so each one is its
	// own piece.
	tr := newTestTree("ccc")
	tr.Insert(0, "bbb")
	tr.Insert(0, "aaa")

	tr.Delete(2, 7) // trims the first piece, drops the middle, trims the last

	if tr.Text() != "aacc" {
		t.Errorf("got %q", tr.Text())
	}
	if err := tr.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteAll(t *testing.T) {
	tr := newTestTree("goodbye")
	tr.Delete(0, tr.Len())

	if tr.Len() != 0 {
		t.Errorf("expected empty tree, got %q", tr.Text())
	}
	if tr.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", tr.LineCount())
	}
}

func TestReplace(t *testing.T) {
	tr := newTestTree("hello world")
	tr.Replace(6, 11, "there")

	if tr.Text() != "hello there" {
		t.Errorf("got %q", tr.Text())
	}
}

func TestSlice(t *testing.T) {
	tr := newTestTree("the quick brown fox")

	if got := tr.Slice(4, 9); got != "quick" {
		t.Errorf("expected %q, got %q", "quick", got)
	}
	if got := tr.Slice(0, tr.Len()); got != "the quick brown fox" {
		t.Errorf("full slice mismatch: %q", got)
	}
	if got := tr.Slice(9, 4); got != "" {
		t.Errorf("inverted slice should be empty, got %q", got)
	}
}

func TestLineQueries(t *testing.T) {
	tr := newTestTree("line1\nline2\nline3")

	if tr.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", tr.LineCount())
	}

	// 0-based equivalents of the 1-based scenarios: offset 6 is on the
	// second line; the third line starts at offset 12.
	if got := tr.LineAt(6); got != 1 {
		t.Errorf("LineAt(6) = %d, want 1", got)
	}
	if got := tr.LineStart(2); got != 12 {
		t.Errorf("LineStart(2) = %d, want 12", got)
	}

	for i, want := range []string{"line1", "line2", "line3"} {
		if got := tr.Line(int64(i)); got != want {
			t.Errorf("Line(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestLineQueriesAfterEdits(t *testing.T) {
	tr := newTestTree("a\nb\nc")
	tr.Insert(2, "x\ny\n") // "a\nx\ny\nb\nc"

	if tr.LineCount() != 5 {
		t.Fatalf("expected 5 lines, got %d", tr.LineCount())
	}
	want := []string{"a", "x", "y", "b", "c"}
	for i, w := range want {
		if got := tr.Line(int64(i)); got != w {
			t.Errorf("Line(%d) = %q, want %q", i, got, w)
		}
	}

	tr.Delete(2, 6) // back to "a\nb\nc"
	if tr.LineCount() != 3 {
		t.Errorf("expected 3 lines after delete, got %d", tr.LineCount())
	}
}

func TestCRLFCountsOnce(t *testing.T) {
	tr := newTestTree("one\r\ntwo\r\nthree")

	if tr.LineCount() != 3 {
		t.Errorf("expected 3 lines, got %d", tr.LineCount())
	}
	if got := tr.Line(0); got != "one" {
		t.Errorf("Line(0) = %q, want %q (trailing CR stripped)", got, "one")
	}
	if got := tr.Line(1); got != "two" {
		t.Errorf("Line(1) = %q, want %q", got, "two")
	}
}

func TestSplitBetweenCRAndLF(t *testing.T) {
	tr := newTestTree("ab\r\ncd")

	// Split the CRLF by inserting between CR and LF, then undo it by
	// deleting; the line accounting must stay exact throughout.
	tr.Insert(3, "X") // "ab\rX\ncd"
	if tr.LineCount() != 2 {
		t.Errorf("after split insert: expected 2 lines, got %d", tr.LineCount())
	}
	tr.Delete(3, 4) // back to "ab\r\ncd"
	if tr.LineCount() != 2 {
		t.Errorf("after rejoin: expected 2 lines, got %d", tr.LineCount())
	}
	if tr.Text() != "ab\r\ncd" {
		t.Errorf("got %q", tr.Text())
	}
	if err := tr.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteRejoinsCRLFAcrossPieces(t *testing.T) {
	tr := newTestTree("ab\rXY\ncd")
	tr.Delete(3, 5) // "ab\r\ncd": CR and LF now live in different pieces

	if tr.Text() != "ab\r\ncd" {
		t.Fatalf("got %q", tr.Text())
	}
	// One break, not two: the linefeed count must not double-count.
	if tr.LineCount() != 2 {
		t.Errorf("expected 2 lines, got %d", tr.LineCount())
	}
	if got := tr.Line(0); got != "ab" {
		t.Errorf("Line(0) = %q, want %q", got, "ab")
	}
}

func TestPointRoundTrip(t *testing.T) {
	texts := []string{
		"hello\nworld",
		"one\r\ntwo\nthree\r\n",
		"no newline",
		"",
		"\n\n\n",
		"日本語\nメモ\n",
	}
	for _, text := range texts {
		tr := newTestTree(text)
		for o := int64(0); o <= tr.Len(); o++ {
			p := tr.OffsetToPoint(o)
			if back := tr.PointToOffset(p); back != o {
				t.Errorf("text %q: offset %d -> %+v -> %d", text, o, p, back)
			}
		}
	}
}

func TestSnapshotIsStable(t *testing.T) {
	tr := newTestTree("before")
	snap := tr.Snapshot()

	tr.Replace(0, tr.Len(), "after")
	tr.Compact()

	if snap.Text() != "before" {
		t.Errorf("snapshot changed: %q", snap.Text())
	}
	if tr.Text() != "after" {
		t.Errorf("tree content wrong: %q", tr.Text())
	}
}

func TestSnapshotConcurrentWithWriter(t *testing.T) {
	tr := newTestTree(strings.Repeat("line\n", 100))
	snap := tr.Snapshot()
	want := snap.Text()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			if snap.Text() != want {
				t.Error("snapshot content changed under concurrent writer")
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		tr.Insert(tr.Len(), "more\n")
	}
	<-done
}

func TestCompactReclaims(t *testing.T) {
	pool := newTestPool(bufpool.WithAddBufferLimit(16))
	tr := FromString(pool, "0123456789abcdef0123456789abcdef")
	tr.Delete(4, 28)

	want := tr.Text()
	if !tr.ShouldCompact(0.5) {
		t.Fatal("expected compaction to be due")
	}
	tr.Compact()

	if tr.Text() != want {
		t.Errorf("compaction changed content: %q != %q", tr.Text(), want)
	}
	if got := pool.Stats().TotalBytes; got != int64(len(want)) {
		t.Errorf("expected %d live bytes after compaction, got %d", len(want), got)
	}
	if err := tr.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestManyEditsStayBalanced(t *testing.T) {
	tr := New(newTestPool())

	// Alternate front and back inserts so the tail fast path cannot absorb
	// them all.
	for i := 0; i < 500; i++ {
		tr.Insert(0, "a")
		tr.Insert(tr.Len(), "b\n")
		tr.Delete(1, 2)
	}
	if err := tr.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestCheckInvariantsDetectsDamage(t *testing.T) {
	tr := newTestTree("hello\nworld")

	// Corrupt an aggregate on purpose.
	tr.root.summary.Bytes++
	err := tr.CheckInvariants()
	if err == nil {
		t.Fatal("expected corruption to be detected")
	}
	if !strings.Contains(err.Error(), "piece tree corruption") {
		t.Errorf("unexpected error: %v", err)
	}
}
