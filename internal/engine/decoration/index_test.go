package decoration

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"
)

func TestAddGetRemove(t *testing.T) {
	ix := NewIndex()

	d := ix.Add(2, 4, StaysFixed, "note")
	if d.ID == (uuid.UUID{}) {
		t.Fatal("expected a generated ID")
	}

	got, ok := ix.Get(d.ID)
	if !ok || got.Start != 2 || got.End != 4 || got.Data != "note" {
		t.Errorf("Get = %+v, %v", got, ok)
	}
	if ix.Len() != 1 {
		t.Errorf("Len = %d, want 1", ix.Len())
	}

	if err := ix.Remove(d.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := ix.Get(d.ID); ok {
		t.Error("decoration still present after Remove")
	}
	if err := ix.Remove(d.ID); !errors.Is(err, ErrUnknownDecoration) {
		t.Errorf("second Remove: %v", err)
	}
}

func TestQueryRangeOverlap(t *testing.T) {
	ix := NewIndex()

	a := ix.Add(0, 5, GrowsOnEdit, nil)
	b := ix.Add(3, 8, GrowsOnEdit, nil)
	c := ix.Add(10, 12, GrowsOnEdit, nil)

	got := ix.QueryRange(4, 9)
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
		t.Errorf("QueryRange(4,9) = %+v", got)
	}

	// Inclusive at both boundaries: touching ranges match.
	got = ix.QueryRange(8, 10)
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != c.ID {
		t.Errorf("QueryRange(8,10) = %+v", got)
	}

	if got := ix.QueryRange(13, 20); len(got) != 0 {
		t.Errorf("expected no matches past the last decoration, got %+v", got)
	}
}

func TestQueryRangeIncludesEmptyDecoration(t *testing.T) {
	ix := NewIndex()
	d := ix.Add(5, 5, GrowsOnEdit, nil)

	got := ix.QueryRange(5, 5)
	if len(got) != 1 || got[0].ID != d.ID {
		t.Errorf("empty decoration not found: %+v", got)
	}
}

func TestQueryRangeOrdered(t *testing.T) {
	ix := NewIndex()

	// Insert out of order.
	ix.Add(30, 35, GrowsOnEdit, nil)
	ix.Add(10, 15, GrowsOnEdit, nil)
	ix.Add(20, 25, GrowsOnEdit, nil)

	got := ix.QueryRange(0, 100)
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start < got[i-1].Start {
			t.Errorf("results out of order: %+v", got)
		}
	}
}

func TestAdjustShiftsAfterDelete(t *testing.T) {
	ix := NewIndex()
	d := ix.Add(2, 4, StaysFixed, nil)

	// Deleting one byte before the decoration slides it left intact.
	if moved := ix.Adjust([]Delta{{Start: 0, End: 1, NewLen: 0}}); moved != 1 {
		t.Fatalf("moved = %d, want 1", moved)
	}
	got, _ := ix.Get(d.ID)
	if got.Start != 1 || got.End != 3 {
		t.Errorf("got [%d,%d), want [1,3)", got.Start, got.End)
	}
}

func TestAdjustInsertBeforeShiftsRight(t *testing.T) {
	ix := NewIndex()
	d := ix.Add(2, 4, GrowsOnEdit, nil)

	ix.Adjust([]Delta{{Start: 0, End: 0, NewLen: 3}})
	got, _ := ix.Get(d.ID)
	if got.Start != 5 || got.End != 7 {
		t.Errorf("got [%d,%d), want [5,7)", got.Start, got.End)
	}
}

func TestAdjustInsertAtBoundaryStickiness(t *testing.T) {
	ix := NewIndex()
	grows := ix.Add(2, 4, GrowsOnEdit, nil)
	fixed := ix.Add(2, 4, StaysFixed, nil)

	// Insert two bytes exactly at the end boundary.
	ix.Adjust([]Delta{{Start: 4, End: 4, NewLen: 2}})

	g, _ := ix.Get(grows.ID)
	if g.Start != 2 || g.End != 6 {
		t.Errorf("grows = [%d,%d), want [2,6)", g.Start, g.End)
	}
	f, _ := ix.Get(fixed.ID)
	if f.Start != 2 || f.End != 4 {
		t.Errorf("fixed = [%d,%d), want [2,4)", f.Start, f.End)
	}
}

func TestAdjustInsertAtStartBoundaryStickiness(t *testing.T) {
	ix := NewIndex()
	grows := ix.Add(2, 4, GrowsOnEdit, nil)
	fixed := ix.Add(2, 4, StaysFixed, nil)

	ix.Adjust([]Delta{{Start: 2, End: 2, NewLen: 2}})

	g, _ := ix.Get(grows.ID)
	if g.Start != 2 || g.End != 6 {
		t.Errorf("grows = [%d,%d), want [2,6)", g.Start, g.End)
	}
	f, _ := ix.Get(fixed.ID)
	if f.Start != 4 || f.End != 6 {
		t.Errorf("fixed = [%d,%d), want [4,6)", f.Start, f.End)
	}
}

func TestAdjustInteriorInsertGrowsBoth(t *testing.T) {
	ix := NewIndex()
	d := ix.Add(2, 6, StaysFixed, nil)

	// Inserts strictly inside grow the decoration regardless of policy.
	ix.Adjust([]Delta{{Start: 4, End: 4, NewLen: 3}})
	got, _ := ix.Get(d.ID)
	if got.Start != 2 || got.End != 9 {
		t.Errorf("got [%d,%d), want [2,9)", got.Start, got.End)
	}
}

func TestAdjustReplacementNeverAbsorbsForeignText(t *testing.T) {
	ix := NewIndex()
	d := ix.Add(3, 6, StaysFixed, nil)

	// Replace [2,4) with "XY": the decoration's surviving text starts
	// right after the replacement.
	ix.Adjust([]Delta{{Start: 2, End: 4, NewLen: 2}})
	got, _ := ix.Get(d.ID)
	if got.Start != 4 || got.End != 6 {
		t.Errorf("got [%d,%d), want [4,6)", got.Start, got.End)
	}
}

func TestAdjustDeleteCoveringCollapses(t *testing.T) {
	ix := NewIndex()
	d := ix.Add(3, 6, GrowsOnEdit, nil)

	ix.Adjust([]Delta{{Start: 2, End: 8, NewLen: 0}})
	got, _ := ix.Get(d.ID)
	if got.Start != 2 || got.End != 2 {
		t.Errorf("got [%d,%d), want collapsed [2,2)", got.Start, got.End)
	}
}

func TestRemoveAfterCollapsingDelete(t *testing.T) {
	ix := NewIndex()
	a := ix.Add(2, 3, StaysFixed, nil)
	b := ix.Add(5, 6, StaysFixed, nil)

	// One delete covering both collapses them to the same start, where
	// their layout no longer follows the ID tiebreak.
	ix.Adjust([]Delta{{Start: 0, End: 10, NewLen: 0}})

	for _, d := range []Decoration{a, b} {
		got, ok := ix.Get(d.ID)
		if !ok || got.Start != 0 || got.End != 0 {
			t.Fatalf("decoration %v = %+v, want collapsed [0,0)", d.ID, got)
		}
	}

	if err := ix.Remove(b.ID); err != nil {
		t.Fatalf("Remove(b): %v", err)
	}
	if err := ix.Remove(a.ID); err != nil {
		t.Fatalf("Remove(a): %v", err)
	}
	if ix.Len() != 0 {
		t.Errorf("Len = %d, want 0", ix.Len())
	}
	if all := ix.All(); len(all) != 0 {
		t.Errorf("removed decorations still present in All(): %+v", all)
	}
}

func TestQueryAndRemoveAfterBoundaryInsertReorders(t *testing.T) {
	ix := NewIndex()
	grows := ix.Add(4, 6, GrowsOnEdit, nil)
	fixed := ix.Add(4, 6, StaysFixed, nil)

	// A pure insert at the shared start moves only the StaysFixed
	// decoration, inverting the previous equal-start layout.
	ix.Adjust([]Delta{{Start: 4, End: 4, NewLen: 3}})

	g, _ := ix.Get(grows.ID)
	if g.Start != 4 || g.End != 9 {
		t.Fatalf("grows = [%d,%d), want [4,9)", g.Start, g.End)
	}
	f, _ := ix.Get(fixed.ID)
	if f.Start != 7 || f.End != 9 {
		t.Fatalf("fixed = [%d,%d), want [7,9)", f.Start, f.End)
	}

	got := ix.QueryRange(0, 20)
	if len(got) != 2 || got[0].ID != grows.ID || got[1].ID != fixed.ID {
		t.Errorf("QueryRange = %+v", got)
	}

	if err := ix.Remove(fixed.ID); err != nil {
		t.Fatalf("Remove(fixed): %v", err)
	}
	if err := ix.Remove(grows.ID); err != nil {
		t.Fatalf("Remove(grows): %v", err)
	}
	if all := ix.All(); len(all) != 0 {
		t.Errorf("removed decorations still present in All(): %+v", all)
	}
}

func TestAdjustBatchDescending(t *testing.T) {
	ix := NewIndex()
	d := ix.Add(20, 25, GrowsOnEdit, nil)

	// Two deletes before the decoration, expressed in the same original
	// coordinates as an atomic batch.
	ix.Adjust([]Delta{
		{Start: 2, End: 4, NewLen: 0},
		{Start: 10, End: 13, NewLen: 0},
	})
	got, _ := ix.Get(d.ID)
	if got.Start != 15 || got.End != 20 {
		t.Errorf("got [%d,%d), want [15,20)", got.Start, got.End)
	}
}

func TestAdjustNoChangeReportsFalse(t *testing.T) {
	ix := NewIndex()
	ix.Add(2, 4, GrowsOnEdit, nil)

	// Edit entirely after every decoration.
	if moved := ix.Adjust([]Delta{{Start: 50, End: 52, NewLen: 1}}); moved != 0 {
		t.Errorf("moved = %d, want 0", moved)
	}
}

func TestRestore(t *testing.T) {
	ix := NewIndex()
	d := ix.Add(2, 4, StaysFixed, nil)

	ix.Adjust([]Delta{{Start: 0, End: 1, NewLen: 0}})
	if err := ix.Restore(d.ID, 2, 4); err != nil {
		t.Fatal(err)
	}
	got, _ := ix.Get(d.ID)
	if got.Start != 2 || got.End != 4 {
		t.Errorf("got [%d,%d), want [2,4)", got.Start, got.End)
	}

	// The tree must still be queryable in order after the jump.
	all := ix.All()
	for i := 1; i < len(all); i++ {
		if all[i].Start < all[i-1].Start {
			t.Errorf("order broken after Restore: %+v", all)
		}
	}

	if err := ix.Restore(uuid.New(), 0, 1); !errors.Is(err, ErrUnknownDecoration) {
		t.Errorf("Restore of unknown ID: %v", err)
	}
}

func TestManyDecorationsQueryAndAdjust(t *testing.T) {
	ix := NewIndex()
	rng := rand.New(rand.NewSource(7))

	type ref struct {
		id         uuid.UUID
		start, end int64
	}
	var refs []ref
	for i := 0; i < 500; i++ {
		start := 1 + rng.Int63n(10000)
		end := start + rng.Int63n(50)
		d := ix.Add(start, end, GrowsOnEdit, nil)
		refs = append(refs, ref{id: d.ID, start: start, end: end})
	}

	// Spot-check queries against a linear scan.
	for q := 0; q < 50; q++ {
		qs := rng.Int63n(10000)
		qe := qs + rng.Int63n(200)
		var want int
		for _, r := range refs {
			if r.start <= qe && r.end >= qs {
				want++
			}
		}
		if got := len(ix.QueryRange(qs, qe)); got != want {
			t.Fatalf("QueryRange(%d,%d) = %d matches, want %d", qs, qe, got, want)
		}
	}

	// An insert before everything shifts all decorations uniformly.
	ix.Adjust([]Delta{{Start: 0, End: 0, NewLen: 7}})
	for _, r := range refs[:20] {
		got, ok := ix.Get(r.id)
		if !ok || got.Start != r.start+7 || got.End != r.end+7 {
			t.Fatalf("decoration %v = %+v, want shift by 7", r.id, got)
		}
	}
}
