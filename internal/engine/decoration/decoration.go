package decoration

import (
	"github.com/google/uuid"
)

// Stickiness decides how a decoration boundary reacts to an edit landing
// exactly on it.
type Stickiness int

const (
	// GrowsOnEdit absorbs text inserted at a boundary: an insert at the
	// start keeps the start in place, an insert at the end extends the
	// decoration over the new text.
	GrowsOnEdit Stickiness = iota

	// StaysFixed excludes text inserted at a boundary: an insert at the
	// start pushes the decoration right, an insert at the end leaves the
	// end where it was.
	StaysFixed
)

// Decoration is a tracked range. Data is an opaque payload for the owner;
// the index never inspects it.
type Decoration struct {
	ID         uuid.UUID
	Start      int64
	End        int64
	Stickiness Stickiness
	Data       any
}

// Delta describes one applied edit: the bytes in [Start, End) were
// replaced by NewLen bytes.
type Delta struct {
	Start  int64
	End    int64
	NewLen int64
}

// adjustStart maps a start boundary across the edit.
func (d Delta) adjustStart(p int64, st Stickiness) int64 {
	shift := d.NewLen - (d.End - d.Start)
	switch {
	case p < d.Start:
		return p
	case p > d.End:
		return p + shift
	case d.Start == d.End: // pure insert at the boundary
		if st == GrowsOnEdit {
			return d.Start
		}
		return d.Start + d.NewLen
	case p == d.Start:
		return p
	default:
		// Inside or at the end of the replaced range: land just past the
		// replacement so the decoration never absorbs foreign text.
		return d.Start + d.NewLen
	}
}

// adjustEnd maps an end boundary across the edit.
func (d Delta) adjustEnd(p int64, st Stickiness) int64 {
	shift := d.NewLen - (d.End - d.Start)
	switch {
	case p < d.Start:
		return p
	case p > d.End:
		return p + shift
	case d.Start == d.End: // pure insert at the boundary
		if st == GrowsOnEdit {
			return d.Start + d.NewLen
		}
		return d.Start
	case p == d.Start:
		return p
	default:
		if st == GrowsOnEdit {
			return d.Start + d.NewLen
		}
		return d.Start
	}
}

// apply maps both boundaries and clamps an inverted result.
func (d Delta) apply(dec *Decoration) bool {
	start := d.adjustStart(dec.Start, dec.Stickiness)
	end := d.adjustEnd(dec.End, dec.Stickiness)
	if end < start {
		end = start
	}
	if start == dec.Start && end == dec.End {
		return false
	}
	dec.Start = start
	dec.End = end
	return true
}
