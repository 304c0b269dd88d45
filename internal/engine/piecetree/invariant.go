package piecetree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCorruption reports an internal invariant violation. It indicates a
// logic defect; the engine never attempts to recover from it.
var ErrCorruption = errors.New("piece tree corruption")

// CheckInvariants recomputes every aggregate bottom-up and verifies the
// structural invariants. It returns ErrCorruption wrapped with a tree dump
// on the first violation found.
func (t *Tree) CheckInvariants() error {
	if err := validate(t.root); err != nil {
		return fmt.Errorf("%w: %v\n%s", ErrCorruption, err, t.Dump())
	}
	return nil
}

func validate(n *node) error {
	if n == nil {
		return errors.New("nil node")
	}

	if n.isLeaf() {
		if len(n.pieces) > MaxPiecesPerLeaf {
			return fmt.Errorf("leaf holds %d pieces, max %d", len(n.pieces), MaxPiecesPerLeaf)
		}
		var sum Summary
		for i, p := range n.pieces {
			if p.isEmpty() {
				return fmt.Errorf("leaf piece %d is empty", i)
			}
			var nl int64
			for j, b := range p.data {
				if b == '\n' {
					if nl >= p.newlines() || p.nl[nl] != p.off+int64(j) {
						return fmt.Errorf("piece %d newline table out of sync", i)
					}
					nl++
				}
			}
			if nl != p.newlines() {
				return fmt.Errorf("piece %d counts %d newlines, table has %d", i, nl, p.newlines())
			}
			sum = sum.Add(p.summary())
		}
		if sum != n.summary {
			return fmt.Errorf("leaf summary %+v, recomputed %+v", n.summary, sum)
		}
		return nil
	}

	if len(n.children) == 0 {
		return errors.New("internal node has no children")
	}
	if len(n.children) > MaxChildren {
		return fmt.Errorf("internal node holds %d children, max %d", len(n.children), MaxChildren)
	}
	if len(n.childSummaries) != len(n.children) {
		return errors.New("child summary table out of sync")
	}

	var sum Summary
	for i, child := range n.children {
		if child.height >= n.height {
			return fmt.Errorf("child %d height %d under parent height %d", i, child.height, n.height)
		}
		if child.summary != n.childSummaries[i] {
			return fmt.Errorf("child %d cached summary %+v, actual %+v", i, n.childSummaries[i], child.summary)
		}
		if err := validate(child); err != nil {
			return err
		}
		sum = sum.Add(child.summary)
	}
	if sum != n.summary {
		return fmt.Errorf("internal summary %+v, recomputed %+v", n.summary, sum)
	}
	return nil
}

// Dump renders the tree structure for diagnostics.
func (t *Tree) Dump() string {
	var sb strings.Builder
	dumpNode(&sb, t.root, 0)
	return sb.String()
}

func dumpNode(sb *strings.Builder, n *node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n == nil {
		fmt.Fprintf(sb, "%s<nil>\n", indent)
		return
	}
	if n.isLeaf() {
		fmt.Fprintf(sb, "%sleaf bytes=%d nl=%d\n", indent, n.summary.Bytes, n.summary.Newlines)
		for _, p := range n.pieces {
			preview := string(p.data)
			if len(preview) > 24 {
				preview = preview[:24] + "..."
			}
			fmt.Fprintf(sb, "%s  piece buf=%d off=%d len=%d nl=%d %q\n",
				indent, p.bufID, p.off, p.len(), p.newlines(), preview)
		}
		return
	}
	fmt.Fprintf(sb, "%snode h=%d bytes=%d nl=%d children=%d\n",
		indent, n.height, n.summary.Bytes, n.summary.Newlines, len(n.children))
	for _, child := range n.children {
		dumpNode(sb, child, depth+1)
	}
}
