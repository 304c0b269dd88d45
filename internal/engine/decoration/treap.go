package decoration

import (
	"bytes"
	"math/rand"
)

// treapNode is one tree node. Priorities are random, keeping the tree
// balanced in expectation without rebalancing bookkeeping. maxEnd is the
// largest End in the subtree and drives query pruning.
type treapNode struct {
	dec      *Decoration
	priority uint64
	left     *treapNode
	right    *treapNode
	maxEnd   int64
}

// keyLess orders decorations by (start, ID). The ID tiebreak makes the
// order total, so equal-start decorations have a deterministic layout.
func keyLess(a, b *Decoration) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func (n *treapNode) update() {
	n.maxEnd = n.dec.End
	if n.left != nil && n.left.maxEnd > n.maxEnd {
		n.maxEnd = n.left.maxEnd
	}
	if n.right != nil && n.right.maxEnd > n.maxEnd {
		n.maxEnd = n.right.maxEnd
	}
}

func rotateRight(n *treapNode) *treapNode {
	l := n.left
	n.left = l.right
	l.right = n
	n.update()
	l.update()
	return l
}

func rotateLeft(n *treapNode) *treapNode {
	r := n.right
	n.right = r.left
	r.left = n
	n.update()
	r.update()
	return r
}

func insertNode(n *treapNode, dec *Decoration) *treapNode {
	if n == nil {
		x := &treapNode{dec: dec, priority: rand.Uint64()}
		x.update()
		return x
	}
	if keyLess(dec, n.dec) {
		n.left = insertNode(n.left, dec)
		if n.left.priority > n.priority {
			n = rotateRight(n)
		}
	} else {
		n.right = insertNode(n.right, dec)
		if n.right.priority > n.priority {
			n = rotateLeft(n)
		}
	}
	n.update()
	return n
}

// eraseNode removes the node holding dec (matched by key) and merges its
// children by priority.
func eraseNode(n *treapNode, dec *Decoration) *treapNode {
	if n == nil {
		return nil
	}
	switch {
	case n.dec.ID == dec.ID:
		n = mergeNodes(n.left, n.right)
	case keyLess(dec, n.dec):
		n.left = eraseNode(n.left, dec)
	default:
		n.right = eraseNode(n.right, dec)
	}
	if n != nil {
		n.update()
	}
	return n
}

func mergeNodes(a, b *treapNode) *treapNode {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.priority > b.priority {
		a.right = mergeNodes(a.right, b)
		a.update()
		return a
	}
	b.left = mergeNodes(a, b.left)
	b.update()
	return b
}

// queryNode collects decorations overlapping [start, end], inclusive at
// both boundaries, in start order. Subtrees whose maxEnd falls before the
// query start cannot contribute and are skipped.
func queryNode(n *treapNode, start, end int64, out *[]Decoration) {
	if n == nil || n.maxEnd < start {
		return
	}
	queryNode(n.left, start, end, out)
	if n.dec.Start <= end && n.dec.End >= start {
		*out = append(*out, *n.dec)
	}
	if n.dec.Start <= end {
		queryNode(n.right, start, end, out)
	}
}

// collectTouched gathers the decorations the delta would move, without
// mutating anything. Subtrees whose maxEnd falls before the delta cannot
// be affected and are skipped. Mutation happens by erase-and-reinsert in
// Index.Adjust: a collapsing delete maps several starts to the same
// offset and a boundary insert moves StaysFixed past GrowsOnEdit, either
// of which would break the key order if boundaries were updated in place.
func collectTouched(n *treapNode, d Delta, out *[]*Decoration) {
	if n == nil || n.maxEnd < d.Start {
		return
	}
	collectTouched(n.left, d, out)
	probe := *n.dec
	if d.apply(&probe) {
		*out = append(*out, n.dec)
	}
	collectTouched(n.right, d, out)
}

func walkNode(n *treapNode, fn func(*Decoration)) {
	if n == nil {
		return
	}
	walkNode(n.left, fn)
	fn(n.dec)
	walkNode(n.right, fn)
}
