package piecetree

import "strings"

// Tree structure constants.
const (
	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8

	// MaxPiecesPerLeaf is the maximum pieces in a leaf node.
	MaxPiecesPerLeaf = 4
)

// node is a node in the piece B+ tree. Leaf nodes (height == 0) hold
// pieces; internal nodes hold child references. Nodes are immutable once
// published: mutations copy the edited path.
type node struct {
	height  uint8
	summary Summary

	// Internal node fields (height > 0)
	children       []*node
	childSummaries []Summary

	// Leaf node fields (height == 0)
	pieces []piece
}

func newLeafNode() *node {
	return &node{height: 0}
}

func newLeafNodeWithPieces(pieces []piece) *node {
	n := &node{height: 0, pieces: pieces}
	n.recomputeSummary()
	return n
}

func newInternalNode(children []*node) *node {
	if len(children) == 0 {
		return newLeafNode()
	}

	// Split can leave a shorter subtree at either edge, so the height is
	// one above the tallest child, not the first.
	var height uint8
	summaries := make([]Summary, len(children))
	var total Summary
	for i, child := range children {
		if child.height >= height {
			height = child.height + 1
		}
		summaries[i] = child.summary
		total = total.Add(child.summary)
	}

	return &node{
		height:         height,
		summary:        total,
		children:       children,
		childSummaries: summaries,
	}
}

func (n *node) isLeaf() bool {
	return n.height == 0
}

func (n *node) len() int64 {
	return n.summary.Bytes
}

func (n *node) recomputeSummary() {
	n.summary = Summary{}
	if n.isLeaf() {
		for _, p := range n.pieces {
			n.summary = n.summary.Add(p.summary())
		}
		return
	}
	n.childSummaries = make([]Summary, len(n.children))
	for i, child := range n.children {
		n.childSummaries[i] = child.summary
		n.summary = n.summary.Add(child.summary)
	}
}

func (n *node) clone() *node {
	if n.isLeaf() {
		pieces := make([]piece, len(n.pieces))
		copy(pieces, n.pieces)
		return &node{height: 0, summary: n.summary, pieces: pieces}
	}

	children := make([]*node, len(n.children))
	copy(children, n.children)
	summaries := make([]Summary, len(n.childSummaries))
	copy(summaries, n.childSummaries)
	return &node{
		height:         n.height,
		summary:        n.summary,
		children:       children,
		childSummaries: summaries,
	}
}

// appendTo appends all text in this subtree to the builder.
func (n *node) appendTo(sb *strings.Builder) {
	if n.isLeaf() {
		for _, p := range n.pieces {
			sb.Write(p.data)
		}
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// appendRange appends text in the byte range [start, end) to the builder.
func (n *node) appendRange(sb *strings.Builder, start, end int64) {
	if start >= end {
		return
	}

	if n.isLeaf() {
		offset := int64(0)
		for _, p := range n.pieces {
			pieceEnd := offset + p.len()
			if pieceEnd <= start {
				offset = pieceEnd
				continue
			}
			if offset >= end {
				break
			}

			sliceStart := int64(0)
			if start > offset {
				sliceStart = start - offset
			}
			sliceEnd := p.len()
			if end < pieceEnd {
				sliceEnd = end - offset
			}

			sb.Write(p.data[sliceStart:sliceEnd])
			offset = pieceEnd
		}
		return
	}

	offset := int64(0)
	for i, child := range n.children {
		childLen := n.childSummaries[i].Bytes
		childEnd := offset + childLen
		if childEnd <= start {
			offset = childEnd
			continue
		}
		if offset >= end {
			break
		}

		childStart := int64(0)
		if start > offset {
			childStart = start - offset
		}
		childEndAdj := childLen
		if end < childEnd {
			childEndAdj = end - offset
		}

		child.appendRange(sb, childStart, childEndAdj)
		offset = childEnd
	}
}

// newlinesBefore counts '\n' bytes strictly before offset in this subtree.
func (n *node) newlinesBefore(offset int64) int64 {
	if offset <= 0 {
		return 0
	}
	if offset >= n.summary.Bytes {
		return n.summary.Newlines
	}

	if n.isLeaf() {
		var count, cum int64
		for _, p := range n.pieces {
			if offset <= cum {
				break
			}
			if offset >= cum+p.len() {
				count += p.newlines()
			} else {
				count += p.newlinesBefore(offset - cum)
			}
			cum += p.len()
		}
		return count
	}

	var count, cum int64
	for i, child := range n.children {
		childLen := n.childSummaries[i].Bytes
		if offset <= cum {
			break
		}
		if offset >= cum+childLen {
			count += n.childSummaries[i].Newlines
		} else {
			count += child.newlinesBefore(offset - cum)
		}
		cum += childLen
	}
	return count
}

// newlineOffset returns the byte offset of the k-th (0-based) '\n' in this
// subtree. k must be in [0, summary.Newlines).
func (n *node) newlineOffset(k int64) int64 {
	if n.isLeaf() {
		var cum int64
		for _, p := range n.pieces {
			if k < p.newlines() {
				return cum + p.newlineAt(k)
			}
			k -= p.newlines()
			cum += p.len()
		}
		return cum // unreachable for valid k
	}

	var cum int64
	for i, child := range n.children {
		nl := n.childSummaries[i].Newlines
		if k < nl {
			return cum + child.newlineOffset(k)
		}
		k -= nl
		cum += n.childSummaries[i].Bytes
	}
	return cum // unreachable for valid k
}

// byteAt returns the byte at offset within this subtree.
func (n *node) byteAt(offset int64) byte {
	for !n.isLeaf() {
		cum := int64(0)
		for i, s := range n.childSummaries {
			if offset < cum+s.Bytes {
				n = n.children[i]
				offset -= cum
				break
			}
			cum += s.Bytes
		}
	}
	for _, p := range n.pieces {
		if offset < p.len() {
			return p.data[offset]
		}
		offset -= p.len()
	}
	return 0
}

// pieceEndingAt returns the piece whose span ends exactly at offset.
func (n *node) pieceEndingAt(offset int64) (piece, bool) {
	if offset <= 0 || offset > n.summary.Bytes {
		return piece{}, false
	}

	if n.isLeaf() {
		var cum int64
		for _, p := range n.pieces {
			cum += p.len()
			if cum == offset {
				return p, true
			}
			if cum > offset {
				return piece{}, false
			}
		}
		return piece{}, false
	}

	var cum int64
	for i, child := range n.children {
		childLen := n.childSummaries[i].Bytes
		if offset <= cum+childLen {
			return child.pieceEndingAt(offset - cum)
		}
		cum += childLen
	}
	return piece{}, false
}

// replacePieceEndingAt returns a path-copied subtree in which the piece
// ending exactly at offset is replaced by repl.
func (n *node) replacePieceEndingAt(offset int64, repl piece) (*node, bool) {
	if n.isLeaf() {
		var cum int64
		for i, p := range n.pieces {
			cum += p.len()
			if cum == offset {
				nn := n.clone()
				nn.pieces[i] = repl
				nn.recomputeSummary()
				return nn, true
			}
			if cum > offset {
				return nil, false
			}
		}
		return nil, false
	}

	var cum int64
	for i, child := range n.children {
		childLen := n.childSummaries[i].Bytes
		if offset <= cum+childLen {
			replaced, ok := child.replacePieceEndingAt(offset-cum, repl)
			if !ok {
				return nil, false
			}
			nn := n.clone()
			nn.children[i] = replaced
			nn.recomputeSummary()
			return nn, true
		}
		cum += childLen
	}
	return nil, false
}

// split splits the node at the given byte offset. Left contains
// [0, offset), right contains [offset, end).
func (n *node) split(offset int64) (*node, *node) {
	if offset <= 0 {
		return newLeafNode(), n
	}
	if offset >= n.len() {
		return n, newLeafNode()
	}
	if n.isLeaf() {
		return n.splitLeaf(offset)
	}
	return n.splitInternal(offset)
}

func (n *node) splitLeaf(offset int64) (*node, *node) {
	var leftPieces, rightPieces []piece
	cum := int64(0)

	for _, p := range n.pieces {
		pieceLen := p.len()
		switch {
		case cum+pieceLen <= offset:
			leftPieces = append(leftPieces, p)
		case cum >= offset:
			rightPieces = append(rightPieces, p)
		default:
			left, right := p.split(offset - cum)
			if !left.isEmpty() {
				leftPieces = append(leftPieces, left)
			}
			if !right.isEmpty() {
				rightPieces = append(rightPieces, right)
			}
		}
		cum += pieceLen
	}

	return newLeafNodeWithPieces(leftPieces), newLeafNodeWithPieces(rightPieces)
}

func (n *node) splitInternal(offset int64) (*node, *node) {
	var leftChildren, rightChildren []*node
	cum := int64(0)

	for i, child := range n.children {
		childLen := n.childSummaries[i].Bytes
		switch {
		case cum+childLen <= offset:
			leftChildren = append(leftChildren, child)
		case cum >= offset:
			rightChildren = append(rightChildren, child)
		default:
			leftChild, rightChild := child.split(offset - cum)
			if leftChild.len() > 0 {
				leftChildren = append(leftChildren, leftChild)
			}
			if rightChild.len() > 0 {
				rightChildren = append(rightChildren, rightChild)
			}
		}
		cum += childLen
	}

	return buildNodeFromChildren(leftChildren), buildNodeFromChildren(rightChildren)
}

// buildNodeFromChildren creates a balanced tree from child nodes of equal
// height.
func buildNodeFromChildren(children []*node) *node {
	if len(children) == 0 {
		return newLeafNode()
	}
	if len(children) == 1 {
		return children[0]
	}
	if len(children) <= MaxChildren {
		return newInternalNode(children)
	}

	var parents []*node
	for i := 0; i < len(children); i += MaxChildren {
		end := i + MaxChildren
		if end > len(children) {
			end = len(children)
		}
		parents = append(parents, newInternalNode(children[i:end]))
	}
	return buildNodeFromChildren(parents)
}

// concat concatenates two subtrees.
func concat(left, right *node) *node {
	if left == nil || left.len() == 0 {
		if right == nil {
			return newLeafNode()
		}
		return right
	}
	if right == nil || right.len() == 0 {
		return left
	}

	if left.isLeaf() && right.isLeaf() {
		return concatLeaves(left, right)
	}

	// Bring to the same height by wrapping the shorter one.
	for left.height < right.height {
		left = newInternalNode([]*node{left})
	}
	for right.height < left.height {
		right = newInternalNode([]*node{right})
	}

	return mergeNodes(left, right)
}

func concatLeaves(left, right *node) *node {
	total := len(left.pieces) + len(right.pieces)
	if total <= MaxPiecesPerLeaf {
		pieces := make([]piece, 0, total)
		pieces = append(pieces, left.pieces...)
		pieces = append(pieces, right.pieces...)
		return newLeafNodeWithPieces(pieces)
	}
	return newInternalNode([]*node{left, right})
}

func mergeNodes(left, right *node) *node {
	if left.isLeaf() {
		return concatLeaves(left, right)
	}

	all := make([]*node, 0, len(left.children)+len(right.children))
	all = append(all, left.children...)
	all = append(all, right.children...)

	if len(all) <= MaxChildren {
		return newInternalNode(all)
	}
	return buildNodeFromChildren(all)
}

// buildFromPieces builds a balanced tree bottom-up from a piece run.
func buildFromPieces(pieces []piece) *node {
	if len(pieces) == 0 {
		return newLeafNode()
	}

	var leaves []*node
	for i := 0; i < len(pieces); i += MaxPiecesPerLeaf {
		end := i + MaxPiecesPerLeaf
		if end > len(pieces) {
			end = len(pieces)
		}
		leafPieces := make([]piece, end-i)
		copy(leafPieces, pieces[i:end])
		leaves = append(leaves, newLeafNodeWithPieces(leafPieces))
	}
	return buildNodeFromChildren(leaves)
}

// appendPieces collects the in-order piece run of the subtree.
func (n *node) appendPieces(out []piece) []piece {
	if n.isLeaf() {
		return append(out, n.pieces...)
	}
	for _, child := range n.children {
		out = child.appendPieces(out)
	}
	return out
}
