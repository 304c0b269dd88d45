// Package piecetree implements the document's core storage structure: a
// balanced, summary-augmented tree whose in-order traversal is a sequence
// of pieces, each referencing a contiguous span of one bufpool buffer.
// The concatenation of all pieces is always the complete document.
//
// The tree is persistent: mutations build new nodes along the edited path
// and share the rest. Tree is a thin mutable wrapper that swaps roots;
// Snapshot captures a root and stays valid forever, which is how readers
// run concurrently with a writer without locking.
//
// Every node carries a Summary (byte count and linefeed count) for its
// subtree, so offset lookups, line lookups, and coordinate conversions all
// descend the tree in O(log n) without touching text. A linefeed is a '\n'
// byte; a CRLF pair therefore counts as one line break no matter how
// pieces split around it, including a split that falls between the CR and
// the LF.
//
// Edits are O(log n) in the number of pieces, which is bounded by the
// number of edits rather than document size. Sequential typing does not
// grow the piece count at all: an insertion landing at the end of the most
// recently appended span extends that piece in place.
package piecetree
