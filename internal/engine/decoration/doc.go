// Package decoration maintains ranges anchored to document positions:
// highlights, diagnostics squiggles, bookmarks. Each decoration has a
// stickiness policy that decides what happens when text is inserted or
// deleted exactly at its boundaries.
//
// The index is an interval treap ordered by (start, ID) and augmented
// with the maximum end offset per subtree, so range queries skip whole
// subtrees that end before the query begins. Position adjustment after an
// edit shifts boundaries monotonically, which preserves the tree order
// and lets adjustment run in place.
//
// Adjusted decorations never cover text they did not cover before the
// edit: replacement text is only absorbed when the stickiness policy
// says to grow.
package decoration
