// Package bufpool provides append-only storage for raw document text.
//
// Text is held in buffers that are never edited in place. New text is
// appended to a single active "add" buffer; when the add buffer reaches a
// size limit, a fresh one is started. Deleting document text never touches
// a buffer: pieces simply stop referencing the bytes. The pool therefore
// accumulates dead bytes over time, and Rebuild exists to compact live
// spans into fresh buffers once occupancy drops below a threshold.
//
// Each buffer carries a table of newline offsets maintained on append, so
// line queries over a span are binary searches rather than text scans.
//
// A Span captures its byte and newline slices at creation time. Because
// buffer contents are append-only, a captured Span stays valid forever,
// even if the underlying buffer later grows or the pool is compacted.
// That property is what makes snapshot readers safe without locking.
package bufpool
