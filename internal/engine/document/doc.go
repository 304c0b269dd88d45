// Package document is the engine's public surface: a text document with
// atomic multi-range edits, undo/redo, position translation, decorations,
// and change notification.
//
// One RWMutex serializes mutation; reads take the read lock and
// Snapshot() returns an immutable view that stays valid concurrently with
// later edits. Every successful edit batch, undo, and redo bumps the
// document version by exactly one and emits exactly one content event,
// delivered synchronously in version order.
//
// Offsets are bytes. The public Position type is 1-based in both line and
// column; the column counts bytes (UTF-8 code units). UTF-16 variants
// exist for protocol consumers, and grapheme helpers keep cursors off
// the middle of a cluster.
package document
