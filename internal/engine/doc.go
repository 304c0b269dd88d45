// Package engine groups the text-storage core of loom.
//
// The engine is built from several sub-packages:
//
//   - bufpool: append-only byte storage shared by every piece
//   - piecetree: persistent piece tree with line-aware summaries
//   - decoration: interval index for tracked ranges with stickiness
//   - history: undo/redo stack with coalescing and grouping
//   - document: the facade combining all of the above behind one
//     thread-safe API
//
// Most callers only need the document package.
//
// # Basic Usage
//
//	d := document.FromString("Hello, World!")
//	d.Replace(7, 12, "Go")  // "Hello, Go!"
//	d.Undo()                // "Hello, World!"
//
// Reads are safe from any goroutine; a Snapshot gives a stable view
// that survives later edits.
package engine
