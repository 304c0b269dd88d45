// Package event carries document change notifications.
//
// A document emits exactly one ContentChanged event per edit batch, after
// the batch has been applied and the version bumped. Delivery is
// synchronous and ordered: listeners observe version N before version
// N+1, with no interleaving between batches. Listeners may read the
// document from inside the callback; they must not edit it.
//
// The Log keeps a bounded ring of recent events so late subscribers and
// diff consumers can catch up by version instead of re-reading the whole
// document.
package event
