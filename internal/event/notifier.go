package event

import (
	"sync"
	"sync/atomic"
)

// Notifier fans document events out to listeners. Delivery is synchronous
// under an internal mutex, so events arrive in emission order and never
// interleave across batches.
type Notifier struct {
	mu     sync.Mutex
	nextID uint64

	content     []*contentSub
	decorations []*decorationSub
}

type contentSub struct {
	id        uint64
	fn        func(ContentChanged)
	cancelled atomic.Bool
}

type decorationSub struct {
	id        uint64
	fn        func(DecorationsChanged)
	cancelled atomic.Bool
}

// Subscription controls a listener's lifecycle.
type Subscription struct {
	cancel func()
	once   sync.Once
}

// Cancel permanently removes the listener. Safe to call multiple times
// and from inside the listener itself.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// NewNotifier creates a notifier with no listeners.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// OnContentChanged registers a listener for content events. Listeners run
// in registration order.
func (n *Notifier) OnContentChanged(fn func(ContentChanged)) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	sub := &contentSub{id: n.nextID, fn: fn}
	n.content = append(n.content, sub)
	return &Subscription{cancel: func() { sub.cancelled.Store(true) }}
}

// OnDecorationsChanged registers a listener for decoration events.
func (n *Notifier) OnDecorationsChanged(fn func(DecorationsChanged)) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	sub := &decorationSub{id: n.nextID, fn: fn}
	n.decorations = append(n.decorations, sub)
	return &Subscription{cancel: func() { sub.cancelled.Store(true) }}
}

// EmitContent delivers one content event, with an optional decoration
// event for the same version, to every live listener. Callers sequence
// their own mutation with the emit; the notifier only guarantees that
// batches never interleave.
func (n *Notifier) EmitContent(ev ContentChanged, dec *DecorationsChanged) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.content = deliver(n.content, ev)
	if dec != nil {
		n.decorations = deliverDec(n.decorations, *dec)
	}
}

// EmitDecorations delivers a standalone decoration event (add, remove,
// restore) outside any content change.
func (n *Notifier) EmitDecorations(ev DecorationsChanged) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.decorations = deliverDec(n.decorations, ev)
}

// deliver invokes live content listeners and compacts out cancelled ones.
func deliver(subs []*contentSub, ev ContentChanged) []*contentSub {
	live := subs[:0]
	for _, s := range subs {
		if s.cancelled.Load() {
			continue
		}
		s.fn(ev)
		if !s.cancelled.Load() {
			live = append(live, s)
		}
	}
	return live
}

func deliverDec(subs []*decorationSub, ev DecorationsChanged) []*decorationSub {
	live := subs[:0]
	for _, s := range subs {
		if s.cancelled.Load() {
			continue
		}
		s.fn(ev)
		if !s.cancelled.Load() {
			live = append(live, s)
		}
	}
	return live
}
