package event

import (
	"sync"
)

// DefaultLogCapacity is the default number of events the log retains.
const DefaultLogCapacity = 1024

// Log is a bounded ring of recent content events, ordered by version.
// All operations are thread-safe.
type Log struct {
	mu sync.RWMutex

	events []ContentChanged
	head   int // index of oldest entry
	count  int
}

// NewLog creates a log retaining up to capacity events.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &Log{events: make([]ContentChanged, capacity)}
}

// Append records an event. Versions must arrive in increasing order; the
// oldest event is dropped when the ring is full.
func (l *Log) Append(ev ContentChanged) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := (l.head + l.count) % len(l.events)
	if l.count < len(l.events) {
		l.count++
	} else {
		l.head = (l.head + 1) % len(l.events)
	}
	l.events[idx] = ev
}

// Since returns, oldest first, every retained event with a version
// greater than v. ok is false when the log has already dropped events the
// caller would need: the oldest retained event is newer than v+1 and the
// caller must resynchronize from the full document instead.
func (l *Log) Since(v int64) (events []ContentChanged, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.count == 0 {
		return nil, true
	}

	oldest := l.events[l.head].Version
	newest := l.events[(l.head+l.count-1)%len(l.events)].Version
	if v >= newest {
		return nil, true
	}
	if oldest > v+1 {
		return nil, false
	}

	for i := 0; i < l.count; i++ {
		ev := l.events[(l.head+i)%len(l.events)]
		if ev.Version > v {
			events = append(events, ev)
		}
	}
	return events, true
}

// Latest returns the newest retained event.
func (l *Log) Latest() (ContentChanged, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.count == 0 {
		return ContentChanged{}, false
	}
	return l.events[(l.head+l.count-1)%len(l.events)], true
}

// Len returns the number of retained events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Clear drops every retained event.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.head = 0
	l.count = 0
}
