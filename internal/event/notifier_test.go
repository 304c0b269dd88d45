package event

import (
	"sync"
	"testing"
)

func TestListenersRunInRegistrationOrder(t *testing.T) {
	n := NewNotifier()

	var order []int
	n.OnContentChanged(func(ContentChanged) { order = append(order, 1) })
	n.OnContentChanged(func(ContentChanged) { order = append(order, 2) })
	n.OnContentChanged(func(ContentChanged) { order = append(order, 3) })

	n.EmitContent(ContentChanged{Version: 2}, nil)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("delivery order = %v", order)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	n := NewNotifier()

	var got int
	sub := n.OnContentChanged(func(ContentChanged) { got++ })

	n.EmitContent(ContentChanged{Version: 2}, nil)
	sub.Cancel()
	sub.Cancel() // idempotent
	n.EmitContent(ContentChanged{Version: 3}, nil)

	if got != 1 {
		t.Errorf("listener ran %d times, want 1", got)
	}
}

func TestCancelFromInsideListener(t *testing.T) {
	n := NewNotifier()

	var got int
	var sub *Subscription
	sub = n.OnContentChanged(func(ContentChanged) {
		got++
		sub.Cancel()
	})

	n.EmitContent(ContentChanged{Version: 2}, nil)
	n.EmitContent(ContentChanged{Version: 3}, nil)

	if got != 1 {
		t.Errorf("listener ran %d times, want 1", got)
	}
}

func TestDecorationEventRidesContentEmit(t *testing.T) {
	n := NewNotifier()

	var content, dec []int64
	n.OnContentChanged(func(ev ContentChanged) { content = append(content, ev.Version) })
	n.OnDecorationsChanged(func(ev DecorationsChanged) { dec = append(dec, ev.Version) })

	n.EmitContent(ContentChanged{Version: 2}, &DecorationsChanged{Version: 2})
	n.EmitContent(ContentChanged{Version: 3}, nil)

	if len(content) != 2 {
		t.Errorf("content events: %v", content)
	}
	if len(dec) != 1 || dec[0] != 2 {
		t.Errorf("decoration events: %v", dec)
	}
}

func TestConcurrentEmitsStayOrdered(t *testing.T) {
	n := NewNotifier()

	var mu sync.Mutex
	perEmitter := make(map[int][]int64)
	n.OnContentChanged(func(ev ContentChanged) {
		mu.Lock()
		emitter := int(ev.Version >> 32)
		perEmitter[emitter] = append(perEmitter[emitter], ev.Version&0xffffffff)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for e := 0; e < 4; e++ {
		wg.Add(1)
		go func(e int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				n.EmitContent(ContentChanged{Version: int64(e)<<32 | int64(i)}, nil)
			}
		}(e)
	}
	wg.Wait()

	for e, seq := range perEmitter {
		if len(seq) != 100 {
			t.Fatalf("emitter %d delivered %d events", e, len(seq))
		}
		for i := 1; i < len(seq); i++ {
			if seq[i] <= seq[i-1] {
				t.Fatalf("emitter %d out of order at %d: %d then %d", e, i, seq[i-1], seq[i])
			}
		}
	}
}

func TestLogAppendAndSince(t *testing.T) {
	l := NewLog(8)

	for v := int64(2); v <= 6; v++ {
		l.Append(ContentChanged{Version: v})
	}

	events, ok := l.Since(3)
	if !ok {
		t.Fatal("expected ok")
	}
	if len(events) != 3 || events[0].Version != 4 || events[2].Version != 6 {
		t.Errorf("Since(3) = %+v", events)
	}

	if events, ok := l.Since(6); !ok || len(events) != 0 {
		t.Errorf("Since(newest) = %+v, %v", events, ok)
	}
}

func TestLogSinceReportsGap(t *testing.T) {
	l := NewLog(4)

	for v := int64(2); v <= 9; v++ {
		l.Append(ContentChanged{Version: v}) // retains 6..9
	}

	if _, ok := l.Since(3); ok {
		t.Error("expected gap: version 4 has been dropped")
	}
	if events, ok := l.Since(5); !ok || len(events) != 4 {
		t.Errorf("Since(5) = %d events, %v", len(events), ok)
	}
}

func TestLogLatestAndClear(t *testing.T) {
	l := NewLog(4)

	if _, ok := l.Latest(); ok {
		t.Error("empty log has no latest")
	}
	l.Append(ContentChanged{Version: 2})
	l.Append(ContentChanged{Version: 3})

	latest, ok := l.Latest()
	if !ok || latest.Version != 3 {
		t.Errorf("Latest = %+v, %v", latest, ok)
	}

	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len after Clear = %d", l.Len())
	}
	if events, ok := l.Since(0); !ok || events != nil {
		t.Errorf("Since on cleared log = %+v, %v", events, ok)
	}
}
