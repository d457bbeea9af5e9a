package trace

import (
	"bufio"
	"io"
	"sync"
)

// leveled is the filtering both concrete tracers share. Heartbeats pass at
// any enabled level.
type leveled struct {
	level Level
}

func (l leveled) Level() Level  { return l.level }
func (l leveled) Enabled() bool { return l.level > LevelOff }

func (l leveled) accepts(ev *Event) bool {
	if ev.Kind == KindHeartbeat {
		return l.Enabled()
	}
	return l.level.ShouldEmit(ev.Scope)
}

// RingTracer keeps the most recent events in memory. It is dumped when a
// command fails so the lead-up to the failure is visible without having
// streamed a full trace.
type RingTracer struct {
	leveled
	mu     sync.RWMutex
	events []Event
	total  uint64 // events ever stored; total % len(events) is the next slot
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{leveled: leveled{level}, events: make([]Event, capacity)}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.accepts(ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	n := uint64(len(t.events))
	stored := *ev
	stored.Seq = NextSeq()
	t.events[t.total%n] = stored
	t.total++
}

// Snapshot copies the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := uint64(len(t.events))
	if t.total <= n {
		return append([]Event(nil), t.events[:t.total]...)
	}
	head := t.total % n
	out := make([]Event, 0, n)
	out = append(out, t.events[head:]...)
	return append(out, t.events[:head]...)
}

// Dropped is how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total - min(t.total, uint64(len(t.events)))
}

func (t *RingTracer) Dump(w io.Writer, format Format) error {
	bw := bufio.NewWriter(w)
	for _, ev := range t.Snapshot() {
		if _, err := bw.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }

// FindRing returns the ring buffer behind t, looking through a MultiTracer.
func FindRing(t Tracer) *RingTracer {
	switch tr := t.(type) {
	case *RingTracer:
		return tr
	case *MultiTracer:
		for _, inner := range tr.tracers {
			if r := FindRing(inner); r != nil {
				return r
			}
		}
	}
	return nil
}
