package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat emits a driver-scope event every interval while a run is in
// progress. Heartbeats that keep coming without span ends point at a pass
// that never returns. status, when set, is appended to each beat, e.g. how
// many units have finished.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	status   func() string
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// StartHeartbeat returns nil when tracing is off or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration, status func() string) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		status:   status,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case <-ticker.C:
			detail := fmt.Sprintf("#%d", beat)
			if h.status != nil {
				detail += " " + h.status()
			}
			h.tracer.Emit(&Event{
				Time:   time.Now(),
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    getGoroutineID(),
				Name:   "heartbeat",
				Detail: detail,
			})
		case <-h.stop:
			return
		}
	}
}

// Stop ends the loop and waits for it. Safe to call more than once and on nil.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
