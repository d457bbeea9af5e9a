package driver

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stage describes where a unit is in NormalizeAll.
type Stage string

const (
	StageLoad      Stage = "load"
	StageNormalize Stage = "normalize"
	StageWrite     Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the unit is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the unit is currently in Stage.
	StatusWorking Status = "working"
	// StatusDone indicates the unit is finished.
	StatusDone Status = "done"
	// StatusCached indicates the unit was served from the disk cache.
	StatusCached Status = "cached"
	// StatusError indicates the unit failed; Err says why.
	StatusError Status = "error"
)

// Event reports progress for one unit file (or for the whole run when Unit is empty).
type Event struct {
	Unit    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Finished reports whether no more events follow for this unit.
func (e Event) Finished() bool {
	return e.Status == StatusDone || e.Status == StatusCached || e.Status == StatusError
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: workers report directly.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

// MultiSink forwards every event to each non-nil sink in order.
type MultiSink []ProgressSink

func (m MultiSink) OnEvent(evt Event) {
	for _, s := range m {
		emit(s, evt)
	}
}

// Counter tallies finished units. It is what the trace heartbeat prints
// while a long run is in progress.
type Counter struct {
	queued atomic.Int64
	done   atomic.Int64
	cached atomic.Int64
	failed atomic.Int64
}

func (c *Counter) OnEvent(evt Event) {
	switch evt.Status {
	case StatusQueued:
		c.queued.Add(1)
	case StatusDone:
		c.done.Add(1)
	case StatusCached:
		c.cached.Add(1)
	case StatusError:
		c.failed.Add(1)
	}
}

// Finished is the number of units with a final event.
func (c *Counter) Finished() int64 {
	return c.done.Load() + c.cached.Load() + c.failed.Load()
}

func (c *Counter) String() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("units=%d/%d cached=%d failed=%d",
		c.Finished(), c.queued.Load(), c.cached.Load(), c.failed.Load())
}
