package trace

import (
	"bytes"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq hands out event sequence numbers.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID hands out span ids; 0 is never returned.
func NextSpanID() uint64 { return spanCounter.Add(1) }

var goroutinePrefix = []byte("goroutine ")

// getGoroutineID parses the header line of runtime.Stack, e.g.
// "goroutine 17 [running]:". Returns 0 if the format ever changes.
func getGoroutineID() uint64 {
	var buf [64]byte
	line := buf[:runtime.Stack(buf[:], false)]
	line, ok := bytes.CutPrefix(line, goroutinePrefix)
	if !ok {
		return 0
	}
	digits, _, _ := bytes.Cut(line, []byte(" "))
	gid, err := strconv.ParseUint(string(digits), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// Span is an open begin event; End closes it. A span created while its
// scope is filtered out is inert: every method is a no-op and ID is 0.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	gid      uint64
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
}

func (s *Span) live() bool {
	return s != nil && s.id != 0
}

// Begin opens a span below parent (0 for a top-level span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop}
	}
	s := &Span{
		tracer:   t,
		id:       NextSpanID(),
		parentID: parent,
		gid:      getGoroutineID(),
		scope:    scope,
		name:     name,
		started:  time.Now(),
	}
	s.emit(KindSpanBegin, s.started, "", nil)
	return s
}

func (s *Span) emit(kind Kind, at time.Time, detail string, extra map[string]string) {
	s.tracer.Emit(&Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		GID:      s.gid,
		Name:     s.name,
		Detail:   detail,
		Extra:    extra,
	})
}

// End emits the end event with detail and any WithExtra pairs, and returns
// how long the span was open.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	now := time.Now()
	s.emit(KindSpanEnd, now, detail, s.extra)
	return now.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 1)
	}
	s.extra[key] = value
	return s
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event under parent. Node-scope points are how
// passes report individual rewrites at LevelDebug.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		GID:      getGoroutineID(),
		Name:     name,
		Detail:   detail,
	})
}
