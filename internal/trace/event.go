package trace

import "time"

// Kind tells spans, points and heartbeats apart.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope orders events from coarse to fine; a Level records every scope up
// to some depth.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // the whole NormalizeAll run
	ScopePass                    // one pass over one unit
	ScopeUnit                    // loading, caching and writing a unit
	ScopeNode                    // a single rewrite
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopePass:   "pass",
	ScopeUnit:   "unit",
	ScopeNode:   "node",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. Tracers copy what they keep; the emitter may
// reuse nothing after Emit returns.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned at emission, monotonic across goroutines
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for top-level spans
	GID      uint64 // goroutine that emitted the event
	Name     string // pass name, "normalize:<unit>", rewrite kind
	Detail   string
	Extra    map[string]string
}
