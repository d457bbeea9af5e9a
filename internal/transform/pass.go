// Package transform holds the normalization passes that turn a mechanically
// reconstructed tree into source a person would write: redundant numeric
// casts are removed and ambiguous overloaded calls are pinned with casts.
//
// Passes never fail on incomplete input. A node without annotations, a type
// that does not resolve or a cast to a non-primitive type is left as it is.
package transform

import (
	"fmt"

	"ilnorm/internal/diag"
	"ilnorm/internal/source"
	"ilnorm/internal/trace"
	"ilnorm/internal/unit"
)

// Pass is one whole-tree traversal over a unit.
type Pass interface {
	Name() string
	Run(u *unit.Unit, env *Env) Stats
}

// Env carries the sinks a pass reports into. Every field may be nil.
type Env struct {
	Reporter diag.Reporter
	Tracer   trace.Tracer
	SpanID   uint64
}

func (e *Env) remark(code diag.Code, sp source.Span, format string, args ...any) {
	if e == nil || e.Reporter == nil {
		return
	}
	diag.Emit(e.Reporter, diag.New(diag.SevInfo, code, sp, fmt.Sprintf(format, args...)))
}

func (e *Env) warn(code diag.Code, sp source.Span, format string, args ...any) {
	if e == nil || e.Reporter == nil {
		return
	}
	diag.Emit(e.Reporter, diag.NewWarning(code, sp, fmt.Sprintf(format, args...)))
}

// point traces a single rewrite or skip at node scope.
func (e *Env) point(name, detail string) {
	if e == nil || e.Tracer == nil {
		return
	}
	trace.Point(e.Tracer, trace.ScopeNode, name, detail, e.SpanID)
}

// Stats counts what a pass looked at and what it changed.
type Stats struct {
	Visited int
	Changed int
	Skipped int
}

func (s Stats) String() string {
	return fmt.Sprintf("visited=%d changed=%d skipped=%d", s.Visited, s.Changed, s.Skipped)
}

// Add sums two counters.
func (s Stats) Add(o Stats) Stats {
	return Stats{Visited: s.Visited + o.Visited, Changed: s.Changed + o.Changed, Skipped: s.Skipped + o.Skipped}
}
