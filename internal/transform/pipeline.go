package transform

import (
	"context"
	"fmt"
	"time"

	"ilnorm/internal/diag"
	"ilnorm/internal/observ"
	"ilnorm/internal/trace"
	"ilnorm/internal/unit"
)

// Config selects passes and sinks for a Pipeline.
type Config struct {
	CastElision bool
	Overloads   bool
	// Validate re-checks tree well-formedness after every pass.
	Validate bool
	Reporter diag.Reporter
	// Timer receives one phase per pass per unit; may be shared.
	Timer *observ.Timer
}

// DefaultConfig enables every pass.
func DefaultConfig() Config {
	return Config{CastElision: true, Overloads: true}
}

// PassResult is what one pass did to one unit.
type PassResult struct {
	Pass    string
	Stats   Stats
	Elapsed time.Duration
}

// Result summarises a pipeline run over one unit.
type Result struct {
	Unit   string
	Passes []PassResult
}

// Changes counts rewrites over all passes.
func (r Result) Changes() int {
	n := 0
	for _, p := range r.Passes {
		n += p.Stats.Changed
	}
	return n
}

// Pipeline runs the passes in a fixed order: cast elision first, then
// overload pinning, so pinning sees arguments after redundant casts are gone.
// A Pipeline is immutable and may normalize several units concurrently, one
// goroutine per unit.
type Pipeline struct {
	passes   []Pass
	validate bool
	reporter diag.Reporter
	timer    *observ.Timer
}

// New builds a pipeline from cfg.
func New(cfg Config) *Pipeline {
	p := &Pipeline{validate: cfg.Validate, reporter: cfg.Reporter, timer: cfg.Timer}
	if cfg.CastElision {
		p.passes = append(p.passes, CastElision{})
	}
	if cfg.Overloads {
		p.passes = append(p.passes, OverloadPinning{})
	}
	return p
}

// Passes lists pass names in execution order.
func (p *Pipeline) Passes() []string {
	out := make([]string, len(p.passes))
	for i, pass := range p.passes {
		out[i] = pass.Name()
	}
	return out
}

// Run normalizes u in place. Each pass is a full, uninterrupted traversal;
// ctx is only consulted between passes.
func (p *Pipeline) Run(ctx context.Context, u *unit.Unit) (Result, error) {
	res := Result{Unit: u.Name}
	tracer := trace.FromContext(ctx)
	ctx, unitSpan := trace.StartSpan(ctx, trace.ScopeUnit, "normalize:"+u.Name)
	defer func() { unitSpan.End(fmt.Sprintf("changed=%d", res.Changes())) }()

	for _, pass := range p.passes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, span := trace.StartSpan(ctx, trace.ScopePass, pass.Name())
		env := &Env{Reporter: p.reporter, Tracer: tracer, SpanID: span.ID()}

		start := time.Now()
		stats := pass.Run(u, env)
		elapsed := time.Since(start)

		span.WithExtra("unit", u.Name).End(stats.String())
		p.timer.Record(pass.Name(), elapsed, u.Name)
		res.Passes = append(res.Passes, PassResult{Pass: pass.Name(), Stats: stats, Elapsed: elapsed})

		if p.validate {
			if err := u.Validate(); err != nil {
				return res, fmt.Errorf("after %s: %w", pass.Name(), err)
			}
		}
	}
	return res, nil
}
