// Package trace is the logging layer of ilnorm: structured span and point
// events emitted by the driver and the normalization passes.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	ilnorm normalize --trace=- --trace-level=detail units/*.ilu
//
// # Architecture
//
//   - Nop: the tracer used when tracing is off
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped when a run fails
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only ring dumps on failure
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-unit events
//   - LevelDebug: everything including single rewrites
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "cast_elision", parentID)
//	defer span.End("")
package trace
