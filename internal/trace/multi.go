package trace

import "errors"

// MultiTracer fans out trace events to multiple tracers. Its level is the
// most verbose level among them.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer drops nil and disabled tracers.
func NewMultiTracer(tracers ...Tracer) *MultiTracer {
	m := &MultiTracer{}
	for _, tr := range tracers {
		if tr == nil || !tr.Enabled() {
			continue
		}
		m.tracers = append(m.tracers, tr)
		m.level = max(m.level, tr.Level())
	}
	return m
}

func (t *MultiTracer) Emit(ev *Event) {
	// each tracer filters by its own level
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

// Flush flushes every tracer and reports all failures.
func (t *MultiTracer) Flush() error {
	errs := make([]error, 0, len(t.tracers))
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

// Close closes every tracer, even after a failure.
func (t *MultiTracer) Close() error {
	errs := make([]error, 0, len(t.tracers))
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
