package diag

import (
	"sync"

	"ilnorm/internal/source"
)

// Reporter принимает диагностики от проходов. Реализации в этом
// пакете: BagReporter, SyncReporter, DedupReporter.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note)
}

// Emit sends d to r. A nil r drops it.
func Emit(r Reporter, d Diagnostic) {
	if r != nil {
		r.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
	}
}

// BagReporter collects into Bag; a nil Bag drops everything.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r.Bag != nil {
		r.Bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes})
	}
}

// SyncReporter serialises Report calls so several units normalized in
// parallel can share one sink.
type SyncReporter struct {
	mu   sync.Mutex
	next Reporter
}

func NewSyncReporter(next Reporter) *SyncReporter {
	return &SyncReporter{next: next}
}

func (r *SyncReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil || r.next == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next.Report(code, sev, primary, msg, notes)
}
