package diag

import "ilnorm/internal/source"

// identity is what makes two diagnostics the same remark. Notes are not
// part of it.
type identity struct {
	code Code
	sev  Severity
	span source.Span
	msg  string
}

// DedupReporter forwards each distinct diagnostic once. A pass that visits
// a node twice reports it once. Not safe for concurrent use; wrap the
// result in a SyncReporter when sharing.
type DedupReporter struct {
	next Reporter
	seen map[identity]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[identity]struct{})}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	key := identity{code: code, sev: sev, span: primary, msg: msg}
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}
