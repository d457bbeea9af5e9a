// Package observ measures where normalization time goes.
package observ

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Phase is one measured interval: a pass over a unit, loading, writing.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects phases. Workers of one run share a Timer, so it locks on
// every call. A nil *Timer accepts every call and records nothing.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

func NewTimer() *Timer { return &Timer{} }

// Begin opens a phase; pass the result to End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

func (t *Timer) End(idx int, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	t.phases[idx].Dur = time.Since(t.phases[idx].Start)
	t.phases[idx].Note = note
}

// Record adds a phase measured by the caller.
func (t *Timer) Record(name string, dur time.Duration, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now().Add(-dur), Dur: dur, Note: note})
}

// PhaseReport is the serialized form of a Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report lists phases in the order they were opened.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	if t == nil {
		return r
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: Millis(p.Dur), Note: p.Note})
	}
	r.TotalMS = Millis(total)
	return r
}

// Stat aggregates every phase of one name, e.g. cast_elision over all units.
type Stat struct {
	Name  string
	Count int
	Total time.Duration
	Max   time.Duration
	// MaxNote is the note of the slowest phase; passes record the unit name.
	MaxNote string
}

// Stats returns one Stat per phase name, sorted by name.
func (t *Timer) Stats() []Stat {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	byName := make(map[string]*Stat)
	for _, p := range t.phases {
		s, ok := byName[p.Name]
		if !ok {
			s = &Stat{Name: p.Name}
			byName[p.Name] = s
		}
		s.Count++
		s.Total += p.Dur
		if p.Dur >= s.Max {
			s.Max, s.MaxNote = p.Dur, p.Note
		}
	}
	out := make([]Stat, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b Stat) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
