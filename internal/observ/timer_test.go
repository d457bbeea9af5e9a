package observ

import (
	"sync"
	"testing"
	"time"
)

func TestTimerStats(t *testing.T) {
	timer := NewTimer()
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			timer.Record("cast_elision", time.Duration(i+1)*time.Millisecond, string(rune('A'+i)))
		}()
	}
	wg.Wait()
	timer.End(timer.Begin("load"), "3 units")

	stats := timer.Stats()
	if len(stats) != 2 || stats[0].Name != "cast_elision" || stats[1].Name != "load" {
		t.Fatalf("unexpected stats %+v", stats)
	}
	cast := stats[0]
	if cast.Count != 4 || cast.Total != 10*time.Millisecond || cast.Max != 4*time.Millisecond || cast.MaxNote != "D" {
		t.Fatalf("cast_elision stat = %+v", cast)
	}
	report := timer.Report()
	if len(report.Phases) != 5 || report.TotalMS < 10 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Phases[4].Note != "3 units" {
		t.Fatalf("load note = %q", report.Phases[4].Note)
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var timer *Timer
	timer.End(timer.Begin("x"), "")
	timer.Record("y", time.Second, "")
	if r := timer.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer reported phases")
	}
	if timer.Stats() != nil {
		t.Fatalf("nil timer has stats")
	}
}
