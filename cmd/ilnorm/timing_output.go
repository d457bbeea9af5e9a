package main

import (
	"fmt"
	"io"
	"time"

	"ilnorm/internal/observ"
)

// printPassTimings prints, per pass, the time spent over all units and the
// slowest unit.
func printPassTimings(out io.Writer, timer *observ.Timer) {
	stats := timer.Stats()
	if out == nil || len(stats) == 0 {
		return
	}
	var sum time.Duration
	for _, s := range stats {
		fmt.Fprintf(out, "%-18s %8.1f ms  x%d", s.Name, observ.Millis(s.Total), s.Count)
		if s.Count > 1 && s.MaxNote != "" {
			fmt.Fprintf(out, "  slowest %s %.1f ms", s.MaxNote, observ.Millis(s.Max))
		}
		fmt.Fprintln(out)
		sum += s.Total
	}
	fmt.Fprintf(out, "%-18s %8.1f ms\n", "total", observ.Millis(sum))
}
