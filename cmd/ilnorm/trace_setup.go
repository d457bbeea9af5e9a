package main

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/spf13/cobra"

	"ilnorm/internal/driver"
	"ilnorm/internal/trace"
)

// traceRing is the in-memory buffer of --trace-mode ring|both, dumped to
// stderr when a command fails.
var traceRing *trace.RingTracer

// dumpTrace writes the ring buffer, if any, to stderr.
func dumpTrace(w io.Writer) {
	if traceRing == nil {
		return
	}
	if dropped := traceRing.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "trace: last events before failure (%d older events dropped)\n", dropped)
	} else {
		fmt.Fprintln(w, "trace: last events before failure")
	}
	if err := traceRing.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}

// setupTracing merges trace flags with the [trace] section and attaches the
// tracer to the command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	traceOutput, err := stringSetting(cmd, "trace", appConfig.Trace.Output)
	if err != nil {
		return nil, err
	}
	levelStr, err := stringSetting(cmd, "trace-level", appConfig.Trace.Level)
	if err != nil {
		return nil, err
	}
	modeStr, err := stringSetting(cmd, "trace-mode", appConfig.Trace.Mode)
	if err != nil {
		return nil, err
	}
	formatStr, err := stringSetting(cmd, "trace-format", appConfig.Trace.Format)
	if err != nil {
		return nil, err
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace without a level means "everything up to unit events"
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelDetail
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	root.SetContext(ctx)

	traceRing = trace.FindRing(tracer)
	heartbeat := trace.StartHeartbeat(tracer, heartbeatInterval, heartbeatStatus)

	return func() {
		traceRing = nil
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}

// runProgress is the Counter of the normalize run in flight, if any.
var runProgress atomic.Pointer[driver.Counter]

func heartbeatStatus() string {
	return runProgress.Load().String()
}
