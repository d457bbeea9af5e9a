package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ilnorm/internal/driver"
	"ilnorm/internal/ui"
)

type normalizeOutcome struct {
	report *driver.Report
	err    error
}

// runNormalizeWithUI runs NormalizeAll in the background and renders its
// progress until the last event arrives.
func runNormalizeWithUI(ctx context.Context, title string, files []string, opts driver.Options) (*driver.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan normalizeOutcome, 1)

	go func() {
		opts.Sink = driver.MultiSink{opts.Sink, driver.ChannelSink{Ch: events}}
		report, err := driver.NormalizeAll(ctx, files, opts)
		outcomeCh <- normalizeOutcome{report: report, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// UI quits early on ctrl+c: stop the workers and drain so none blocks on the channel
	cancel()
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
