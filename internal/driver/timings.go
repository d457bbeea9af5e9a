package driver

import (
	"encoding/json"
	"fmt"

	"ilnorm/internal/diag"
	"ilnorm/internal/observ"
	"ilnorm/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "normalize"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s, %s", msg, payload.Path)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	bag.AddAlways(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).
		WithNote(source.Span{}, string(data)))
}

// timingsOf turns a timer report into the payload attached as a diagnostic.
func timingsOf(kind, path string, report observ.Report) timingPayload {
	return timingPayload{Kind: kind, Path: path, TotalMS: report.TotalMS, Phases: report.Phases}
}
