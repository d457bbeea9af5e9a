package diagfmt

import (
	"encoding/json"
	"io"

	"ilnorm/internal/diag"
	"ilnorm/internal/source"
)

// LocationJSON is a half-open IL offset range inside a unit file.
type LocationJSON struct {
	Unit  string `json:"unit"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(span source.Span, names UnitNames, mode PathMode) LocationJSON {
	return LocationJSON{Unit: names.path(span.Unit, mode), Start: span.Start, End: span.End}
}

// BuildDiagnostics converts diagnostics without serializing them.
func BuildDiagnostics(items []diag.Diagnostic, names UnitNames, opts JSONOpts) []DiagnosticJSON {
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}
	out := make([]DiagnosticJSON, 0, maxItems)
	for i := range maxItems {
		d := items[i]
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, names, opts.PathMode),
		}
		// timings live in the notes
		if (opts.IncludeNotes || d.Code == diag.ObsTimings) && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{Message: note.Msg, Location: makeLocation(note.Span, names, opts.PathMode)}
			}
		}
		out = append(out, dj)
	}
	return out
}

// JSON writes the bag as a DiagnosticsOutput document.
func JSON(w io.Writer, bag *diag.Bag, names UnitNames, opts JSONOpts) error {
	diags := BuildDiagnostics(bag.Items(), names, opts)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(DiagnosticsOutput{Diagnostics: diags, Count: len(diags)})
}
