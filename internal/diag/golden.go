package diag

import (
	"fmt"
	"sort"
	"strings"

	"ilnorm/internal/source"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Unit     string
	Start    uint32
	Message  string
}

// FormatGolden renders diagnostics into a stable, single-line-per-entry
// representation: `severity CODE unit:IL_xxxx message`. unitName maps span
// units to display names; nil prints the numeric id.
func FormatGolden(diags []Diagnostic, unitName func(source.UnitID) string, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	if unitName == nil {
		unitName = func(id source.UnitID) string { return fmt.Sprintf("unit%d", id) }
	}

	rendered := make([]goldenDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, goldenDiagnostic{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Unit:     unitName(d.Primary.Unit),
			Start:    d.Primary.Start,
			Message:  sanitizeMessage(d.Message),
		})
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			rendered = append(rendered, goldenDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Unit:     unitName(note.Span.Unit),
				Start:    note.Span.Start,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Unit != dj.Unit {
			return di.Unit < dj.Unit
		}
		if di.Start != dj.Start {
			return di.Start < dj.Start
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:IL_%04x %s", d.Severity, d.Code, d.Unit, d.Start, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
