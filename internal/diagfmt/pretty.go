package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"ilnorm/internal/diag"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:IL_xxxx: <sev> <CODE>: <Message>
// затем Notes с отступом. Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, names UnitNames, opts PrettyOpts) error {
	paint := func(c *color.Color, s string) string {
		if !opts.Color {
			return s
		}
		c.EnableColor()
		return c.Sprint(s)
	}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	for _, d := range bag.Items() {
		loc := fmt.Sprintf("%s:IL_%04x", names.path(d.Primary.Unit, opts.PathMode), d.Primary.Start)
		sev := paint(severityColor(d.Severity), d.Severity.Label())
		code := paint(bold, d.Code.ID())
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", paint(bold, loc), sev, code, d.Message); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, note := range d.Notes {
			nloc := fmt.Sprintf("%s:IL_%04x", names.path(note.Span.Unit, opts.PathMode), note.Span.Start)
			if _, err := fmt.Fprintf(w, "  %s %s: %s\n", paint(faint, "note:"), nloc, note.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}
