package format

import "bytes"

// Writer builds printer output line by line. Indentation is emitted lazily,
// when the first text of a line arrives, so blank lines carry none.
type Writer struct {
	out    bytes.Buffer
	unit   string // one indentation step
	depth  int
	atBOL  bool
	blanks int // trailing '\n' count
}

func NewWriter(opt Options) *Writer {
	opt = opt.withDefaults()
	unit := "\t"
	if !opt.UseTabs {
		unit = string(bytes.Repeat([]byte{' '}, opt.IndentWidth))
	}
	return &Writer{unit: unit, atBOL: true}
}

func (w *Writer) Bytes() []byte { return w.out.Bytes() }

// WriteString appends s; a trailing '\n' starts a new line.
func (w *Writer) WriteString(s string) {
	if s == "" {
		return
	}
	if w.atBOL {
		for range w.depth {
			w.out.WriteString(w.unit)
		}
	}
	w.out.WriteString(s)
	w.atBOL = s[len(s)-1] == '\n'
	w.blanks = 0
	if w.atBOL {
		w.blanks = 1
	}
}

// Space separates tokens unless the output already ends in whitespace.
func (w *Writer) Space() {
	b := w.out.Bytes()
	if len(b) == 0 || w.atBOL {
		return
	}
	if c := b[len(b)-1]; c == ' ' || c == '\t' {
		return
	}
	w.out.WriteByte(' ')
}

// Newline ends the current line; it never produces an empty line.
func (w *Writer) Newline() {
	if w.out.Len() > 0 && w.blanks == 0 {
		w.out.WriteByte('\n')
		w.blanks = 1
	}
	w.atBOL = true
}

// BlankLine leaves exactly one empty line before whatever comes next.
func (w *Writer) BlankLine() {
	if w.out.Len() == 0 {
		return
	}
	w.Newline()
	if w.blanks < 2 {
		w.out.WriteByte('\n')
		w.blanks = 2
	}
}

func (w *Writer) IndentPush() { w.depth++ }

func (w *Writer) IndentPop() {
	if w.depth > 0 {
		w.depth--
	}
}
