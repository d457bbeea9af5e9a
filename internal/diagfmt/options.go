package diagfmt

import (
	"fmt"
	"path/filepath"

	"ilnorm/internal/source"
)

// PathMode specifies how unit paths are displayed.
type PathMode uint8

const (
	// PathModeAsGiven prints paths the way they were passed in.
	PathModeAsGiven PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeBasename
)

// UnitNames maps span units to the path of the file they were loaded from.
type UnitNames func(source.UnitID) string

func (n UnitNames) path(id source.UnitID, mode PathMode) string {
	var p string
	if n != nil {
		p = n(id)
	}
	if p == "" {
		return fmt.Sprintf("unit%d", id)
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
	case PathModeBasename:
		return filepath.Base(p)
	}
	return p
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
