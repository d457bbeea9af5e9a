// Package unit holds one compilation unit as the normalization core sees it
// (tree, annotations, symbols) and the file codec that moves units between
// the upstream reconstruction stage, this tool and the printer.
package unit

import (
	"fmt"

	"ilnorm/internal/annot"
	"ilnorm/internal/ast"
	"ilnorm/internal/source"
	"ilnorm/internal/symbols"
	"ilnorm/internal/types"
)

// Unit is exclusively owned by the pipeline invocation normalizing it.
// Symbols is read-only and may be shared.
type Unit struct {
	ID      source.UnitID
	Name    string
	Tree    *ast.Tree
	Annots  *annot.Table
	Symbols symbols.Resolver
}

// New returns an empty unit with a fresh tree and annotation table.
func New(id source.UnitID, name string, syms symbols.Resolver) *Unit {
	return &Unit{
		ID:      id,
		Name:    name,
		Tree:    ast.NewTree(nil, ast.Hints{}),
		Annots:  annot.New(),
		Symbols: syms,
	}
}

// Validate checks tree well-formedness and that annotations point at nodes
// of the tree.
func (u *Unit) Validate() error {
	if u.Tree == nil {
		return fmt.Errorf("unit %s: no tree", u.Name)
	}
	if err := u.Tree.Validate(); err != nil {
		return fmt.Errorf("unit %s: %w", u.Name, err)
	}
	var bad ast.NodeID
	u.Annots.Each(func(id ast.NodeID, _ types.TypeName) {
		if u.Tree.Get(id) == nil && !bad.IsValid() {
			bad = id
		}
	})
	if bad.IsValid() {
		return fmt.Errorf("unit %s: annotation on unknown node %d", u.Name, bad)
	}
	return nil
}
