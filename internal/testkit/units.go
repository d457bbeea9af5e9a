// Package testkit builds small units for tests and checks the invariants
// every normalized unit must keep.
package testkit

import (
	"ilnorm/internal/ast"
	"ilnorm/internal/source"
	"ilnorm/internal/symbols"
	"ilnorm/internal/types"
	"ilnorm/internal/unit"
)

// RedundantCastUnit builds `long M() { return (long)a + b; }` with a:int
// and b:long. Cast elision removes the cast.
func RedundantCastUnit(id source.UnitID, name string) (*unit.Unit, error) {
	table, err := symbols.NewTable(symbols.WithBuiltins()...)
	if err != nil {
		return nil, err
	}
	u := unit.New(id, name, table)
	tr := u.Tree
	sp := source.Span{Unit: id}
	a := tr.NewIdent(sp, "a")
	b := tr.NewIdent(sp, "b")
	sum := tr.NewBinary(sp, ast.BinaryAdd, tr.NewCast(sp, "long", a), b)
	body := tr.NewBlock(sp, tr.NewReturn(sp, sum))
	tr.NewUnit(sp, name, tr.NewMethod(sp, "Demo.C", "M", "long", nil, body))
	for node, typ := range map[ast.NodeID]types.TypeName{a: "int", b: "long"} {
		if err := u.Annots.SetType(node, typ); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// SaveRedundantCastUnit writes RedundantCastUnit to path; the extension
// picks the encoding.
func SaveRedundantCastUnit(path, name string) error {
	u, err := RedundantCastUnit(1, name)
	if err != nil {
		return err
	}
	return unit.Save(path, u)
}
