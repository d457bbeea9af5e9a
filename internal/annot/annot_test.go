package annot

import (
	"errors"
	"testing"

	"ilnorm/internal/ast"
	"ilnorm/internal/source"
	"ilnorm/internal/types"
)

func TestSetTypeRefusesConflicts(t *testing.T) {
	table := New()
	id := ast.NodeID(3)
	if _, ok := table.Type(id); ok {
		t.Fatalf("fresh table must have no annotation")
	}
	if err := table.SetType(id, "int"); err != nil {
		t.Fatalf("SetType: %v", err)
	}
	if err := table.SetType(id, "System.Int32"); err != nil {
		t.Fatalf("same type in other spelling must be accepted: %v", err)
	}
	if err := table.SetType(id, "long"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if got, _ := table.Type(id); got != "int" {
		t.Fatalf("conflict must keep original annotation, got %q", got)
	}
	if err := table.SetType(ast.NoNodeID, "int"); err == nil {
		t.Fatalf("annotating NoNodeID must fail")
	}
}

func TestStaticTypeFallbacks(t *testing.T) {
	tree := ast.NewTree(nil, ast.Hints{})
	table := New()
	x := tree.NewIdent(source.Span{}, "x")
	cast := tree.NewCast(source.Span{}, "long", x)
	lit := tree.NewLiteral(source.Span{}, "System.Int32", "1")

	if _, ok := StaticType(tree, table, x); ok {
		t.Fatalf("unannotated identifier has no static type")
	}
	if got, ok := StaticPrim(tree, table, cast); !ok || got != types.PrimLong {
		t.Fatalf("cast static type = %s,%v", got, ok)
	}
	if got, ok := StaticPrim(tree, table, lit); !ok || got != types.PrimInt {
		t.Fatalf("literal static type = %s,%v", got, ok)
	}
	if err := table.SetType(x, "ushort"); err != nil {
		t.Fatalf("SetType: %v", err)
	}
	if got, _ := table.Prim(x); got != types.PrimUShort {
		t.Fatalf("annotation lookup = %s", got)
	}
}
