package transform

import (
	"fmt"
	"strings"
	"testing"

	"ilnorm/internal/ast"
	"ilnorm/internal/diag"
	"ilnorm/internal/source"
	"ilnorm/internal/symbols"
	"ilnorm/internal/types"
	"ilnorm/internal/unit"
)

var sp = source.Span{Unit: 1}

type fixture struct {
	t    *testing.T
	u    *unit.Unit
	tree *ast.Tree
	bag  *diag.Bag
}

func newFixture(t *testing.T, decls ...*symbols.TypeSymbol) *fixture {
	t.Helper()
	table, err := symbols.NewTable(symbols.WithBuiltins(decls...)...)
	if err != nil {
		t.Fatalf("symbols: %v", err)
	}
	u := unit.New(1, "Demo", table)
	return &fixture{t: t, u: u, tree: u.Tree, bag: diag.NewBag(100)}
}

func (f *fixture) env() *Env {
	return &Env{Reporter: diag.BagReporter{Bag: f.bag}}
}

// local creates an identifier annotated with typ.
func (f *fixture) local(name string, typ types.TypeName) ast.NodeID {
	f.t.Helper()
	id := f.tree.NewIdent(sp, name)
	if typ != types.NoTypeName {
		if err := f.u.Annots.SetType(id, typ); err != nil {
			f.t.Fatalf("annotate %s: %v", name, err)
		}
	}
	return id
}

// method wraps stmts in `returnType Demo.C.M()` and makes it the unit root.
func (f *fixture) method(returnType string, stmts ...ast.NodeID) ast.NodeID {
	body := f.tree.NewBlock(sp, stmts...)
	m := f.tree.NewMethod(sp, "Demo.C", "M", returnType, nil, body)
	f.tree.NewUnit(sp, "Demo", m)
	return m
}

func (f *fixture) run(p Pass) Stats {
	f.t.Helper()
	stats := p.Run(f.u, f.env())
	if err := f.u.Validate(); err != nil {
		f.t.Fatalf("%s left a malformed tree: %v", p.Name(), err)
	}
	return stats
}

// render prints an expression or statement in a compact prefix form used
// only for assertions.
func render(tree *ast.Tree, id ast.NodeID) string {
	switch tree.Kind(id) {
	case ast.KindIdent:
		d, _ := tree.Ident(id)
		return tree.Name(d.Name)
	case ast.KindLiteral:
		d, _ := tree.Literal(id)
		return tree.Name(d.Value)
	case ast.KindNull:
		return "null"
	case ast.KindThis:
		return "this"
	case ast.KindBinary:
		d, _ := tree.Binary(id)
		return fmt.Sprintf("(%s %s %s)", render(tree, d.Left), d.Op, render(tree, d.Right))
	case ast.KindUnary:
		d, _ := tree.Unary(id)
		return fmt.Sprintf("%s%s", d.Op, render(tree, d.Operand))
	case ast.KindCast:
		d, _ := tree.Cast(id)
		name, _ := tree.TypeRefName(d.Type)
		return fmt.Sprintf("(%s)%s", name, render(tree, d.Value))
	case ast.KindCall:
		d, _ := tree.Call(id)
		args := make([]string, len(d.Args))
		for i, a := range d.Args {
			args[i] = render(tree, a)
		}
		return fmt.Sprintf("%s(%s)", render(tree, d.Target), strings.Join(args, ", "))
	case ast.KindMember:
		d, _ := tree.Member(id)
		return render(tree, d.Target) + "." + tree.Name(d.Name)
	case ast.KindReturn:
		d, _ := tree.Return(id)
		if !d.Value.IsValid() {
			return "return"
		}
		return "return " + render(tree, d.Value)
	case ast.KindExprStmt:
		d, _ := tree.ExprStmt(id)
		return render(tree, d.Value)
	case ast.KindBlock:
		d, _ := tree.Block(id)
		parts := make([]string, len(d.Stmts))
		for i, s := range d.Stmts {
			parts[i] = render(tree, s)
		}
		return "{" + strings.Join(parts, "; ") + "}"
	case ast.KindMethod:
		d, _ := tree.Method(id)
		return render(tree, d.Body)
	case ast.KindUnit:
		d, _ := tree.Unit(id)
		parts := make([]string, len(d.Members))
		for i, m := range d.Members {
			parts[i] = render(tree, m)
		}
		return strings.Join(parts, "\n")
	}
	return "?"
}
