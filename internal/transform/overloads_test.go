package transform

import (
	"testing"

	"ilnorm/internal/ast"
	"ilnorm/internal/diag"
	"ilnorm/internal/symbols"
	"ilnorm/internal/types"
)

func method(name string, params ...types.TypeName) *symbols.MethodSymbol {
	m := &symbols.MethodSymbol{Declaring: "Demo.C", Name: name, Return: "void"}
	for _, p := range params {
		m.Params = append(m.Params, symbols.ParamSymbol{Name: "p", Type: p})
	}
	return m
}

func demoType(methods ...*symbols.MethodSymbol) *symbols.TypeSymbol {
	return &symbols.TypeSymbol{FullName: "Demo.C", Base: "System.Object", Methods: methods}
}

// call builds `this.name(args...)` annotated with the callee m.
func (f *fixture) call(m *symbols.MethodSymbol, args ...ast.NodeID) (call, stmt ast.NodeID) {
	target := f.tree.NewMember(sp, f.tree.NewThis(sp), m.Name)
	call = f.tree.NewCall(sp, target, args...)
	f.u.Annots.SetMethod(call, m.Ref())
	return call, f.tree.NewExprStmt(sp, call)
}

func TestOverloadLiteralSelectsOriginal(t *testing.T) {
	fInt, fLong := method("F", "int"), method("F", "long")
	f := newFixture(t, demoType(fInt, fLong))
	_, stmt := f.call(fInt, f.tree.NewLiteral(sp, "System.Int32", "1"))
	f.method("void", stmt)

	stats := f.run(OverloadPinning{})
	if got := render(f.tree, stmt); got != "this.F(1)" {
		t.Fatalf("no cast expected, got %s", got)
	}
	if stats.Changed != 0 || stats.Visited != 1 {
		t.Fatalf("unexpected stats %s", stats)
	}
}

func TestOverloadUnknownArgumentIsPinned(t *testing.T) {
	fInt, fLong := method("F", "int"), method("F", "long")
	f := newFixture(t, demoType(fInt, fLong))
	call, stmt := f.call(fInt, f.local("x", ""))
	f.method("void", stmt)

	stats := f.run(OverloadPinning{})
	if got := render(f.tree, stmt); got != "this.F((int)x)" {
		t.Fatalf("got %s", got)
	}
	if stats.Changed != 1 {
		t.Fatalf("unexpected stats %s", stats)
	}
	d, _ := f.tree.Call(call)
	if got, ok := f.u.Annots.Type(d.Args[0]); !ok || got != "int" {
		t.Fatalf("inserted cast annotation = %q,%v", got, ok)
	}
	items := f.bag.Items()
	if len(items) != 1 || items[0].Code != diag.NormOverloadPinned {
		t.Fatalf("expected one pin remark, got %+v", items)
	}
}

func TestOverloadLiteralOfOtherOverloadIsPinned(t *testing.T) {
	fInt, fLong := method("F", "int"), method("F", "System.Int64")
	f := newFixture(t, demoType(fInt, fLong))
	_, stmt := f.call(fLong, f.tree.NewLiteral(sp, "int", "1"))
	f.method("void", stmt)

	f.run(OverloadPinning{})
	if got := render(f.tree, stmt); got != "this.F((long)1)" {
		t.Fatalf("got %s", got)
	}
}

func TestOverloadCastsEveryArgument(t *testing.T) {
	g1 := method("G", "int", "System.String")
	g2 := method("G", "long", "System.String")
	f := newFixture(t, demoType(g1, g2))
	_, stmt := f.call(g1, f.local("n", "int"), f.tree.NewNull(sp))
	f.method("void", stmt)

	f.run(OverloadPinning{})
	if got := render(f.tree, stmt); got != "this.G((int)n, (System.String)null)" {
		t.Fatalf("got %s", got)
	}
}

func TestOverloadNullKeepsNullableCandidate(t *testing.T) {
	nullable := &symbols.TypeSymbol{FullName: "System.Nullable`1<System.Int32>", Base: "System.ValueType", ValueType: true}
	hStr, hOpt := method("H", "System.String"), method("H", "System.Nullable`1<System.Int32>")
	f := newFixture(t, nullable, demoType(hStr, hOpt))
	_, stmt := f.call(hStr, f.tree.NewNull(sp))
	f.method("void", stmt)

	stats := f.run(OverloadPinning{})
	if got := render(f.tree, stmt); got != "this.H((System.String)null)" {
		t.Fatalf("got %s", got)
	}
	if stats.Changed != 1 {
		t.Fatalf("unexpected stats %s", stats)
	}
}

func TestOverloadNullIsUnconstrained(t *testing.T) {
	hStr, hInt := method("H", "System.String"), method("H", "int")
	syms, err := symbols.NewTable(symbols.WithBuiltins(demoType(hStr, hInt))...)
	if err != nil {
		t.Fatal(err)
	}
	f := newFixture(t)
	arg := ArgTypeOf(f.tree, f.tree.NewNull(sp))
	if arg.Kind != ArgUnknown {
		t.Fatalf("null argument kind = %d", arg.Kind)
	}
	got, rounds := Reduce(syms, []*symbols.MethodSymbol{hStr, hInt}, []ArgType{arg})
	if len(got) != 2 || rounds != 0 {
		t.Fatalf("Reduce = %v (rounds %d)", got, rounds)
	}
}

func TestOverloadBaseChainAssignability(t *testing.T) {
	base := &symbols.TypeSymbol{FullName: "Demo.Animal", Base: "System.Object"}
	derived := &symbols.TypeSymbol{FullName: "Demo.Dog", Base: "Demo.Animal"}
	kAnimal, kInt := method("K", "Demo.Animal"), method("K", "int")
	syms, err := symbols.NewTable(symbols.WithBuiltins(base, derived, demoType(kAnimal, kInt))...)
	if err != nil {
		t.Fatal(err)
	}
	args := []ArgType{{Kind: ArgTyped, Type: "Demo.Dog"}}
	got, rounds := Reduce(syms, []*symbols.MethodSymbol{kAnimal, kInt}, args)
	if len(got) != 1 || got[0] != kAnimal || rounds != 1 {
		t.Fatalf("Reduce = %v (rounds %d)", got, rounds)
	}
}

func TestOverloadSkipsUnresolvable(t *testing.T) {
	fInt, fLong := method("F", "int"), method("F", "long")
	f := newFixture(t, demoType(fLong))
	// F(int) is not declared on Demo.C
	_, s1 := f.call(fInt, f.local("x", ""))

	ghost := method("Ghost", "int")
	ghost.Declaring = "Demo.Missing"
	_, s2 := f.call(ghost, f.local("y", ""))

	noMember := f.tree.NewCall(sp, f.tree.NewIdent(sp, "F"), f.local("z", ""))
	f.u.Annots.SetMethod(noMember, fInt.Ref())
	s3 := f.tree.NewExprStmt(sp, noMember)
	f.method("void", s1, s2, s3)

	stats := f.run(OverloadPinning{})
	if got := render(f.tree, f.tree.Root); got != "{this.F(x); this.Ghost(y); F(z)}" {
		t.Fatalf("got %s", got)
	}
	if stats.Changed != 0 || stats.Skipped != 2 {
		t.Fatalf("unexpected stats %s", stats)
	}
}

func TestOverloadPinningIsIdempotent(t *testing.T) {
	fInt, fLong := method("F", "int"), method("F", "long")
	f := newFixture(t, demoType(fInt, fLong))
	_, stmt := f.call(fLong, f.local("x", ""))
	f.method("void", stmt)

	f.run(OverloadPinning{})
	first := render(f.tree, stmt)
	second := f.run(OverloadPinning{})
	if got := render(f.tree, stmt); got != first || got != "this.F((long)x)" {
		t.Fatalf("second run changed %s into %s", first, got)
	}
	if second.Changed != 0 {
		t.Fatalf("second run reported changes: %s", second)
	}
}

func TestReduceConvergence(t *testing.T) {
	syms, err := symbols.NewTable(symbols.WithBuiltins()...)
	if err != nil {
		t.Fatal(err)
	}
	kinds := []types.TypeName{"int", "long", "System.Object", "System.String", "double"}
	argChoices := []ArgType{
		{Kind: ArgUnknown},
		{Kind: ArgTyped, Type: "int"},
		{Kind: ArgTyped, Type: "System.String"},
	}
	var cands []*symbols.MethodSymbol
	for _, a := range kinds {
		for _, b := range kinds {
			cands = append(cands, method("F", a, b))
		}
	}
	for _, x := range argChoices {
		for _, y := range argChoices {
			args := []ArgType{x, y}
			got, rounds := Reduce(syms, cands, args)
			if len(got) > len(cands) {
				t.Fatalf("Reduce grew the set for %v", args)
			}
			if rounds > len(args) {
				t.Fatalf("Reduce took %d rounds for %d args", rounds, len(args))
			}
			again, more := Reduce(syms, got, args)
			if len(got) > 1 && (len(again) != len(got) || more != 0) {
				t.Fatalf("Reduce did not reach a fixed point for %v", args)
			}
		}
	}
	if len(cands) != len(kinds)*len(kinds) {
		t.Fatalf("Reduce modified its input")
	}
}
