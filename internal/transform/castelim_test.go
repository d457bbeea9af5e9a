package transform

import (
	"testing"

	"ilnorm/internal/ast"
	"ilnorm/internal/diag"
	"ilnorm/internal/types"
)

func TestCastElisionKeepsBothWideningCasts(t *testing.T) {
	f := newFixture(t)
	sum := f.tree.NewBinary(sp, ast.BinaryAdd,
		f.tree.NewCast(sp, "long", f.local("x", "int")),
		f.tree.NewCast(sp, "long", f.local("y", "int")))
	stmt := f.tree.NewExprStmt(sp, sum)
	f.method("void", stmt)

	stats := f.run(CastElision{})
	if got := render(f.tree, stmt); got != "((long)x + (long)y)" {
		t.Fatalf("casts must be retained, got %s", got)
	}
	if stats.Changed != 0 || stats.Visited != 2 {
		t.Fatalf("unexpected stats %s", stats)
	}
	if _, ok := f.u.Annots.Type(sum); ok {
		t.Fatalf("unchanged operator must not be re-annotated")
	}
}

func TestCastElisionKeepsNarrowingCasts(t *testing.T) {
	f := newFixture(t)
	stmt := f.tree.NewExprStmt(sp, f.tree.NewBinary(sp, ast.BinaryAdd,
		f.tree.NewCast(sp, "uint", f.local("a", "int")),
		f.tree.NewCast(sp, "sbyte", f.local("b", "short"))))
	f.method("void", stmt)

	f.run(CastElision{})
	if got := render(f.tree, stmt); got != "((uint)a + (sbyte)b)" {
		t.Fatalf("casts must be retained, got %s", got)
	}
}

// ushort->uint is a safe widening, yet ushort+sbyte is int while uint+sbyte
// is long: the promotions disagree and the cast stays.
func TestCastElisionKeepsCastWhenPromotionsDisagree(t *testing.T) {
	if got, _ := types.PromoteBinary(types.PrimUShort, types.PrimSByte); got != types.PrimInt {
		t.Fatalf("ushort+sbyte = %s", got)
	}
	if got, _ := types.PromoteBinary(types.PrimUInt, types.PrimSByte); got != types.PrimLong {
		t.Fatalf("uint+sbyte = %s", got)
	}
	f := newFixture(t)
	sum := f.tree.NewBinary(sp, ast.BinaryAdd,
		f.tree.NewCast(sp, "uint", f.local("a", "ushort")),
		f.tree.NewCast(sp, "sbyte", f.local("b", "byte")))
	stmt := f.tree.NewExprStmt(sp, sum)
	f.method("void", stmt)

	stats := f.run(CastElision{})
	if got := render(f.tree, stmt); got != "((uint)a + (sbyte)b)" {
		t.Fatalf("casts must be retained, got %s", got)
	}
	if stats.Changed != 0 {
		t.Fatalf("unexpected stats %s", stats)
	}
}

func TestCastElisionRemovesRedundantOperandCast(t *testing.T) {
	cases := []struct {
		name     string
		op       ast.BinaryOp
		xType    types.TypeName
		zType    types.TypeName
		castTo   string
		want     string
		annotate types.TypeName
	}{
		{"add long", ast.BinaryAdd, "int", "System.Int64", "long", "(x + z)", "long"},
		{"mul ulong", ast.BinaryMul, "uint", "ulong", "System.UInt64", "(x * z)", "ulong"},
		{"byte to int", ast.BinaryBitAnd, "byte", "int", "int", "(x & z)", "int"},
		{"compare", ast.BinaryLess, "int", "long", "long", "(x < z)", ""},
		{"signed to unsigned", ast.BinaryAdd, "int", "ulong", "ulong", "((ulong)x + z)", ""},
		{"shift not promotable", ast.BinaryShiftLeft, "int", "long", "long", "((long)x << z)", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			bin := f.tree.NewBinary(sp, tc.op,
				f.tree.NewCast(sp, tc.castTo, f.local("x", tc.xType)),
				f.local("z", tc.zType))
			stmt := f.tree.NewExprStmt(sp, bin)
			f.method("void", stmt)

			f.run(CastElision{})
			if got := render(f.tree, stmt); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
			got, ok := f.u.Annots.Type(bin)
			if tc.annotate == "" {
				if ok {
					t.Fatalf("unexpected annotation %s", got)
				}
				return
			}
			if !ok || !got.Same(tc.annotate) {
				t.Fatalf("annotation = %q,%v want %s", got, ok, tc.annotate)
			}
		})
	}
}

func TestCastElisionRemovesBothWhenOtherIsWide(t *testing.T) {
	f := newFixture(t)
	stmt := f.tree.NewExprStmt(sp, f.tree.NewBinary(sp, ast.BinaryAdd,
		f.tree.NewCast(sp, "long", f.local("x", "int")),
		f.tree.NewCast(sp, "long", f.local("z", "long"))))
	f.method("void", stmt)

	stats := f.run(CastElision{})
	if got := render(f.tree, stmt); got != "(x + z)" {
		t.Fatalf("got %s", got)
	}
	if stats.Changed != 2 {
		t.Fatalf("expected two removals, got %s", stats)
	}
	if f.bag.Len() != 2 || f.bag.Items()[0].Code != diag.NormCastRemoved {
		t.Fatalf("expected two removal remarks, got %d", f.bag.Len())
	}
}

func TestCastElisionUnary(t *testing.T) {
	cases := []struct {
		name  string
		op    ast.UnaryOp
		from  types.TypeName
		to    string
		want  string
		typed types.TypeName
	}{
		{"negate uint as long", ast.UnaryNeg, "uint", "long", "-u", "long"},
		{"complement byte as int", ast.UnaryBitNot, "byte", "int", "~u", "int"},
		{"negate narrowing kept", ast.UnaryNeg, "uint", "int", "-(int)u", ""},
		{"plus short as long kept", ast.UnaryPlus, "short", "long", "+(long)u", ""},
		{"logical not ignored", ast.UnaryNot, "int", "long", "!(long)u", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			un := f.tree.NewUnary(sp, tc.op, f.tree.NewCast(sp, tc.to, f.local("u", tc.from)))
			stmt := f.tree.NewExprStmt(sp, un)
			f.method("void", stmt)

			f.run(CastElision{})
			if got := render(f.tree, stmt); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
			if tc.typed != "" {
				if got, _ := f.u.Annots.Type(un); !got.Same(tc.typed) {
					t.Fatalf("unary annotation = %q", got)
				}
			}
		})
	}
}

func TestCastElisionReturn(t *testing.T) {
	cases := []struct {
		name    string
		ret     string
		inner   types.TypeName
		castTo  string
		removed bool
	}{
		{"int to long", "long", "int", "long", true},
		{"byte via int to long", "System.Int64", "byte", "int", true},
		{"int to double", "double", "int", "double", true},
		{"long to int narrowing", "int", "long", "int", false},
		{"int via float to double", "double", "int", "float", false},
		{"decimal to double", "double", "decimal", "double", false},
		{"cast wider than return", "int", "int", "long", false},
		{"reference cast", "object", "Demo.Foo", "Demo.Bar", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ret := f.tree.NewReturn(sp, f.tree.NewCast(sp, tc.castTo, f.local("v", tc.inner)))
			f.method(tc.ret, ret)

			f.run(CastElision{})
			got := render(f.tree, ret)
			if tc.removed && got != "return v" {
				t.Fatalf("expected removal, got %s", got)
			}
			if !tc.removed && got == "return v" {
				t.Fatalf("cast must be kept")
			}
		})
	}
}

func TestCastElisionSkipsMissingAnnotations(t *testing.T) {
	f := newFixture(t)
	stmt := f.tree.NewExprStmt(sp, f.tree.NewBinary(sp, ast.BinaryAdd,
		f.tree.NewCast(sp, "long", f.local("x", "")),
		f.local("z", "long")))
	ret := f.tree.NewReturn(sp, f.tree.NewCast(sp, "long", f.local("y", "")))
	f.method("long", stmt, ret)

	stats := f.run(CastElision{})
	if got := render(f.tree, f.tree.Root); got != "{((long)x + z); return (long)y}" {
		t.Fatalf("got %s", got)
	}
	if stats.Skipped != 2 || stats.Changed != 0 {
		t.Fatalf("unexpected stats %s", stats)
	}
}

func TestCastElisionRefusesAnnotationConflict(t *testing.T) {
	f := newFixture(t)
	bin := f.tree.NewBinary(sp, ast.BinaryAdd,
		f.tree.NewCast(sp, "long", f.local("x", "int")),
		f.local("z", "long"))
	if err := f.u.Annots.SetType(bin, "int"); err != nil {
		t.Fatal(err)
	}
	stmt := f.tree.NewExprStmt(sp, bin)
	f.method("void", stmt)

	f.run(CastElision{})
	if got := render(f.tree, stmt); got != "((long)x + z)" {
		t.Fatalf("cast must be kept on conflict, got %s", got)
	}
	if !f.bag.HasWarnings() || f.bag.Items()[0].Code != diag.NormAnnotationConflict {
		t.Fatalf("expected conflict warning")
	}
}

func TestCastElisionIsIdempotent(t *testing.T) {
	f := newFixture(t)
	nested := f.tree.NewBinary(sp, ast.BinaryMul,
		f.tree.NewBinary(sp, ast.BinaryAdd,
			f.tree.NewCast(sp, "long", f.local("a", "int")),
			f.local("b", "long")),
		f.tree.NewCast(sp, "long", f.local("c", "int")))
	f.method("long",
		f.tree.NewExprStmt(sp, nested),
		f.tree.NewExprStmt(sp, f.tree.NewBinary(sp, ast.BinarySub,
			f.tree.NewCast(sp, "long", f.local("x", "int")),
			f.tree.NewCast(sp, "long", f.local("y", "int")))),
		f.tree.NewReturn(sp, f.tree.NewUnary(sp, ast.UnaryNeg,
			f.tree.NewCast(sp, "long", f.local("u", "uint")))))

	f.run(CastElision{})
	once := render(f.tree, f.tree.Root)
	annotated := f.u.Annots.Len()
	second := f.run(CastElision{})
	if twice := render(f.tree, f.tree.Root); twice != once {
		t.Fatalf("second run changed the tree:\n%s\n%s", once, twice)
	}
	if second.Changed != 0 || f.u.Annots.Len() != annotated {
		t.Fatalf("second run was not a no-op: %s", second)
	}
	if once != "{((a + b) * c); ((long)x - (long)y); return -u}" {
		t.Fatalf("unexpected normal form %s", once)
	}
}
