package unit

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"ilnorm/internal/ast"
	"ilnorm/internal/source"
	"ilnorm/internal/symbols"
	"ilnorm/internal/types"
)

func demoUnit(t *testing.T) *Unit {
	t.Helper()
	demo := &symbols.TypeSymbol{
		FullName: "Demo.C",
		Base:     "System.Object",
		Methods: []*symbols.MethodSymbol{
			{Name: "F", Params: []symbols.ParamSymbol{{Name: "a", Type: "int"}}, Return: "void"},
			{Name: "F", Params: []symbols.ParamSymbol{{Name: "a", Type: "long"}}, Return: "void"},
		},
	}
	table, err := symbols.NewTable(symbols.WithBuiltins(demo)...)
	if err != nil {
		t.Fatalf("symbols: %v", err)
	}
	u := New(7, "Demo", table)
	tr := u.Tree
	sp := source.Span{Unit: 7, Start: 2, End: 9}

	x := tr.NewIdent(sp, "x")
	call := tr.NewCall(sp, tr.NewMember(sp, tr.NewThis(sp), "F"), x)
	sum := tr.NewBinary(sp, ast.BinaryAdd, tr.NewCast(sp, "long", tr.NewIdent(sp, "y")), tr.NewLiteral(sp, "long", "1"))
	arr := tr.NewArrayCreate(sp, "int", ast.NoNodeID, tr.NewLiteral(sp, "int", "1"))
	body := tr.NewBlock(sp,
		tr.NewExprStmt(sp, call),
		tr.NewExprStmt(sp, arr),
		tr.NewReturn(sp, tr.NewUnary(sp, ast.UnaryNeg, sum)),
	)
	m := tr.NewMethod(sp, "Demo.C", "M", "long", []ast.ParamSpec{{Name: "x", Type: "int"}}, body)
	tr.NewUnit(sp, "Demo", m)

	if err := u.Annots.SetType(x, "int"); err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if err := u.Annots.SetType(sum, types.TypeName("long")); err != nil {
		t.Fatalf("annotate: %v", err)
	}
	u.Annots.SetMethod(call, demo.Methods[0].Ref())
	return u
}

func TestCodecRoundTrip(t *testing.T) {
	u := demoUnit(t)
	want, err := Encode(u)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(want.Types) != 1 || want.Types[0].Name != "Demo.C" {
		t.Fatalf("builtins without methods must be left out, got %+v", want.Types)
	}

	for _, format := range []Format{FormatMsgpack, FormatJSON} {
		data, err := Marshal(want, format)
		if err != nil {
			t.Fatalf("%s: Marshal: %v", format, err)
		}
		f, err := Unmarshal(data, format)
		if err != nil {
			t.Fatalf("%s: Unmarshal: %v", format, err)
		}
		back, err := Decode(f, u.ID)
		if err != nil {
			t.Fatalf("%s: Decode: %v", format, err)
		}
		if err := back.Validate(); err != nil {
			t.Fatalf("%s: decoded unit invalid: %v", format, err)
		}
		got, err := Encode(back)
		if err != nil {
			t.Fatalf("%s: re-Encode: %v", format, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: round trip differs:\n got %+v\nwant %+v", format, got, want)
		}
		if _, ok := back.Symbols.ResolveType("System.Int32"); !ok {
			t.Fatalf("%s: builtins must be restored", format)
		}
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		file File
	}{
		{"root out of range", File{Schema: SchemaVersion, Root: 3}},
		{"root not a unit", File{Schema: SchemaVersion, Root: 1, Nodes: []NodeRecord{{Kind: "ident", Name: "x"}}}},
		{"shared child", File{Schema: SchemaVersion, Root: 1, Nodes: []NodeRecord{
			{Kind: "unit", Kids: []uint32{2}},
			{Kind: "binary", Op: "+", Kids: []uint32{3, 3}},
			{Kind: "ident", Name: "x"},
		}}},
		{"cycle", File{Schema: SchemaVersion, Root: 1, Nodes: []NodeRecord{
			{Kind: "unit", Kids: []uint32{2}},
			{Kind: "block", Kids: []uint32{2}},
		}}},
		{"unreachable", File{Schema: SchemaVersion, Root: 1, Nodes: []NodeRecord{
			{Kind: "unit"},
			{Kind: "null"},
		}}},
		{"bad operator", File{Schema: SchemaVersion, Root: 1, Nodes: []NodeRecord{
			{Kind: "unit", Kids: []uint32{2}},
			{Kind: "binary", Op: "**", Kids: []uint32{3, 4}},
			{Kind: "null"},
			{Kind: "null"},
		}}},
		{"wrong arity", File{Schema: SchemaVersion, Root: 1, Nodes: []NodeRecord{
			{Kind: "unit", Kids: []uint32{2}},
			{Kind: "unary", Op: "-"},
		}}},
		{"unknown kind", File{Schema: SchemaVersion, Root: 1, Nodes: []NodeRecord{{Kind: "lambda"}}}},
	}
	for _, tc := range cases {
		if _, err := Decode(&tc.file, 1); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: expected ErrMalformed, got %v", tc.name, err)
		}
	}
}

func TestUnmarshalChecksSchema(t *testing.T) {
	data, err := Marshal(&File{Schema: SchemaVersion + 1}, FormatJSON)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if _, err := Unmarshal(data, FormatJSON); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	u := demoUnit(t)
	dir := t.TempDir()
	for _, name := range []string{"demo.ilu", "demo.json"} {
		path := filepath.Join(dir, "out", name)
		if err := Save(path, u); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
		back, err := Load(path, 3)
		if err != nil {
			t.Fatalf("Load %s: %v", name, err)
		}
		if back.Name != "Demo" || back.ID != 3 {
			t.Fatalf("Load %s: got %q/%d", name, back.Name, back.ID)
		}
		if back.Annots.Len() != u.Annots.Len() {
			t.Fatalf("Load %s: %d annotations, want %d", name, back.Annots.Len(), u.Annots.Len())
		}
	}
	if err := Save(filepath.Join(dir, "demo.txt"), u); err == nil {
		t.Fatalf("unknown extension must be rejected")
	}
}
