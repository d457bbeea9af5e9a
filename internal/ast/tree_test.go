package ast

import (
	"errors"
	"testing"

	"ilnorm/internal/source"
)

func newTestTree() *Tree {
	return NewTree(nil, Hints{})
}

// wrapInMethod roots expr under `return expr;` inside a method inside a unit.
func wrapInMethod(tree *Tree, expr NodeID) NodeID {
	ret := tree.NewReturn(source.Span{}, expr)
	body := tree.NewBlock(source.Span{}, ret)
	m := tree.NewMethod(source.Span{}, "Demo.C", "M", "long", []ParamSpec{{Name: "x", Type: "int"}}, body)
	return tree.NewUnit(source.Span{}, "demo", m)
}

func TestReplaceCastWithInner(t *testing.T) {
	tree := newTestTree()
	x := tree.NewIdent(source.Span{}, "x")
	cast := tree.NewCast(source.Span{}, "long", x)
	y := tree.NewIdent(source.Span{}, "y")
	sum := tree.NewBinary(source.Span{}, BinaryAdd, cast, y)
	wrapInMethod(tree, sum)

	if err := tree.ReplaceWithChild(cast, x); err != nil {
		t.Fatalf("ReplaceWithChild: %v", err)
	}
	bin, ok := tree.Binary(sum)
	if !ok {
		t.Fatalf("sum is not binary")
	}
	if bin.Left != x {
		t.Fatalf("expected left operand %d, got %d", x, bin.Left)
	}
	if tree.Parent(x) != sum {
		t.Fatalf("x parent = %d, want %d", tree.Parent(x), sum)
	}
	if tree.Parent(cast).IsValid() {
		t.Fatalf("replaced cast must be detached")
	}
	if err := tree.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestReplaceRejectsOwnedNode(t *testing.T) {
	tree := newTestTree()
	a := tree.NewIdent(source.Span{}, "a")
	b := tree.NewIdent(source.Span{}, "b")
	sum := tree.NewBinary(source.Span{}, BinaryAdd, a, b)
	wrapInMethod(tree, sum)

	if err := tree.Replace(a, b); !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("expected ErrAlreadyOwned, got %v", err)
	}
	if err := tree.Replace(tree.Root, tree.NewNull(source.Span{})); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("expected ErrNotAttached for root, got %v", err)
	}
	if err := tree.Replace(NodeID(9999), a); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestAdoptPanicsOnSharedChild(t *testing.T) {
	tree := newTestTree()
	a := tree.NewIdent(source.Span{}, "a")
	tree.NewUnary(source.Span{}, UnaryNeg, a)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when sharing a subtree")
		}
	}()
	tree.NewUnary(source.Span{}, UnaryBitNot, a)
}

func TestCloneIsDetachedAndEqual(t *testing.T) {
	tree := newTestTree()
	call := tree.NewCall(source.Span{},
		tree.NewMember(source.Span{}, tree.NewThis(source.Span{}), "F"),
		tree.NewLiteral(source.Span{}, "int", "1"),
		tree.NewCast(source.Span{}, "long", tree.NewIdent(source.Span{}, "x")),
	)
	cp := tree.Clone(call)
	if cp == call {
		t.Fatalf("clone returned the same id")
	}
	if tree.Parent(cp).IsValid() {
		t.Fatalf("clone must be detached")
	}
	if !tree.Equal(call, cp) {
		t.Fatalf("clone must be structurally equal")
	}
	other := tree.NewCall(source.Span{},
		tree.NewMember(source.Span{}, tree.NewThis(source.Span{}), "F"),
		tree.NewLiteral(source.Span{}, "int", "2"),
		tree.NewCast(source.Span{}, "long", tree.NewIdent(source.Span{}, "x")),
	)
	if tree.Equal(call, other) {
		t.Fatalf("different literal values must not compare equal")
	}
}

func TestDescendantsPreorder(t *testing.T) {
	tree := newTestTree()
	a := tree.NewIdent(source.Span{}, "a")
	b := tree.NewIdent(source.Span{}, "b")
	neg := tree.NewUnary(source.Span{}, UnaryNeg, b)
	sum := tree.NewBinary(source.Span{}, BinaryAdd, a, neg)

	var got []NodeID
	for id := range tree.Descendants(sum) {
		got = append(got, id)
	}
	want := []NodeID{sum, a, neg, b}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	count := 0
	for range tree.OfKind(sum, KindIdent) {
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 idents, got %d", count)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	tree := newTestTree()
	inner := tree.NewIdent(source.Span{}, "x")
	neg := tree.NewUnary(source.Span{}, UnaryNeg, inner)
	root := tree.NewBinary(source.Span{}, BinaryMul, neg, tree.NewLiteral(source.Span{}, "int", "2"))

	visited := 0
	tree.Walk(root, func(id NodeID) bool {
		visited++
		return tree.Kind(id) != KindUnary
	})
	if visited != 3 {
		t.Fatalf("expected 3 visits with unary subtree skipped, got %d", visited)
	}
}

func TestDetachOptionalSlot(t *testing.T) {
	tree := newTestTree()
	val := tree.NewIdent(source.Span{}, "v")
	wrapInMethod(tree, val)
	if err := tree.Detach(val); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if err := tree.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := tree.Detach(val); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("second detach should fail, got %v", err)
	}
}

func TestEnclosingMethod(t *testing.T) {
	tree := newTestTree()
	x := tree.NewIdent(source.Span{}, "x")
	wrapInMethod(tree, x)
	m, ok := tree.EnclosingMethod(x)
	if !ok || tree.Kind(m) != KindMethod {
		t.Fatalf("expected enclosing method, got %d ok=%v", m, ok)
	}
	data, _ := tree.Method(m)
	if ret, _ := tree.TypeRefName(data.Return); ret != "long" {
		t.Fatalf("unexpected return type %q", ret)
	}
}

func TestWrapKeepsInnerID(t *testing.T) {
	tree := NewTree(nil, Hints{})
	lit := tree.NewLiteral(source.Span{}, "int", "1")
	call := tree.NewCall(source.Span{}, tree.NewIdent(source.Span{}, "F"), lit)

	w, err := tree.Wrap(lit, func(inner NodeID) NodeID {
		return tree.NewCast(source.Span{}, "long", inner)
	})
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	d, _ := tree.Call(call)
	if d.Args[0] != w || tree.Parent(w) != call {
		t.Fatalf("wrapper not installed: args=%v parent=%d", d.Args, tree.Parent(w))
	}
	c, _ := tree.Cast(w)
	if c.Value != lit || tree.Parent(lit) != w {
		t.Fatalf("inner node not owned by wrapper")
	}

	if _, err := tree.Wrap(lit, func(inner NodeID) NodeID {
		return tree.NewIdent(source.Span{}, "oops")
	}); err == nil {
		t.Fatalf("expected error when builder does not adopt")
	}
	if tree.Parent(lit) != w {
		t.Fatalf("failed wrap must restore the parent link")
	}
}
