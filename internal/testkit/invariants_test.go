package testkit

import (
	"strings"
	"testing"

	"ilnorm/internal/ast"
	"ilnorm/internal/source"
)

func TestRedundantCastUnitHoldsInvariants(t *testing.T) {
	u, err := RedundantCastUnit(2, "K")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := CheckUnitInvariants(u); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	if n, _ := CountKind(u, ast.KindCast); n != 1 {
		t.Fatalf("casts = %d, want 1", n)
	}
}

func TestCheckUnitInvariantsReportsForeignSpan(t *testing.T) {
	u, err := RedundantCastUnit(2, "K")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var cast ast.NodeID
	for id := range u.Tree.OfKind(u.Tree.Root, ast.KindCast) {
		cast = id
	}
	u.Tree.Get(cast).Span = source.Span{Unit: 9}
	err = CheckUnitInvariants(u)
	if err == nil || !strings.Contains(err.Error(), "belongs to unit 9") {
		t.Fatalf("err = %v", err)
	}
}

func TestCheckUnitInvariantsReportsMismatchedCastAnnotation(t *testing.T) {
	u, err := RedundantCastUnit(2, "K")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for id := range u.Tree.OfKind(u.Tree.Root, ast.KindCast) {
		if err := u.Annots.SetType(id, "int"); err != nil {
			t.Fatalf("annotate: %v", err)
		}
	}
	err = CheckUnitInvariants(u)
	if err == nil || !strings.Contains(err.Error(), "annotated as int") {
		t.Fatalf("err = %v", err)
	}
}
