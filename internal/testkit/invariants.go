package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"ilnorm/internal/ast"
	"ilnorm/internal/types"
	"ilnorm/internal/unit"
)

// CheckUnitInvariants runs the checks that hold before and after every pass:
// 1) the tree is well formed and annotations point at live nodes
// 2) every node reachable from the root carries the unit's id and a span
// with Start <= End
// 3) annotated casts are annotated with their own target type
// 4) the tree holds at most one unit node, and it is the root
func CheckUnitInvariants(u *unit.Unit) error {
	if u == nil {
		return fmt.Errorf("nil unit")
	}
	if err := u.Validate(); err != nil {
		return err
	}
	tr := u.Tree
	var units int
	for id := range tr.Descendants(tr.Root) {
		n := tr.Get(id)
		if n == nil {
			return fmt.Errorf("node %d reachable but missing", id)
		}
		if n.Span.Unit != u.ID {
			return fmt.Errorf("node %d (%s) belongs to unit %d, want %d", id, n.Kind, n.Span.Unit, u.ID)
		}
		if n.Span.Start > n.Span.End {
			return fmt.Errorf("node %d (%s) has inverted span %d..%d", id, n.Kind, n.Span.Start, n.Span.End)
		}
		switch n.Kind {
		case ast.KindUnit:
			units++
			if id != tr.Root {
				return fmt.Errorf("unit node %d is not the root", id)
			}
		case ast.KindCast:
			annotated, ok := u.Annots.Type(id)
			if !ok {
				continue
			}
			target, _ := tr.CastTypeName(id)
			if types.NormalizeName(string(annotated)) != types.NormalizeName(target) {
				return fmt.Errorf("cast %d to %s annotated as %s", id, target, annotated)
			}
		}
	}
	if units != 1 {
		return fmt.Errorf("expected one unit node, found %d", units)
	}
	return nil
}

// CountKind counts nodes of kind reachable from the root.
func CountKind(u *unit.Unit, kind ast.Kind) (uint32, error) {
	n := 0
	for range u.Tree.OfKind(u.Tree.Root, kind) {
		n++
	}
	return safecast.Conv[uint32](n)
}
