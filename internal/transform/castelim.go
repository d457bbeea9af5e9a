package transform

import (
	"ilnorm/internal/annot"
	"ilnorm/internal/ast"
	"ilnorm/internal/diag"
	"ilnorm/internal/pattern"
	"ilnorm/internal/types"
	"ilnorm/internal/unit"
)

// CastElision removes explicit numeric casts that do not change the value or
// the promoted type of the surrounding operator or return.
type CastElision struct{}

func (CastElision) Name() string { return "cast_elision" }

func (CastElision) Run(u *unit.Unit, env *Env) Stats {
	e := &castElider{tree: u.Tree, annots: u.Annots, env: env}
	u.Tree.PostOrder(u.Tree.Root, e.visit)
	return e.stats
}

type castElider struct {
	tree   *ast.Tree
	annots *annot.Table
	env    *Env
	stats  Stats
}

func (e *castElider) visit(id ast.NodeID) {
	switch e.tree.Kind(id) {
	case ast.KindBinary:
		e.visitBinary(id)
	case ast.KindUnary:
		e.visitUnary(id)
	case ast.KindReturn:
		e.visitReturn(id)
	case ast.KindInvalid, ast.KindIdent, ast.KindLiteral, ast.KindNull, ast.KindThis,
		ast.KindCast, ast.KindCall, ast.KindMember, ast.KindArrayCreate, ast.KindTypeRef,
		ast.KindExprStmt, ast.KindBlock, ast.KindMethod, ast.KindUnit:
	}
}

func promotable(op ast.BinaryOp) bool {
	switch op {
	case ast.BinaryAdd, ast.BinarySub, ast.BinaryMul, ast.BinaryDiv, ast.BinaryMod,
		ast.BinaryBitAnd, ast.BinaryBitOr, ast.BinaryBitXor,
		ast.BinaryEq, ast.BinaryNotEq, ast.BinaryLess, ast.BinaryLessEq,
		ast.BinaryGreater, ast.BinaryGreaterEq:
		return true
	}
	return false
}

func comparison(op ast.BinaryOp) bool {
	switch op {
	case ast.BinaryEq, ast.BinaryNotEq, ast.BinaryLess, ast.BinaryLessEq,
		ast.BinaryGreater, ast.BinaryGreaterEq:
		return true
	}
	return false
}

// castParts returns a cast's target kind and the static kind of its operand.
func (e *castElider) castParts(id ast.NodeID) (inner ast.NodeID, from, to types.Prim, ok bool) {
	d, isCast := e.tree.Cast(id)
	if !isCast {
		return ast.NoNodeID, 0, 0, false
	}
	name, _ := e.tree.TypeRefName(d.Type)
	to, ok = types.PrimOf(types.TypeName(name))
	if !ok {
		return ast.NoNodeID, 0, 0, false
	}
	from, ok = annot.StaticPrim(e.tree, e.annots, d.Value)
	if !ok {
		return ast.NoNodeID, 0, 0, false
	}
	return d.Value, from, to, true
}

func (e *castElider) visitBinary(id ast.NodeID) {
	d, _ := e.tree.Binary(id)
	if !promotable(d.Op) {
		return
	}
	op := d.Op
	e.uncastOperand(id, op, d.Left, d.Right)
	// the left slot may now hold the cast's operand
	d, _ = e.tree.Binary(id)
	e.uncastOperand(id, op, d.Right, d.Left)
}

// otherKinds lists the kinds the other operand may have: its static kind and,
// when it is itself a cast, the kind it would have without that cast. The
// decision for one operand must hold for both so that it does not depend on
// which operand is visited first.
func (e *castElider) otherKinds(other ast.NodeID) []types.Prim {
	p, ok := annot.StaticPrim(e.tree, e.annots, other)
	if !ok {
		return nil
	}
	out := []types.Prim{p}
	if _, from, _, isCast := e.castParts(other); isCast && from != p {
		out = append(out, from)
	}
	return out
}

func (e *castElider) uncastOperand(bin ast.NodeID, op ast.BinaryOp, operand, other ast.NodeID) {
	if e.tree.Kind(operand) != ast.KindCast {
		return
	}
	e.stats.Visited++
	inner, from, to, ok := e.castParts(operand)
	if !ok {
		e.stats.Skipped++
		return
	}
	others := e.otherKinds(other)
	if len(others) == 0 {
		e.stats.Skipped++
		return
	}
	var promoted types.Prim
	for i, o := range others {
		p1, ok1 := types.PromoteBinary(o, from)
		p2, ok2 := types.PromoteBinary(o, to)
		if !ok1 || !ok2 || p1 != p2 {
			return
		}
		if i == 0 {
			promoted = p1
		}
	}
	if !types.IsSafeWideningCast(from, to) {
		return
	}
	if !comparison(op) && !e.annotate(bin, promoted) {
		return
	}
	e.unwrap(operand, inner, to)
}

var (
	// -(T)x, +(T)x, ~(T)x
	unaryOverCast = pattern.New(pattern.Unary(
		pattern.Named("cast", pattern.Cast("", pattern.Any())),
		ast.UnaryNeg, ast.UnaryPlus, ast.UnaryBitNot,
	), pattern.Options{})
	// return (T)x;
	returnOfCast = pattern.New(pattern.Return(
		pattern.Named("cast", pattern.Cast("", pattern.Named("value", nil))),
	), pattern.Options{})
)

func (e *castElider) visitUnary(id ast.NodeID) {
	m, ok := unaryOverCast.Match(e.tree, id)
	if !ok {
		return
	}
	d, _ := e.tree.Unary(id)
	e.stats.Visited++
	cast := m.Single("cast")
	inner, from, to, ok := e.castParts(cast)
	if !ok {
		e.stats.Skipped++
		return
	}
	promoted := types.PromoteUnary(to, d.Op)
	if types.PromoteUnary(from, d.Op) != promoted || !types.IsSafeWideningCast(from, to) {
		return
	}
	if !e.annotate(id, promoted) {
		return
	}
	e.unwrap(cast, inner, to)
}

func (e *castElider) visitReturn(id ast.NodeID) {
	m, ok := returnOfCast.Match(e.tree, id)
	if !ok {
		return
	}
	e.stats.Visited++
	cast, value := m.Single("cast"), m.Single("value")
	c, _ := e.tree.Cast(cast)
	name, _ := e.tree.TypeRefName(c.Type)
	target := types.TypeName(name)
	if !target.IsPrimitive() {
		e.stats.Skipped++
		return
	}
	from, ok := annot.StaticType(e.tree, e.annots, value)
	if !ok {
		e.stats.Skipped++
		return
	}
	ret, ok := e.returnType(id)
	if !ok {
		e.stats.Skipped++
		return
	}
	if !types.IsImplicitConversionName(from, target) || !types.IsImplicitConversionName(target, ret) {
		return
	}
	to, _ := types.PrimOf(target)
	e.unwrap(cast, value, to)
}

func (e *castElider) returnType(id ast.NodeID) (types.TypeName, bool) {
	m, ok := e.tree.EnclosingMethod(id)
	if !ok {
		return types.NoTypeName, false
	}
	md, _ := e.tree.Method(m)
	name, ok := e.tree.TypeRefName(md.Return)
	if !ok || name == "" {
		return types.NoTypeName, false
	}
	return types.TypeName(name), true
}

// annotate records the operator's type. A conflicting annotation keeps the
// cast: the upstream stage knows something this pass does not.
func (e *castElider) annotate(id ast.NodeID, p types.Prim) bool {
	if err := e.annots.SetType(id, types.TypeName(p.Keyword())); err != nil {
		e.env.warn(diag.NormAnnotationConflict, e.tree.Get(id).Span, "%v", err)
		e.stats.Skipped++
		return false
	}
	return true
}

func (e *castElider) unwrap(cast, inner ast.NodeID, to types.Prim) {
	span := e.tree.Get(cast).Span
	if err := e.tree.ReplaceWithChild(cast, inner); err != nil {
		e.env.point("cast_kept", err.Error())
		e.stats.Skipped++
		return
	}
	e.stats.Changed++
	e.env.point("cast_removed", to.Keyword())
	e.env.remark(diag.NormCastRemoved, span, "removed redundant cast to %s", to.Keyword())
}
