package pattern

import (
	"slices"

	"ilnorm/internal/ast"
)

type anyNode struct{}

// Any matches any present node.
func Any() Pattern { return anyNode{} }

func (anyNode) match(_ *state, _ ast.NodeID, k func() bool) bool { return k() }

type named struct {
	name  string
	inner Pattern
}

// Named binds the node matched by inner to name. A nil inner means Any.
func Named(name string, inner Pattern) Pattern {
	if inner == nil {
		inner = Any()
	}
	return named{name: name, inner: inner}
}

func (n named) match(s *state, id ast.NodeID, k func() bool) bool {
	return s.try(func() bool {
		s.result.Add(n.name, id)
		return n.inner.match(s, id, k)
	})
}

type backref struct{ name string }

// Backref matches a node equal to the latest capture of name, by identity or
// structure depending on Options.Backref. Referring to a name that is not yet
// bound panics with *MisuseError.
func Backref(name string) Pattern { return backref{name: name} }

func (b backref) match(s *state, id ast.NodeID, k func() bool) bool {
	bound, ok := s.result.last(b.name)
	if !ok {
		misuse("Backref", b.name, "back-reference to unbound capture")
	}
	switch s.opts.Backref {
	case BackrefStructural:
		if !s.tree.Equal(bound, id) {
			return false
		}
	default:
		if bound != id {
			return false
		}
	}
	return k()
}

type repeat struct {
	inner    Pattern
	min, max int
}

// Optional matches inner zero or one time. In a single child slot it also
// accepts an empty slot.
func Optional(inner Pattern) Pattern { return repeat{inner: inner, min: 0, max: 1} }

// Repeat matches inner between min and max times inside a sequence; a
// negative max is unbounded. Matching is greedy and gives elements back one
// at a time when the rest of the sequence fails.
func Repeat(inner Pattern, min, max int) Pattern {
	if min < 0 {
		min = 0
	}
	return repeat{inner: inner, min: min, max: max}
}

func (r repeat) match(s *state, id ast.NodeID, k func() bool) bool {
	return matchSlot(s, r, id, k)
}

func (r repeat) matchSeq(s *state, ids []ast.NodeID, rest func([]ast.NodeID) bool) bool {
	return r.step(s, ids, 0, rest)
}

func (r repeat) step(s *state, ids []ast.NodeID, count int, rest func([]ast.NodeID) bool) bool {
	if len(ids) > 0 && (r.max < 0 || count < r.max) {
		more := s.try(func() bool {
			return r.inner.match(s, ids[0], func() bool {
				return r.step(s, ids[1:], count+1, rest)
			})
		})
		if more {
			return true
		}
	}
	if count < r.min {
		return false
	}
	return s.try(func() bool { return rest(ids) })
}

type choice []Pattern

// Choice tries alternatives in order.
func Choice(alts ...Pattern) Pattern { return choice(alts) }

func (c choice) match(s *state, id ast.NodeID, k func() bool) bool {
	for _, alt := range c {
		if matchSlot(s, alt, id, k) {
			return true
		}
	}
	return false
}

// Predicate inspects a node that already matched the inner pattern.
type Predicate func(tree *ast.Tree, id ast.NodeID) bool

type where struct {
	inner Pattern
	pred  Predicate
}

// Where restricts inner with a predicate.
func Where(inner Pattern, pred Predicate) Pattern {
	if inner == nil {
		inner = Any()
	}
	return where{inner: inner, pred: pred}
}

func (w where) match(s *state, id ast.NodeID, k func() bool) bool {
	if !w.pred(s.tree, id) {
		return false
	}
	return w.inner.match(s, id, k)
}

type kindOf []ast.Kind

// KindOf matches nodes of any of the given kinds.
func KindOf(kinds ...ast.Kind) Pattern { return kindOf(kinds) }

func (ks kindOf) match(s *state, id ast.NodeID, k func() bool) bool {
	if !slices.Contains(ks, s.tree.Kind(id)) {
		return false
	}
	return k()
}

type ident struct{ name string }

// Ident matches an identifier; an empty name matches any identifier.
func Ident(name string) Pattern { return ident{name: name} }

func (p ident) match(s *state, id ast.NodeID, k func() bool) bool {
	d, ok := s.tree.Ident(id)
	if !ok || (p.name != "" && s.tree.Name(d.Name) != p.name) {
		return false
	}
	return k()
}

type literal struct{ typeName, value string }

// Literal matches a constant. Empty typeName or value match anything; the
// type is compared in either spelling.
func Literal(typeName, value string) Pattern { return literal{typeName: typeName, value: value} }

func (p literal) match(s *state, id ast.NodeID, k func() bool) bool {
	d, ok := s.tree.Literal(id)
	if !ok {
		return false
	}
	if p.typeName != "" && !sameTypeName(p.typeName, s.tree.Name(d.Type)) {
		return false
	}
	if p.value != "" && s.tree.Name(d.Value) != p.value {
		return false
	}
	return k()
}

// Null matches the null literal.
func Null() Pattern { return KindOf(ast.KindNull) }

// This matches the receiver reference.
func This() Pattern { return KindOf(ast.KindThis) }

type binary struct {
	ops         []ast.BinaryOp
	left, right Pattern
}

// Binary matches a binary operator whose operator is one of ops (any when ops
// is empty).
func Binary(left, right Pattern, ops ...ast.BinaryOp) Pattern {
	return binary{ops: ops, left: left, right: right}
}

func (p binary) match(s *state, id ast.NodeID, k func() bool) bool {
	d, ok := s.tree.Binary(id)
	if !ok || (len(p.ops) > 0 && !slices.Contains(p.ops, d.Op)) {
		return false
	}
	left, right := d.Left, d.Right
	return matchSlot(s, p.left, left, func() bool {
		return matchSlot(s, p.right, right, k)
	})
}

type unary struct {
	ops     []ast.UnaryOp
	operand Pattern
}

// Unary matches a prefix operator whose operator is one of ops (any when ops
// is empty).
func Unary(operand Pattern, ops ...ast.UnaryOp) Pattern {
	return unary{ops: ops, operand: operand}
}

func (p unary) match(s *state, id ast.NodeID, k func() bool) bool {
	d, ok := s.tree.Unary(id)
	if !ok || (len(p.ops) > 0 && !slices.Contains(p.ops, d.Op)) {
		return false
	}
	return matchSlot(s, p.operand, d.Operand, k)
}

type cast struct {
	typeName string
	value    Pattern
}

// Cast matches an explicit conversion to typeName (any type when empty).
func Cast(typeName string, value Pattern) Pattern {
	return cast{typeName: typeName, value: value}
}

func (p cast) match(s *state, id ast.NodeID, k func() bool) bool {
	d, ok := s.tree.Cast(id)
	if !ok {
		return false
	}
	if p.typeName != "" {
		name, _ := s.tree.TypeRefName(d.Type)
		if !sameTypeName(p.typeName, name) {
			return false
		}
	}
	return matchSlot(s, p.value, d.Value, k)
}

type call struct {
	target Pattern
	args   []Pattern
}

// Call matches an invocation; args is matched as a sequence so Repeat and
// Optional may cover several arguments.
func Call(target Pattern, args ...Pattern) Pattern {
	return call{target: target, args: args}
}

func (p call) match(s *state, id ast.NodeID, k func() bool) bool {
	d, ok := s.tree.Call(id)
	if !ok {
		return false
	}
	target, args := d.Target, slices.Clone(d.Args)
	return matchSlot(s, p.target, target, func() bool {
		return matchSeq(s, p.args, args, k)
	})
}

type member struct {
	target Pattern
	name   string
}

// Member matches `target.name`; an empty name matches any member.
func Member(target Pattern, name string) Pattern {
	return member{target: target, name: name}
}

func (p member) match(s *state, id ast.NodeID, k func() bool) bool {
	d, ok := s.tree.Member(id)
	if !ok || (p.name != "" && s.tree.Name(d.Name) != p.name) {
		return false
	}
	return matchSlot(s, p.target, d.Target, k)
}

type ret struct{ value Pattern }

// Return matches a return statement. A nil value matches only `return;`;
// use Optional to accept both forms.
func Return(value Pattern) Pattern { return ret{value: value} }

func (p ret) match(s *state, id ast.NodeID, k func() bool) bool {
	d, ok := s.tree.Return(id)
	if !ok {
		return false
	}
	return matchSlot(s, p.value, d.Value, k)
}

type exprStmt struct{ value Pattern }

// ExprStmt matches an expression statement.
func ExprStmt(value Pattern) Pattern { return exprStmt{value: value} }

func (p exprStmt) match(s *state, id ast.NodeID, k func() bool) bool {
	d, ok := s.tree.ExprStmt(id)
	if !ok {
		return false
	}
	return matchSlot(s, p.value, d.Value, k)
}

type block struct{ stmts []Pattern }

// Block matches a statement list as a sequence.
func Block(stmts ...Pattern) Pattern { return block{stmts: stmts} }

func (p block) match(s *state, id ast.NodeID, k func() bool) bool {
	d, ok := s.tree.Block(id)
	if !ok {
		return false
	}
	return matchSeq(s, p.stmts, slices.Clone(d.Stmts), k)
}
