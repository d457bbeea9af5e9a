package transform

import (
	"slices"

	"ilnorm/internal/annot"
	"ilnorm/internal/ast"
	"ilnorm/internal/diag"
	"ilnorm/internal/pattern"
	"ilnorm/internal/symbols"
	"ilnorm/internal/types"
	"ilnorm/internal/unit"
)

// OverloadPinning makes calls bind to the same overload in source form as
// in the binary. When narrowing candidates by argument types does not leave
// exactly the original callee, every argument gets a cast to the callee's
// parameter type.
type OverloadPinning struct{}

func (OverloadPinning) Name() string { return "overload_pinning" }

func (OverloadPinning) Run(u *unit.Unit, env *Env) Stats {
	p := &pinner{tree: u.Tree, annots: u.Annots, syms: u.Symbols, env: env}
	// snapshot first: pinning inserts nodes
	calls := slices.Collect(u.Tree.OfKind(u.Tree.Root, ast.KindCall))
	for _, call := range calls {
		p.pin(call)
	}
	return p.stats
}

// ArgKind classifies what an argument tells about its type.
type ArgKind uint8

const (
	// ArgUnknown places no constraint on candidates.
	ArgUnknown ArgKind = iota
	// ArgTyped is a constant of a known type.
	ArgTyped
)

// ArgType is the static type of one call argument as far as narrowing is
// concerned.
type ArgType struct {
	Kind ArgKind
	Type types.TypeName
}

// ArgTypeOf derives the narrowing type of an argument. Only a literal with
// a primitive type constrains. null stays unconstrained: Nullable<T> is a
// value type and still accepts it.
func ArgTypeOf(tree *ast.Tree, id ast.NodeID) ArgType {
	switch tree.Kind(id) {
	case ast.KindLiteral:
		d, _ := tree.Literal(id)
		if name := tree.Name(d.Type); name != "" {
			return ArgType{Kind: ArgTyped, Type: types.TypeName(name)}
		}
	}
	return ArgType{Kind: ArgUnknown}
}

// ParamAccepts reports whether a parameter of type param can stay a
// candidate for an argument of type arg.
func ParamAccepts(r symbols.Resolver, param types.TypeName, arg ArgType) bool {
	if arg.Kind != ArgTyped {
		return true
	}
	return symbols.IsAssignable(r, param, arg.Type)
}

// Reduce narrows candidates by args until the set stops shrinking or a
// single candidate is left. It never adds candidates and does not modify
// the input slice. rounds counts the sweeps over the arguments that removed
// at least one candidate.
func Reduce(r symbols.Resolver, candidates []*symbols.MethodSymbol, args []ArgType) (remaining []*symbols.MethodSymbol, rounds int) {
	remaining = slices.Clone(candidates)
	for len(remaining) > 1 {
		before := len(remaining)
		for i, arg := range args {
			remaining = slices.DeleteFunc(remaining, func(m *symbols.MethodSymbol) bool {
				return i >= len(m.Params) || !ParamAccepts(r, m.Params[i].Type, arg)
			})
		}
		if len(remaining) == before {
			break
		}
		rounds++
	}
	return remaining, rounds
}

type pinner struct {
	tree   *ast.Tree
	annots *annot.Table
	syms   symbols.Resolver
	env    *Env
	stats  Stats
}

// memberCall is `receiver.Name(arg, ...)` with at least one argument.
var memberCall = pattern.New(pattern.Call(
	pattern.Member(pattern.Any(), ""),
	pattern.Repeat(pattern.Named("arg", nil), 1, -1),
), pattern.Options{})

func (p *pinner) pin(call ast.NodeID) {
	m, ok := memberCall.Match(p.tree, call)
	if !ok {
		return
	}
	args := m.Get("arg")
	ref, ok := p.annots.Method(call)
	if !ok || ref.Arity() == 0 {
		return
	}
	p.stats.Visited++
	if p.syms == nil || ref.Arity() != len(args) {
		p.stats.Skipped++
		return
	}
	decl, ok := p.syms.ResolveType(ref.Declaring)
	if !ok {
		p.env.point("overload_skip", "unresolved type "+string(ref.Declaring))
		p.stats.Skipped++
		return
	}
	callee, ok := p.syms.ResolveMethod(ref)
	if !ok {
		p.env.point("overload_skip", "unresolved callee "+ref.Signature())
		p.stats.Skipped++
		return
	}

	argTypes := make([]ArgType, len(args))
	for i, a := range args {
		argTypes[i] = ArgTypeOf(p.tree, a)
	}
	remaining, _ := Reduce(p.syms, decl.MethodsNamed(ref.Name, len(args)), argTypes)
	if len(remaining) == 1 && ref.Matches(remaining[0]) {
		return
	}

	inserted := 0
	for i, arg := range args {
		if p.wrap(arg, callee.Params[i].Type) {
			inserted++
		}
	}
	if inserted == 0 {
		return
	}
	p.stats.Changed++
	p.env.point("overload_pinned", callee.Signature())
	p.env.remark(diag.NormOverloadPinned, p.tree.Get(call).Span,
		"call to %s pinned to %s with %d cast(s)", ref.Name, callee.Signature(), inserted)
}

// wrap casts arg to param unless it already is exactly that cast.
func (p *pinner) wrap(arg ast.NodeID, param types.TypeName) bool {
	if name, ok := p.tree.CastTypeName(arg); ok && types.TypeName(name).Same(param) {
		return false
	}
	spelling := param.Keyword()
	span := p.tree.Get(arg).Span
	cast, err := p.tree.Wrap(arg, func(inner ast.NodeID) ast.NodeID {
		return p.tree.NewCast(span, spelling, inner)
	})
	if err != nil {
		p.env.point("overload_skip", err.Error())
		return false
	}
	if err := p.annots.SetType(cast, types.TypeName(spelling)); err != nil {
		p.env.warn(diag.NormAnnotationConflict, span, "%v", err)
	}
	return true
}
