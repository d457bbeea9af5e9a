package symbols

import (
	"fmt"

	"ilnorm/internal/types"
)

// Resolver answers the questions normalization passes ask about metadata.
// Every lookup may come back unresolved; implementations must be safe for
// concurrent readers.
type Resolver interface {
	// ResolveType finds a declared type by either spelling of its name.
	ResolveType(name types.TypeName) (*TypeSymbol, bool)
	// ResolveMethod finds the declaration a call annotation points at.
	ResolveMethod(ref MethodRef) (*MethodSymbol, bool)
}

// Table is an immutable Resolver built once per unit (or shared between
// units) and read concurrently afterwards.
type Table struct {
	types map[string]*TypeSymbol // keyed by fully-qualified name
}

// NewTable builds a table from decls. Names are stored in fully-qualified
// spelling so "int" and "System.Int32" find the same symbol.
func NewTable(decls ...*TypeSymbol) (*Table, error) {
	t := &Table{types: make(map[string]*TypeSymbol, len(decls))}
	for _, d := range decls {
		if d == nil || d.FullName == types.NoTypeName {
			return nil, fmt.Errorf("symbols: type declaration without a name")
		}
		key := d.FullName.FullName()
		if _, dup := t.types[key]; dup {
			return nil, fmt.Errorf("symbols: duplicate type %s", key)
		}
		for _, m := range d.Methods {
			if m.Declaring == types.NoTypeName {
				m.Declaring = d.FullName
			}
		}
		t.types[key] = d
	}
	return t, nil
}

// ResolveType implements Resolver.
func (t *Table) ResolveType(name types.TypeName) (*TypeSymbol, bool) {
	if t == nil || name == types.NoTypeName {
		return nil, false
	}
	sym, ok := t.types[name.FullName()]
	return sym, ok
}

// ResolveMethod implements Resolver.
func (t *Table) ResolveMethod(ref MethodRef) (*MethodSymbol, bool) {
	decl, ok := t.ResolveType(ref.Declaring)
	if !ok {
		return nil, false
	}
	for _, m := range decl.Methods {
		if ref.Matches(m) {
			return m, true
		}
	}
	return nil, false
}

// Types returns the declared types; the slice order is unspecified.
func (t *Table) Types() []*TypeSymbol {
	out := make([]*TypeSymbol, 0, len(t.types))
	for _, sym := range t.types {
		out = append(out, sym)
	}
	return out
}

// Builtins returns the runtime types every unit can rely on: System.Object,
// System.ValueType, System.String, System.Array and the twelve base kinds.
func Builtins() []*TypeSymbol {
	out := []*TypeSymbol{
		{FullName: "System.Object"},
		{FullName: "System.ValueType", Base: "System.Object"},
		{FullName: "System.String", Base: "System.Object"},
		{FullName: "System.Array", Base: "System.Object"},
	}
	for _, p := range types.Prims() {
		out = append(out, &TypeSymbol{
			FullName:  types.TypeName(p.FullName()),
			Base:      "System.ValueType",
			ValueType: true,
		})
	}
	return out
}

// WithBuiltins prepends Builtins to decls, skipping builtins that decls
// redeclare.
func WithBuiltins(decls ...*TypeSymbol) []*TypeSymbol {
	declared := make(map[string]bool, len(decls))
	for _, d := range decls {
		if d != nil {
			declared[d.FullName.FullName()] = true
		}
	}
	out := make([]*TypeSymbol, 0, len(decls)+16)
	for _, b := range Builtins() {
		if !declared[b.FullName.FullName()] {
			out = append(out, b)
		}
	}
	return append(out, decls...)
}
