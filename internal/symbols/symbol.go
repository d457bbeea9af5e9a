package symbols

import (
	"strings"

	"ilnorm/internal/types"
)

// ParamSymbol is a declared parameter of a method.
type ParamSymbol struct {
	Name string
	Type types.TypeName
}

// MethodSymbol is a method as declared in metadata.
type MethodSymbol struct {
	Declaring types.TypeName
	Name      string
	Params    []ParamSymbol
	Return    types.TypeName
	Static    bool
}

// Ref returns the reference form used by call annotations.
func (m *MethodSymbol) Ref() MethodRef {
	ref := MethodRef{
		Declaring: m.Declaring,
		Name:      m.Name,
		Return:    m.Return,
		Params:    make([]types.TypeName, len(m.Params)),
	}
	for i, p := range m.Params {
		ref.Params[i] = p.Type
	}
	return ref
}

// Signature renders `Name(T1, T2)` with keyword spellings.
func (m *MethodSymbol) Signature() string {
	return m.Ref().Signature()
}

// TypeSymbol is a declared type: its base type, value-type flag and methods.
type TypeSymbol struct {
	FullName  types.TypeName
	Base      types.TypeName
	ValueType bool
	Methods   []*MethodSymbol
}

// MethodsNamed returns the methods called name with exactly arity parameters,
// in declaration order.
func (t *TypeSymbol) MethodsNamed(name string, arity int) []*MethodSymbol {
	if t == nil {
		return nil
	}
	var out []*MethodSymbol
	for _, m := range t.Methods {
		if m.Name == name && len(m.Params) == arity {
			out = append(out, m)
		}
	}
	return out
}

// MethodRef is the resolved-callee annotation attached to call nodes: enough
// to find the declaration again and to know the parameter types it binds.
type MethodRef struct {
	Declaring types.TypeName
	Name      string
	Params    []types.TypeName
	Return    types.TypeName
}

// Arity is the declared parameter count.
func (r MethodRef) Arity() int {
	return len(r.Params)
}

// Signature renders `Name(T1, T2)` with keyword spellings.
func (r MethodRef) Signature() string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	sb.WriteByte('(')
	for i, p := range r.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Keyword())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Matches reports whether m declares the same name and parameter types as r.
func (r MethodRef) Matches(m *MethodSymbol) bool {
	if m == nil || m.Name != r.Name || len(m.Params) != len(r.Params) {
		return false
	}
	for i, p := range m.Params {
		if !p.Type.Same(r.Params[i]) {
			return false
		}
	}
	return true
}
