// Package annot is the side-table of inferred types and resolved callees that
// the reconstruction stage attaches to tree nodes. Passes read it and may add
// entries; an existing entry is never overwritten with a different value.
package annot

import (
	"errors"
	"fmt"

	"ilnorm/internal/ast"
	"ilnorm/internal/symbols"
	"ilnorm/internal/types"
)

// ErrConflict is returned when a pass tries to record a type that disagrees
// with an existing annotation.
var ErrConflict = errors.New("annot: conflicting type annotation")

// Table maps nodes to their inferred type and, for calls, the resolved callee.
// A Table belongs to one tree and is not safe for concurrent mutation.
type Table struct {
	types   map[ast.NodeID]types.TypeName
	methods map[ast.NodeID]symbols.MethodRef
}

// New returns an empty table.
func New() *Table {
	return &Table{
		types:   make(map[ast.NodeID]types.TypeName),
		methods: make(map[ast.NodeID]symbols.MethodRef),
	}
}

// Type returns the inferred type of id; false means "not annotated".
func (t *Table) Type(id ast.NodeID) (types.TypeName, bool) {
	if t == nil {
		return types.NoTypeName, false
	}
	name, ok := t.types[id]
	return name, ok
}

// SetType records the inferred type of id. Re-recording the same type (in
// either spelling) is a no-op; a different type returns ErrConflict and keeps
// the original.
func (t *Table) SetType(id ast.NodeID, name types.TypeName) error {
	if !id.IsValid() || name == types.NoTypeName {
		return fmt.Errorf("annot: invalid annotation %q on node %d", name, id)
	}
	if prev, ok := t.types[id]; ok {
		if prev.Same(name) {
			return nil
		}
		return fmt.Errorf("node %d: have %s, got %s: %w", id, prev.Keyword(), name.Keyword(), ErrConflict)
	}
	t.types[id] = name
	return nil
}

// Method returns the resolved callee recorded on a call node.
func (t *Table) Method(id ast.NodeID) (symbols.MethodRef, bool) {
	if t == nil {
		return symbols.MethodRef{}, false
	}
	ref, ok := t.methods[id]
	return ref, ok
}

// SetMethod records the resolved callee of a call node.
func (t *Table) SetMethod(id ast.NodeID, ref symbols.MethodRef) {
	t.methods[id] = ref
}

// Len counts type annotations.
func (t *Table) Len() int {
	return len(t.types)
}

// Each calls fn for every type annotation; order is unspecified.
func (t *Table) Each(fn func(ast.NodeID, types.TypeName)) {
	for id, name := range t.types {
		fn(id, name)
	}
}

// EachMethod calls fn for every callee annotation; order is unspecified.
func (t *Table) EachMethod(fn func(ast.NodeID, symbols.MethodRef)) {
	for id, ref := range t.methods {
		fn(id, ref)
	}
}

// Prim returns the base kind of id's annotation.
func (t *Table) Prim(id ast.NodeID) (types.Prim, bool) {
	name, ok := t.Type(id)
	if !ok {
		return types.PrimInvalid, false
	}
	return types.PrimOf(name)
}

// StaticType is the best known type of an expression: its annotation, else
// the target of a cast, else the declared type of a literal.
func StaticType(tree *ast.Tree, t *Table, id ast.NodeID) (types.TypeName, bool) {
	if name, ok := t.Type(id); ok {
		return name, true
	}
	switch tree.Kind(id) {
	case ast.KindCast:
		if name, ok := tree.CastTypeName(id); ok && name != "" {
			return types.TypeName(name), true
		}
	case ast.KindLiteral:
		lit, _ := tree.Literal(id)
		if name := tree.Name(lit.Type); name != "" {
			return types.TypeName(name), true
		}
	}
	return types.NoTypeName, false
}

// StaticPrim is StaticType restricted to base kinds.
func StaticPrim(tree *ast.Tree, t *Table, id ast.NodeID) (types.Prim, bool) {
	name, ok := StaticType(tree, t, id)
	if !ok {
		return types.PrimInvalid, false
	}
	return types.PrimOf(name)
}
