package ast

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAttached is returned when a node that should have a parent is detached or the root.
	ErrNotAttached = errors.New("ast: node is not attached to a parent")
	// ErrAlreadyOwned is returned when a replacement node already has a parent.
	ErrAlreadyOwned = errors.New("ast: replacement node already has a parent")
	// ErrUnknownNode is returned for ids outside the arena.
	ErrUnknownNode = errors.New("ast: unknown node")
)

// slots returns pointers to every child reference stored in id's payload, in
// source order. Empty slots (NoNodeID) are included so callers can tell optional
// children apart from missing ones.
func (t *Tree) slots(id NodeID) []*NodeID {
	n := t.Get(id)
	if n == nil {
		return nil
	}
	p := uint32(n.Payload)
	switch n.Kind {
	case KindIdent, KindLiteral, KindNull, KindThis, KindTypeRef, KindInvalid:
		return nil
	case KindBinary:
		d := t.Binaries.Get(p)
		return []*NodeID{&d.Left, &d.Right}
	case KindUnary:
		d := t.Unaries.Get(p)
		return []*NodeID{&d.Operand}
	case KindCast:
		d := t.Casts.Get(p)
		return []*NodeID{&d.Type, &d.Value}
	case KindCall:
		d := t.Calls.Get(p)
		out := make([]*NodeID, 0, 1+len(d.Args))
		out = append(out, &d.Target)
		for i := range d.Args {
			out = append(out, &d.Args[i])
		}
		return out
	case KindMember:
		d := t.Members.Get(p)
		return []*NodeID{&d.Target}
	case KindArrayCreate:
		d := t.ArrayCreates.Get(p)
		out := make([]*NodeID, 0, 2+len(d.Elements))
		out = append(out, &d.Elem, &d.Size)
		for i := range d.Elements {
			out = append(out, &d.Elements[i])
		}
		return out
	case KindReturn:
		d := t.Returns.Get(p)
		return []*NodeID{&d.Value}
	case KindExprStmt:
		d := t.ExprStmts.Get(p)
		return []*NodeID{&d.Value}
	case KindBlock:
		d := t.Blocks.Get(p)
		out := make([]*NodeID, 0, len(d.Stmts))
		for i := range d.Stmts {
			out = append(out, &d.Stmts[i])
		}
		return out
	case KindMethod:
		d := t.Methods.Get(p)
		out := make([]*NodeID, 0, 2+len(d.Params))
		out = append(out, &d.Return)
		for i := range d.Params {
			out = append(out, &d.Params[i].Type)
		}
		out = append(out, &d.Body)
		return out
	case KindUnit:
		d := t.Units.Get(p)
		out := make([]*NodeID, 0, len(d.Members))
		for i := range d.Members {
			out = append(out, &d.Members[i])
		}
		return out
	}
	panic(fmt.Sprintf("ast: unhandled kind %s", n.Kind))
}

// Children returns the non-empty children of id in source order. The slice is
// a snapshot: later replacements do not affect it.
func (t *Tree) Children(id NodeID) []NodeID {
	slots := t.slots(id)
	out := make([]NodeID, 0, len(slots))
	for _, s := range slots {
		if s.IsValid() {
			out = append(out, *s)
		}
	}
	return out
}

// Replace puts repl into the parent slot that currently holds old. old is
// detached and keeps its own subtree; repl must not have a parent. The root
// cannot be replaced.
func (t *Tree) Replace(old, repl NodeID) error {
	oldNode := t.Get(old)
	if oldNode == nil {
		return fmt.Errorf("replace %d: %w", old, ErrUnknownNode)
	}
	replNode := t.Get(repl)
	if replNode == nil {
		return fmt.Errorf("replace with %d: %w", repl, ErrUnknownNode)
	}
	if old == repl {
		return nil
	}
	parent := oldNode.Parent
	if !parent.IsValid() {
		return fmt.Errorf("replace %d: %w", old, ErrNotAttached)
	}
	if replNode.Parent.IsValid() && replNode.Parent != old {
		return fmt.Errorf("replace %d with %d: %w", old, repl, ErrAlreadyOwned)
	}
	if replNode.Parent == old {
		// Hoisting a child over its parent: unlink it from old first.
		t.clearSlot(old, repl)
	}
	for _, s := range t.slots(parent) {
		if *s == old {
			*s = repl
			replNode.Parent = parent
			oldNode.Parent = NoNodeID
			return nil
		}
	}
	return fmt.Errorf("replace %d: parent %d does not reference it", old, parent)
}

// Wrap puts a new node around id in its parent slot. build receives id
// already detached and must return a fresh node that owns it, typically a
// cast built with NewCast. Unlike Replace plus Clone, node ids inside the
// wrapped subtree survive, and so do side-table entries keyed by them.
func (t *Tree) Wrap(id NodeID, build func(inner NodeID) NodeID) (NodeID, error) {
	n := t.Get(id)
	if n == nil {
		return NoNodeID, fmt.Errorf("wrap %d: %w", id, ErrUnknownNode)
	}
	parent := n.Parent
	if !parent.IsValid() {
		return NoNodeID, fmt.Errorf("wrap %d: %w", id, ErrNotAttached)
	}
	idx := -1
	for i, s := range t.slots(parent) {
		if *s == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NoNodeID, fmt.Errorf("wrap %d: parent %d does not reference it", id, parent)
	}

	n.Parent = NoNodeID
	w := build(id)
	// build may have grown the arenas; re-read everything
	if t.Parent(id) != w || t.Parent(w).IsValid() {
		if t.Parent(id) == NoNodeID {
			t.Get(id).Parent = parent
		}
		return NoNodeID, fmt.Errorf("wrap %d: builder did not adopt the node", id)
	}
	*t.slots(parent)[idx] = w
	t.Get(w).Parent = parent
	return w, nil
}

// ReplaceWithChild replaces old by one of its own children, the usual shape of
// "unwrap" rewrites such as removing a cast.
func (t *Tree) ReplaceWithChild(old, child NodeID) error {
	if t.Parent(child) != old {
		return fmt.Errorf("replace %d with %d: not a child", old, child)
	}
	return t.Replace(old, child)
}

func (t *Tree) clearSlot(parent, child NodeID) {
	for _, s := range t.slots(parent) {
		if *s == child {
			*s = NoNodeID
		}
	}
	if n := t.Get(child); n != nil {
		n.Parent = NoNodeID
	}
}

// Detach unlinks id from its parent, leaving an empty slot behind. Use only
// for optional slots (return value, array size); required slots should be
// filled with Replace.
func (t *Tree) Detach(id NodeID) error {
	n := t.Get(id)
	if n == nil {
		return fmt.Errorf("detach %d: %w", id, ErrUnknownNode)
	}
	if !n.Parent.IsValid() {
		return fmt.Errorf("detach %d: %w", id, ErrNotAttached)
	}
	t.clearSlot(n.Parent, id)
	return nil
}

// Clone deep-copies the subtree at id. The copy is detached and gets fresh ids.
func (t *Tree) Clone(id NodeID) NodeID {
	n := t.Get(id)
	if n == nil {
		return NoNodeID
	}
	span := n.Span
	switch n.Kind {
	case KindIdent:
		d := *t.Idents.Get(uint32(n.Payload))
		return t.new(KindIdent, span, t.Idents.Allocate(d))
	case KindLiteral:
		d := *t.Literals.Get(uint32(n.Payload))
		return t.new(KindLiteral, span, t.Literals.Allocate(d))
	case KindNull, KindThis:
		return t.new(n.Kind, span, 0)
	case KindTypeRef:
		d := *t.TypeRefs.Get(uint32(n.Payload))
		return t.new(KindTypeRef, span, t.TypeRefs.Allocate(d))
	case KindBinary:
		d := *t.Binaries.Get(uint32(n.Payload))
		return t.NewBinary(span, d.Op, t.Clone(d.Left), t.Clone(d.Right))
	case KindUnary:
		d := *t.Unaries.Get(uint32(n.Payload))
		return t.NewUnary(span, d.Op, t.Clone(d.Operand))
	case KindCast:
		d := *t.Casts.Get(uint32(n.Payload))
		name, _ := t.TypeRefName(d.Type)
		return t.NewCast(span, name, t.Clone(d.Value))
	case KindCall:
		d := t.Calls.Get(uint32(n.Payload))
		target, args := d.Target, append([]NodeID(nil), d.Args...)
		return t.NewCall(span, t.Clone(target), t.cloneAll(args)...)
	case KindMember:
		d := *t.Members.Get(uint32(n.Payload))
		target := t.Clone(d.Target)
		c := t.new(KindMember, span, t.Members.Allocate(MemberData{Target: target, Name: d.Name}))
		t.adopt(c, target)
		return c
	case KindArrayCreate:
		d := t.ArrayCreates.Get(uint32(n.Payload))
		elem, size, elems := d.Elem, d.Size, append([]NodeID(nil), d.Elements...)
		name, _ := t.TypeRefName(elem)
		return t.NewArrayCreate(span, name, t.Clone(size), t.cloneAll(elems)...)
	case KindReturn:
		d := *t.Returns.Get(uint32(n.Payload))
		return t.NewReturn(span, t.Clone(d.Value))
	case KindExprStmt:
		d := *t.ExprStmts.Get(uint32(n.Payload))
		return t.NewExprStmt(span, t.Clone(d.Value))
	case KindBlock:
		stmts := append([]NodeID(nil), t.Blocks.Get(uint32(n.Payload)).Stmts...)
		return t.NewBlock(span, t.cloneAll(stmts)...)
	case KindMethod, KindUnit:
		panic(fmt.Sprintf("ast: clone of %s is not supported", n.Kind))
	}
	panic(fmt.Sprintf("ast: unhandled kind %s", n.Kind))
}

func (t *Tree) cloneAll(ids []NodeID) []NodeID {
	out := make([]NodeID, len(ids))
	for i, id := range ids {
		out[i] = t.Clone(id)
	}
	return out
}
