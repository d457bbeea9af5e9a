package ast

import (
	"fmt"

	"ilnorm/internal/source"
)

// Hints sizes the arenas of a new tree; zero fields fall back to defaults.
type Hints struct{ Nodes, Exprs, Stmts uint }

// Tree owns every node of one compilation unit. Each non-root node has exactly
// one parent; subtrees are never shared.
type Tree struct {
	Strings *source.Interner
	Nodes   *Arena[Node]
	Root    NodeID

	Idents       *Arena[IdentData]
	Literals     *Arena[LiteralData]
	Binaries     *Arena[BinaryData]
	Unaries      *Arena[UnaryData]
	Casts        *Arena[CastData]
	Calls        *Arena[CallData]
	Members      *Arena[MemberData]
	ArrayCreates *Arena[ArrayCreateData]
	TypeRefs     *Arena[TypeRefData]
	Returns      *Arena[ReturnData]
	ExprStmts    *Arena[ExprStmtData]
	Blocks       *Arena[BlockData]
	Methods      *Arena[MethodData]
	Units        *Arena[UnitData]
}

// NewTree creates an empty tree. A nil strings interner gets a private one.
func NewTree(strings *source.Interner, hints Hints) *Tree {
	if strings == nil {
		strings = source.NewInterner()
	}
	if hints.Nodes == 0 {
		hints.Nodes = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 7
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 5
	}
	return &Tree{
		Strings:      strings,
		Nodes:        NewArena[Node](hints.Nodes),
		Idents:       NewArena[IdentData](hints.Exprs),
		Literals:     NewArena[LiteralData](hints.Exprs),
		Binaries:     NewArena[BinaryData](hints.Exprs),
		Unaries:      NewArena[UnaryData](hints.Exprs),
		Casts:        NewArena[CastData](hints.Exprs),
		Calls:        NewArena[CallData](hints.Exprs),
		Members:      NewArena[MemberData](hints.Exprs),
		ArrayCreates: NewArena[ArrayCreateData](hints.Exprs),
		TypeRefs:     NewArena[TypeRefData](hints.Exprs),
		Returns:      NewArena[ReturnData](hints.Stmts),
		ExprStmts:    NewArena[ExprStmtData](hints.Stmts),
		Blocks:       NewArena[BlockData](hints.Stmts),
		Methods:      NewArena[MethodData](hints.Stmts),
		Units:        NewArena[UnitData](1),
	}
}

func (t *Tree) new(kind Kind, span source.Span, payload uint32) NodeID {
	return NodeID(t.Nodes.Allocate(Node{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

// adopt links child under parent. A child that already has a parent is a
// construction bug: subtrees must not be shared.
func (t *Tree) adopt(parent NodeID, children ...NodeID) {
	for _, child := range children {
		if !child.IsValid() {
			continue
		}
		n := t.Nodes.Get(uint32(child))
		if n == nil {
			panic(fmt.Sprintf("ast: adopt of unknown node %d", child))
		}
		if n.Parent.IsValid() && n.Parent != parent {
			panic(fmt.Sprintf("ast: node %d already owned by %d", child, n.Parent))
		}
		n.Parent = parent
	}
}

// Get returns the node header or nil.
func (t *Tree) Get(id NodeID) *Node {
	return t.Nodes.Get(uint32(id))
}

// Kind returns the kind of id, KindInvalid for unknown ids.
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Get(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

// Parent returns the owning node, NoNodeID for the root and detached nodes.
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Get(id); n != nil {
		return n.Parent
	}
	return NoNodeID
}

// Name resolves an interned string.
func (t *Tree) Name(id source.StringID) string {
	s, _ := t.Strings.Lookup(id)
	return s
}

func (t *Tree) payload(id NodeID, kind Kind) (uint32, bool) {
	n := t.Get(id)
	if n == nil || n.Kind != kind {
		return 0, false
	}
	return uint32(n.Payload), true
}

// NewIdent creates an identifier expression.
func (t *Tree) NewIdent(span source.Span, name string) NodeID {
	p := t.Idents.Allocate(IdentData{Name: t.Strings.Intern(name)})
	return t.new(KindIdent, span, p)
}

// Ident returns the identifier data for id.
func (t *Tree) Ident(id NodeID) (*IdentData, bool) {
	p, ok := t.payload(id, KindIdent)
	if !ok {
		return nil, false
	}
	return t.Idents.Get(p), true
}

// NewLiteral creates a constant of the given static type ("int", "System.Int64", ...).
func (t *Tree) NewLiteral(span source.Span, typeName, value string) NodeID {
	p := t.Literals.Allocate(LiteralData{
		Type:  t.Strings.Intern(typeName),
		Value: t.Strings.Intern(value),
	})
	return t.new(KindLiteral, span, p)
}

// Literal returns the literal data for id.
func (t *Tree) Literal(id NodeID) (*LiteralData, bool) {
	p, ok := t.payload(id, KindLiteral)
	if !ok {
		return nil, false
	}
	return t.Literals.Get(p), true
}

// NewNull creates the null literal.
func (t *Tree) NewNull(span source.Span) NodeID {
	return t.new(KindNull, span, 0)
}

// NewThis creates the receiver expression.
func (t *Tree) NewThis(span source.Span) NodeID {
	return t.new(KindThis, span, 0)
}

// NewBinary creates `left op right`.
func (t *Tree) NewBinary(span source.Span, op BinaryOp, left, right NodeID) NodeID {
	p := t.Binaries.Allocate(BinaryData{Op: op, Left: left, Right: right})
	id := t.new(KindBinary, span, p)
	t.adopt(id, left, right)
	return id
}

// Binary returns the binary data for id.
func (t *Tree) Binary(id NodeID) (*BinaryData, bool) {
	p, ok := t.payload(id, KindBinary)
	if !ok {
		return nil, false
	}
	return t.Binaries.Get(p), true
}

// NewUnary creates `op operand`.
func (t *Tree) NewUnary(span source.Span, op UnaryOp, operand NodeID) NodeID {
	p := t.Unaries.Allocate(UnaryData{Op: op, Operand: operand})
	id := t.new(KindUnary, span, p)
	t.adopt(id, operand)
	return id
}

// Unary returns the unary data for id.
func (t *Tree) Unary(id NodeID) (*UnaryData, bool) {
	p, ok := t.payload(id, KindUnary)
	if !ok {
		return nil, false
	}
	return t.Unaries.Get(p), true
}

// NewCast creates `(typeName)value`.
func (t *Tree) NewCast(span source.Span, typeName string, value NodeID) NodeID {
	typ := t.NewTypeRef(span, typeName)
	p := t.Casts.Allocate(CastData{Type: typ, Value: value})
	id := t.new(KindCast, span, p)
	t.adopt(id, typ, value)
	return id
}

// Cast returns the cast data for id.
func (t *Tree) Cast(id NodeID) (*CastData, bool) {
	p, ok := t.payload(id, KindCast)
	if !ok {
		return nil, false
	}
	return t.Casts.Get(p), true
}

// CastTypeName returns the target type name of a cast node.
func (t *Tree) CastTypeName(id NodeID) (string, bool) {
	c, ok := t.Cast(id)
	if !ok {
		return "", false
	}
	return t.TypeRefName(c.Type)
}

// NewCall creates `target(args...)`.
func (t *Tree) NewCall(span source.Span, target NodeID, args ...NodeID) NodeID {
	p := t.Calls.Allocate(CallData{Target: target, Args: append([]NodeID(nil), args...)})
	id := t.new(KindCall, span, p)
	t.adopt(id, target)
	t.adopt(id, args...)
	return id
}

// Call returns the call data for id.
func (t *Tree) Call(id NodeID) (*CallData, bool) {
	p, ok := t.payload(id, KindCall)
	if !ok {
		return nil, false
	}
	return t.Calls.Get(p), true
}

// NewMember creates `target.name`.
func (t *Tree) NewMember(span source.Span, target NodeID, name string) NodeID {
	p := t.Members.Allocate(MemberData{Target: target, Name: t.Strings.Intern(name)})
	id := t.new(KindMember, span, p)
	t.adopt(id, target)
	return id
}

// Member returns the member data for id.
func (t *Tree) Member(id NodeID) (*MemberData, bool) {
	p, ok := t.payload(id, KindMember)
	if !ok {
		return nil, false
	}
	return t.Members.Get(p), true
}

// NewArrayCreate creates `new elem[size]` (size may be NoNodeID when elements are given).
func (t *Tree) NewArrayCreate(span source.Span, elemType string, size NodeID, elements ...NodeID) NodeID {
	elem := t.NewTypeRef(span, elemType)
	p := t.ArrayCreates.Allocate(ArrayCreateData{
		Elem:     elem,
		Size:     size,
		Elements: append([]NodeID(nil), elements...),
	})
	id := t.new(KindArrayCreate, span, p)
	t.adopt(id, elem, size)
	t.adopt(id, elements...)
	return id
}

// ArrayCreate returns the array creation data for id.
func (t *Tree) ArrayCreate(id NodeID) (*ArrayCreateData, bool) {
	p, ok := t.payload(id, KindArrayCreate)
	if !ok {
		return nil, false
	}
	return t.ArrayCreates.Get(p), true
}

// NewTypeRef creates a type reference.
func (t *Tree) NewTypeRef(span source.Span, name string) NodeID {
	p := t.TypeRefs.Allocate(TypeRefData{Name: t.Strings.Intern(name)})
	return t.new(KindTypeRef, span, p)
}

// TypeRef returns the type reference data for id.
func (t *Tree) TypeRef(id NodeID) (*TypeRefData, bool) {
	p, ok := t.payload(id, KindTypeRef)
	if !ok {
		return nil, false
	}
	return t.TypeRefs.Get(p), true
}

// TypeRefName returns the referenced type name.
func (t *Tree) TypeRefName(id NodeID) (string, bool) {
	tr, ok := t.TypeRef(id)
	if !ok {
		return "", false
	}
	return t.Name(tr.Name), true
}

// NewReturn creates `return value;`; value may be NoNodeID.
func (t *Tree) NewReturn(span source.Span, value NodeID) NodeID {
	p := t.Returns.Allocate(ReturnData{Value: value})
	id := t.new(KindReturn, span, p)
	t.adopt(id, value)
	return id
}

// Return returns the return statement data for id.
func (t *Tree) Return(id NodeID) (*ReturnData, bool) {
	p, ok := t.payload(id, KindReturn)
	if !ok {
		return nil, false
	}
	return t.Returns.Get(p), true
}

// NewExprStmt creates an expression statement.
func (t *Tree) NewExprStmt(span source.Span, value NodeID) NodeID {
	p := t.ExprStmts.Allocate(ExprStmtData{Value: value})
	id := t.new(KindExprStmt, span, p)
	t.adopt(id, value)
	return id
}

// ExprStmt returns the expression statement data for id.
func (t *Tree) ExprStmt(id NodeID) (*ExprStmtData, bool) {
	p, ok := t.payload(id, KindExprStmt)
	if !ok {
		return nil, false
	}
	return t.ExprStmts.Get(p), true
}

// NewBlock creates `{ stmts... }`.
func (t *Tree) NewBlock(span source.Span, stmts ...NodeID) NodeID {
	p := t.Blocks.Allocate(BlockData{Stmts: append([]NodeID(nil), stmts...)})
	id := t.new(KindBlock, span, p)
	t.adopt(id, stmts...)
	return id
}

// Block returns the block data for id.
func (t *Tree) Block(id NodeID) (*BlockData, bool) {
	p, ok := t.payload(id, KindBlock)
	if !ok {
		return nil, false
	}
	return t.Blocks.Get(p), true
}

// ParamSpec describes a parameter for NewMethod.
type ParamSpec struct {
	Name string
	Type string
}

// NewMethod creates a method declaration owning its signature type refs and body.
func (t *Tree) NewMethod(span source.Span, declaring, name, returnType string, params []ParamSpec, body NodeID) NodeID {
	ret := t.NewTypeRef(span, returnType)
	ps := make([]Param, 0, len(params))
	for _, p := range params {
		ps = append(ps, Param{
			Name: t.Strings.Intern(p.Name),
			Type: t.NewTypeRef(span, p.Type),
		})
	}
	p := t.Methods.Allocate(MethodData{
		Name:      t.Strings.Intern(name),
		Declaring: t.Strings.Intern(declaring),
		Return:    ret,
		Params:    ps,
		Body:      body,
	})
	id := t.new(KindMethod, span, p)
	t.adopt(id, ret)
	for _, param := range ps {
		t.adopt(id, param.Type)
	}
	t.adopt(id, body)
	return id
}

// Method returns the method data for id.
func (t *Tree) Method(id NodeID) (*MethodData, bool) {
	p, ok := t.payload(id, KindMethod)
	if !ok {
		return nil, false
	}
	return t.Methods.Get(p), true
}

// NewUnit creates a compilation unit root and makes it the tree root.
func (t *Tree) NewUnit(span source.Span, name string, members ...NodeID) NodeID {
	p := t.Units.Allocate(UnitData{Name: t.Strings.Intern(name), Members: append([]NodeID(nil), members...)})
	id := t.new(KindUnit, span, p)
	t.adopt(id, members...)
	t.Root = id
	return id
}

// Unit returns the unit data for id.
func (t *Tree) Unit(id NodeID) (*UnitData, bool) {
	p, ok := t.payload(id, KindUnit)
	if !ok {
		return nil, false
	}
	return t.Units.Get(p), true
}

// EnclosingMethod walks parents until a method node is found.
func (t *Tree) EnclosingMethod(id NodeID) (NodeID, bool) {
	for cur := t.Parent(id); cur.IsValid(); cur = t.Parent(cur) {
		if t.Kind(cur) == KindMethod {
			return cur, true
		}
	}
	return NoNodeID, false
}
