package ast

import "ilnorm/internal/source"

// IdentData holds a simple name.
type IdentData struct {
	Name source.StringID
}

// LiteralData holds a constant's textual value and the name of its static type.
type LiteralData struct {
	Type  source.StringID
	Value source.StringID
}

// BinaryData is `Left Op Right`.
type BinaryData struct {
	Op    BinaryOp
	Left  NodeID
	Right NodeID
}

// UnaryData is `Op Operand`.
type UnaryData struct {
	Op      UnaryOp
	Operand NodeID
}

// CastData is `(Type)Value`; Type is a KindTypeRef node.
type CastData struct {
	Type  NodeID
	Value NodeID
}

// CallData is `Target(Args...)`.
type CallData struct {
	Target NodeID
	Args   []NodeID
}

// MemberData is `Target.Name`.
type MemberData struct {
	Target NodeID
	Name   source.StringID
}

// ArrayCreateData is `new Elem[Size]` or `new Elem[] { Elements... }`.
type ArrayCreateData struct {
	Elem     NodeID
	Size     NodeID
	Elements []NodeID
}

// TypeRefData names a type by keyword or fully-qualified name.
type TypeRefData struct {
	Name source.StringID
}
