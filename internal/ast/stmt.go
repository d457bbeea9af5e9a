package ast

import "ilnorm/internal/source"

// ReturnData is `return Value;`; Value is NoNodeID for a bare return.
type ReturnData struct {
	Value NodeID
}

// ExprStmtData wraps an expression evaluated for its effects.
type ExprStmtData struct {
	Value NodeID
}

// BlockData is `{ Stmts... }`.
type BlockData struct {
	Stmts []NodeID
}

// Param is a declared method parameter; Type is a KindTypeRef node.
type Param struct {
	Name source.StringID
	Type NodeID
}

// MethodData is a decompiled method body with its declared signature.
type MethodData struct {
	Name      source.StringID
	Declaring source.StringID
	Return    NodeID
	Params    []Param
	Body      NodeID
}

// UnitData is the root of one compilation unit.
type UnitData struct {
	Name    source.StringID
	Members []NodeID
}
