package ast

import (
	"fmt"

	"ilnorm/internal/source"
)

// Kind enumerates every syntactic construct the tree can hold. The set is closed:
// passes switch over it exhaustively.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Выражения

	// KindIdent is a local, parameter or field name.
	KindIdent
	// KindLiteral is a primitive constant with its own static type.
	KindLiteral
	// KindNull is the null literal.
	KindNull
	// KindThis is the implicit receiver.
	KindThis
	KindBinary
	KindUnary
	// KindCast is an explicit conversion `(T)value`.
	KindCast
	KindCall
	// KindMember is a qualified reference `target.Name`.
	KindMember
	// KindArrayCreate is `new T[size]` or `new T[] { ... }`.
	KindArrayCreate
	// KindTypeRef names a type; used for cast targets, parameter and return types
	// and static member qualifiers.
	KindTypeRef

	// Операторы

	KindReturn
	KindExprStmt
	KindBlock

	// Объявления

	KindMethod
	KindUnit
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindIdent:
		return "ident"
	case KindLiteral:
		return "literal"
	case KindNull:
		return "null"
	case KindThis:
		return "this"
	case KindBinary:
		return "binary"
	case KindUnary:
		return "unary"
	case KindCast:
		return "cast"
	case KindCall:
		return "call"
	case KindMember:
		return "member"
	case KindArrayCreate:
		return "array-create"
	case KindTypeRef:
		return "typeref"
	case KindReturn:
		return "return"
	case KindExprStmt:
		return "expr-stmt"
	case KindBlock:
		return "block"
	case KindMethod:
		return "method"
	case KindUnit:
		return "unit"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsExpr reports whether nodes of this kind appear in expression position.
func (k Kind) IsExpr() bool {
	return k >= KindIdent && k <= KindTypeRef
}

// IsStmt reports whether nodes of this kind appear in statement position.
func (k Kind) IsStmt() bool {
	return k >= KindReturn && k <= KindBlock
}

// Node is the arena entry shared by all kinds. Kind-specific data lives in the
// payload arena selected by Kind.
type Node struct {
	Kind    Kind
	Span    source.Span
	Parent  NodeID
	Payload PayloadID
}

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	// Арифметические

	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod

	// Битовые

	BinaryBitAnd
	BinaryBitOr
	BinaryBitXor
	BinaryShiftLeft
	BinaryShiftRight

	// Логические

	BinaryLogicalAnd
	BinaryLogicalOr

	// Сравнения

	BinaryEq
	BinaryNotEq
	BinaryLess
	BinaryLessEq
	BinaryGreater
	BinaryGreaterEq
)

var binaryTokens = [...]string{
	BinaryAdd:        "+",
	BinarySub:        "-",
	BinaryMul:        "*",
	BinaryDiv:        "/",
	BinaryMod:        "%",
	BinaryBitAnd:     "&",
	BinaryBitOr:      "|",
	BinaryBitXor:     "^",
	BinaryShiftLeft:  "<<",
	BinaryShiftRight: ">>",
	BinaryLogicalAnd: "&&",
	BinaryLogicalOr:  "||",
	BinaryEq:         "==",
	BinaryNotEq:      "!=",
	BinaryLess:       "<",
	BinaryLessEq:     "<=",
	BinaryGreater:    ">",
	BinaryGreaterEq:  ">=",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryTokens) {
		return binaryTokens[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", op)
}

// ParseBinaryOp maps an operator token back to its BinaryOp.
func ParseBinaryOp(tok string) (BinaryOp, bool) {
	for i, t := range binaryTokens {
		if t == tok {
			return BinaryOp(i), true
		}
	}
	return 0, false
}

// UnaryOp enumerates prefix operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryPlus
	UnaryBitNot
	UnaryNot
)

var unaryTokens = [...]string{
	UnaryNeg:    "-",
	UnaryPlus:   "+",
	UnaryBitNot: "~",
	UnaryNot:    "!",
}

func (op UnaryOp) String() string {
	if int(op) < len(unaryTokens) {
		return unaryTokens[op]
	}
	return fmt.Sprintf("UnaryOp(%d)", op)
}

// ParseUnaryOp maps an operator token back to its UnaryOp.
func ParseUnaryOp(tok string) (UnaryOp, bool) {
	for i, t := range unaryTokens {
		if t == tok {
			return UnaryOp(i), true
		}
	}
	return 0, false
}
