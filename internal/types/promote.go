package types

import "ilnorm/internal/ast"

// PromoteBinary computes the operand type of a binary arithmetic, bitwise or
// relational operator. It returns false when the pair has no common type
// (decimal mixed with float or double) or either kind is not a base kind.
// The rules do not depend on operand order.
func PromoteBinary(left, right Prim) (Prim, bool) {
	if !left.IsValid() || !right.IsValid() {
		return PrimInvalid, false
	}
	either := func(p Prim) (Prim, bool) {
		switch p {
		case left:
			return right, true
		case right:
			return left, true
		}
		return PrimInvalid, false
	}

	if other, ok := either(PrimDecimal); ok {
		if other == PrimFloat || other == PrimDouble {
			return PrimInvalid, false
		}
		return PrimDecimal, true
	}
	if _, ok := either(PrimDouble); ok {
		return PrimDouble, true
	}
	if _, ok := either(PrimFloat); ok {
		return PrimFloat, true
	}
	if _, ok := either(PrimULong); ok {
		return PrimULong, true
	}
	if _, ok := either(PrimLong); ok {
		return PrimLong, true
	}
	if other, ok := either(PrimUInt); ok {
		// uint с более узким знаковым расширяется до long
		switch other {
		case PrimSByte, PrimShort, PrimInt:
			return PrimLong, true
		}
		return PrimUInt, true
	}
	return PrimInt, true
}

// PromoteUnary computes the result type of a prefix operator.
func PromoteUnary(operand Prim, op ast.UnaryOp) Prim {
	switch op {
	case ast.UnaryNeg:
		if operand == PrimUInt {
			return PrimLong
		}
		return promoteNarrow(operand)
	case ast.UnaryPlus, ast.UnaryBitNot:
		return promoteNarrow(operand)
	}
	return operand
}

func promoteNarrow(p Prim) Prim {
	switch p {
	case PrimSByte, PrimByte, PrimShort, PrimUShort, PrimChar:
		return PrimInt
	}
	return p
}

// IsSafeWideningCast reports whether converting an integral value of kind from
// to kind to can never change the value. Only the eight integral kinds
// qualify; signed to unsigned is never safe.
func IsSafeWideningCast(from, to Prim) bool {
	f, okFrom := IntegralInfo(from)
	t, okTo := IntegralInfo(to)
	if !okFrom || !okTo {
		return false
	}
	switch {
	case !t.Signed:
		return !f.Signed && f.Width <= t.Width
	case f.Signed:
		return f.Width <= t.Width
	default:
		// unsigned -> signed needs a spare bit for the sign
		return f.Width < t.Width
	}
}

// IsImplicitConversion reports whether a value of kind from converts to kind
// to without cast syntax.
func IsImplicitConversion(from, to Prim) bool {
	if from == to {
		return from.IsValid()
	}
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	fi, okFrom := conversionInfo(from)
	ti, okTo := IntegralInfo(to)
	if okFrom && okTo {
		if fi.Signed && !ti.Signed {
			return false
		}
		if fi.Signed == ti.Signed {
			return fi.Width <= ti.Width
		}
		return fi.Width < ti.Width
	}
	switch to {
	case PrimDecimal:
		return from != PrimFloat && from != PrimDouble
	case PrimDouble:
		return from != PrimDecimal
	}
	return false
}

// conversionInfo treats char as an unsigned 16-bit source.
func conversionInfo(p Prim) (PrimInfo, bool) {
	if p == PrimChar {
		return PrimInfo{Width: Width16, Signed: false}, true
	}
	return IntegralInfo(p)
}

// IsImplicitConversionName is IsImplicitConversion over annotation names.
// Identical names always convert; unknown names never do.
func IsImplicitConversionName(from, to TypeName) bool {
	if from != NoTypeName && from.Same(to) {
		return true
	}
	f, okFrom := PrimOf(from)
	t, okTo := PrimOf(to)
	if !okFrom || !okTo {
		return false
	}
	return IsImplicitConversion(f, t)
}
