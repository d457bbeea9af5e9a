package types

import "fmt"

// Prim enumerates the twelve base kinds the promotion rules know about.
type Prim uint8

const (
	PrimInvalid Prim = iota
	PrimSByte
	PrimByte
	PrimShort
	PrimUShort
	PrimInt
	PrimUInt
	PrimLong
	PrimULong
	PrimFloat
	PrimDouble
	PrimDecimal
	PrimChar
)

// Width captures the precision of integral kinds.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// PrimInfo is the precision/signedness descriptor of an integral kind.
type PrimInfo struct {
	Width  Width
	Signed bool
}

// integral covers the eight integral kinds only; char is handled by promoteInfo.
var integral = [...]PrimInfo{
	PrimSByte:  {Width: Width8, Signed: true},
	PrimByte:   {Width: Width8, Signed: false},
	PrimShort:  {Width: Width16, Signed: true},
	PrimUShort: {Width: Width16, Signed: false},
	PrimInt:    {Width: Width32, Signed: true},
	PrimUInt:   {Width: Width32, Signed: false},
	PrimLong:   {Width: Width64, Signed: true},
	PrimULong:  {Width: Width64, Signed: false},
}

// IntegralInfo returns the descriptor for the eight integral kinds.
func IntegralInfo(p Prim) (PrimInfo, bool) {
	if p < PrimSByte || p > PrimULong {
		return PrimInfo{}, false
	}
	return integral[p], true
}

// IsIntegral reports whether p is one of the eight integral kinds.
func (p Prim) IsIntegral() bool {
	_, ok := IntegralInfo(p)
	return ok
}

// IsValid reports whether p is one of the twelve base kinds.
func (p Prim) IsValid() bool {
	return p >= PrimSByte && p <= PrimChar
}

var keywords = [...]string{
	PrimInvalid: "",
	PrimSByte:   "sbyte",
	PrimByte:    "byte",
	PrimShort:   "short",
	PrimUShort:  "ushort",
	PrimInt:     "int",
	PrimUInt:    "uint",
	PrimLong:    "long",
	PrimULong:   "ulong",
	PrimFloat:   "float",
	PrimDouble:  "double",
	PrimDecimal: "decimal",
	PrimChar:    "char",
}

var clrNames = [...]string{
	PrimInvalid: "",
	PrimSByte:   "System.SByte",
	PrimByte:    "System.Byte",
	PrimShort:   "System.Int16",
	PrimUShort:  "System.UInt16",
	PrimInt:     "System.Int32",
	PrimUInt:    "System.UInt32",
	PrimLong:    "System.Int64",
	PrimULong:   "System.UInt64",
	PrimFloat:   "System.Single",
	PrimDouble:  "System.Double",
	PrimDecimal: "System.Decimal",
	PrimChar:    "System.Char",
}

// Keyword returns the source-language spelling ("int", "ulong", ...).
func (p Prim) Keyword() string {
	if int(p) < len(keywords) {
		return keywords[p]
	}
	return ""
}

// FullName returns the fully-qualified runtime type name ("System.Int32", ...).
func (p Prim) FullName() string {
	if int(p) < len(clrNames) {
		return clrNames[p]
	}
	return ""
}

func (p Prim) String() string {
	if p.IsValid() {
		return p.Keyword()
	}
	return fmt.Sprintf("Prim(%d)", p)
}

// Prims lists the twelve base kinds in declaration order.
func Prims() []Prim {
	out := make([]Prim, 0, PrimChar)
	for p := PrimSByte; p <= PrimChar; p++ {
		out = append(out, p)
	}
	return out
}
