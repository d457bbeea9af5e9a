package types

import (
	"math"
	"testing"

	"ilnorm/internal/ast"
)

func TestPromoteBinarySymmetric(t *testing.T) {
	for _, a := range Prims() {
		for _, b := range Prims() {
			ab, okAB := PromoteBinary(a, b)
			ba, okBA := PromoteBinary(b, a)
			if ab != ba || okAB != okBA {
				t.Fatalf("PromoteBinary(%s,%s)=%s,%v but PromoteBinary(%s,%s)=%s,%v", a, b, ab, okAB, b, a, ba, okBA)
			}
		}
	}
}

func TestPromoteBinaryLadder(t *testing.T) {
	tests := []struct {
		a, b Prim
		want Prim
		ok   bool
	}{
		{PrimInt, PrimInt, PrimInt, true},
		{PrimInt, PrimLong, PrimLong, true},
		{PrimByte, PrimByte, PrimInt, true},
		{PrimChar, PrimChar, PrimInt, true},
		{PrimUInt, PrimSByte, PrimLong, true},
		{PrimUInt, PrimShort, PrimLong, true},
		{PrimUInt, PrimInt, PrimLong, true},
		{PrimUInt, PrimByte, PrimUInt, true},
		{PrimUInt, PrimUShort, PrimUInt, true},
		{PrimUInt, PrimUInt, PrimUInt, true},
		{PrimULong, PrimInt, PrimULong, true},
		{PrimFloat, PrimLong, PrimFloat, true},
		{PrimDouble, PrimFloat, PrimDouble, true},
		{PrimDecimal, PrimLong, PrimDecimal, true},
		{PrimDecimal, PrimDouble, PrimInvalid, false},
		{PrimDecimal, PrimFloat, PrimInvalid, false},
		{PrimInvalid, PrimInt, PrimInvalid, false},
	}
	for _, tt := range tests {
		got, ok := PromoteBinary(tt.a, tt.b)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PromoteBinary(%s, %s) = %s,%v; want %s,%v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPromoteUnary(t *testing.T) {
	tests := []struct {
		in   Prim
		op   ast.UnaryOp
		want Prim
	}{
		{PrimUInt, ast.UnaryNeg, PrimLong},
		{PrimInt, ast.UnaryNeg, PrimInt},
		{PrimSByte, ast.UnaryNeg, PrimInt},
		{PrimByte, ast.UnaryBitNot, PrimInt},
		{PrimShort, ast.UnaryPlus, PrimInt},
		{PrimUShort, ast.UnaryPlus, PrimInt},
		{PrimChar, ast.UnaryBitNot, PrimInt},
		{PrimUInt, ast.UnaryBitNot, PrimUInt},
		{PrimLong, ast.UnaryNeg, PrimLong},
		{PrimULong, ast.UnaryBitNot, PrimULong},
		{PrimByte, ast.UnaryNot, PrimByte},
	}
	for _, tt := range tests {
		if got := PromoteUnary(tt.in, tt.op); got != tt.want {
			t.Errorf("PromoteUnary(%s, %s) = %s, want %s", tt.in, tt.op, got, tt.want)
		}
	}
}

// valueRange returns the inclusive bounds of an integral kind.
func valueRange(p Prim) (lo int64, hi uint64) {
	info, _ := IntegralInfo(p)
	if info.Signed {
		return -(int64(1) << (info.Width - 1)), uint64(1)<<(info.Width-1) - 1
	}
	if info.Width == Width64 {
		return 0, math.MaxUint64
	}
	return 0, uint64(1)<<info.Width - 1
}

func TestSafeWideningCastIsSound(t *testing.T) {
	for _, from := range Prims() {
		for _, to := range Prims() {
			safe := IsSafeWideningCast(from, to)
			if !from.IsIntegral() || !to.IsIntegral() {
				if safe {
					t.Fatalf("non-integral pair %s->%s reported safe", from, to)
				}
				continue
			}
			fLo, fHi := valueRange(from)
			tLo, tHi := valueRange(to)
			fits := fLo >= tLo && fHi <= tHi
			if safe && !fits {
				t.Fatalf("%s->%s reported safe but range [%d,%d] does not fit [%d,%d]", from, to, fLo, fHi, tLo, tHi)
			}
			if fits != safe {
				t.Errorf("%s->%s: safe=%v, range fits=%v", from, to, safe, fits)
			}
		}
	}
}

func TestSafeWideningCastCases(t *testing.T) {
	tests := []struct {
		from, to Prim
		want     bool
	}{
		{PrimInt, PrimLong, true},
		{PrimInt, PrimInt, true},
		{PrimUInt, PrimUInt, true},
		{PrimInt, PrimUInt, false},
		{PrimUInt, PrimInt, false},
		{PrimUInt, PrimLong, true},
		{PrimByte, PrimShort, true},
		{PrimSByte, PrimByte, false},
		{PrimLong, PrimInt, false},
		{PrimInt, PrimDouble, false},
		{PrimChar, PrimInt, false},
	}
	for _, tt := range tests {
		if got := IsSafeWideningCast(tt.from, tt.to); got != tt.want {
			t.Errorf("IsSafeWideningCast(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestImplicitConversion(t *testing.T) {
	tests := []struct {
		from, to Prim
		want     bool
	}{
		{PrimInt, PrimInt, true},
		{PrimInt, PrimLong, true},
		{PrimUInt, PrimLong, true},
		{PrimUInt, PrimULong, true},
		{PrimByte, PrimShort, true},
		{PrimByte, PrimUShort, true},
		{PrimUInt, PrimInt, false},
		{PrimInt, PrimUInt, false},
		{PrimLong, PrimInt, false},
		{PrimSByte, PrimByte, false},
		{PrimChar, PrimInt, true},
		{PrimChar, PrimUShort, true},
		{PrimChar, PrimShort, false},
		{PrimInt, PrimChar, false},
		{PrimFloat, PrimDouble, true},
		{PrimLong, PrimDouble, true},
		{PrimInt, PrimDecimal, true},
		{PrimFloat, PrimDecimal, false},
		{PrimDouble, PrimDecimal, false},
		{PrimDecimal, PrimDouble, false},
		{PrimDouble, PrimFloat, false},
		{PrimInvalid, PrimInvalid, false},
	}
	for _, tt := range tests {
		if got := IsImplicitConversion(tt.from, tt.to); got != tt.want {
			t.Errorf("IsImplicitConversion(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestImplicitConversionNeverNarrowsIntegrals(t *testing.T) {
	for _, from := range Prims() {
		for _, to := range Prims() {
			if !from.IsIntegral() || !to.IsIntegral() || !IsImplicitConversion(from, to) {
				continue
			}
			fLo, fHi := valueRange(from)
			tLo, tHi := valueRange(to)
			if fLo < tLo || fHi > tHi {
				t.Fatalf("implicit %s->%s loses values", from, to)
			}
		}
	}
}

func TestImplicitConversionName(t *testing.T) {
	if !IsImplicitConversionName("System.Int32", "long") {
		t.Fatalf("System.Int32 -> long should be implicit")
	}
	if !IsImplicitConversionName("Demo.Widget", "Demo.Widget") {
		t.Fatalf("identical names always convert")
	}
	if IsImplicitConversionName("Demo.Widget", "int") {
		t.Fatalf("unknown source must not convert")
	}
	if IsImplicitConversionName(NoTypeName, NoTypeName) {
		t.Fatalf("missing names must not convert")
	}
}
