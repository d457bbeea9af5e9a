package source

import (
	"fmt"
)

// UnitID identifies the compilation unit a node was reconstructed from.
type UnitID uint32

// Span is the range of IL offsets a node was reconstructed from.
type Span struct {
	Unit  UnitID
	Start uint32 // IL offset, inclusive
	End   uint32 // IL offset, exclusive
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:IL_%04x-IL_%04x", s.Unit, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
// Spans from different units are not merged.
func (s Span) Cover(other Span) Span {
	if s.Unit != other.Unit {
		return s
	}
	if s.Empty() {
		return other
	}
	if other.Empty() {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
