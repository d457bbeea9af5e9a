package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena stores values of one kind and hands out stable 1-based indices.
// Index 0 is reserved as the "none" sentinel.
type Arena[T any] struct {
	data []T
}

// NewArena creates an arena whose backing slice starts with capacity capHint.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{
		data: make([]T, 0, capHint),
	}
}

// Allocate appends value and returns its 1-based index.
func (a *Arena[T]) Allocate(value T) uint32 {
	a.data = append(a.data, value)
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("ast: arena overflow: %w", err))
	}
	return n
}

// Get returns a pointer to the stored value or nil for index 0 and out of range indices.
func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(a.data) {
		return nil
	}
	return &a.data[index-1]
}

// READONLY
func (a *Arena[T]) Slice() []T {
	return a.data
}

func (a *Arena[T]) Len() uint32 {
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("ast: arena overflow: %w", err))
	}
	return n
}
