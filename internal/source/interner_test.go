package source

import (
	"fmt"
	"sync"
	"testing"
)

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID must map to empty string, got %q ok=%v", s, ok)
	}

	id1 := interner.Intern("Add")
	if id1 == NoStringID {
		t.Fatalf("non-empty string must not intern to NoStringID")
	}
	if id2 := interner.Intern("Add"); id1 != id2 {
		t.Fatalf("same string interned twice: %d != %d", id1, id2)
	}
	if s := interner.MustLookup(id1); s != "Add" {
		t.Fatalf("lookup returned %q", s)
	}
	if id3 := interner.Intern("Sub"); id3 == id1 {
		t.Fatalf("different strings share id %d", id1)
	}
	if _, ok := interner.Lookup(StringID(99)); ok {
		t.Fatalf("lookup of unknown id must fail")
	}
	if interner.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", interner.Len())
	}
}

func TestInternerConcurrent(t *testing.T) {
	interner := NewInterner()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				interner.Intern(fmt.Sprintf("name%d", i))
			}
		}()
	}
	wg.Wait()
	if interner.Len() != 101 {
		t.Fatalf("expected 101 entries, got %d", interner.Len())
	}
}
