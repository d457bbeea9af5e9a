// Package pattern is a small backtracking matcher over ast trees. Passes
// describe an idiom as a tree of pattern nodes, bind the interesting parts
// with Named and test them again further down with Backref.
//
// A nil sub-pattern matches an empty child slot only.
//
// The matcher is an interpreter: every pattern receives the node to test and
// a continuation that matches the rest of the pattern. Choice points take a
// checkpoint of the capture list, try an alternative and restore on failure.
package pattern

import (
	"fmt"

	"ilnorm/internal/ast"
)

// BackrefPolicy selects how a Backref compares with the earlier capture.
type BackrefPolicy uint8

const (
	// BackrefIdentity requires the very same node.
	BackrefIdentity BackrefPolicy = iota
	// BackrefStructural requires an equal subtree (kinds, payloads, children).
	BackrefStructural
)

func (p BackrefPolicy) String() string {
	switch p {
	case BackrefIdentity:
		return "identity"
	case BackrefStructural:
		return "structural"
	}
	return fmt.Sprintf("BackrefPolicy(%d)", p)
}

// Options configure a Matcher.
type Options struct {
	Backref BackrefPolicy
}

// MisuseError reports a defect in the calling pattern or pass: a required
// single capture that is missing or repeated, or a back-reference to a name
// that was never bound. It is raised with panic, never returned.
type MisuseError struct {
	Op   string
	Name string
	Msg  string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("pattern: %s(%q): %s", e.Op, e.Name, e.Msg)
}

func misuse(op, name, format string, args ...any) {
	panic(&MisuseError{Op: op, Name: name, Msg: fmt.Sprintf(format, args...)})
}

// Pattern is one node of a pattern tree.
type Pattern interface {
	// match tests id and, on success, calls k to match whatever follows.
	// It returns k's result; on false the capture list is as it was on entry.
	match(s *state, id ast.NodeID, k func() bool) bool
}

// seqPattern is implemented by patterns that may consume zero or several
// elements of a child sequence (call arguments, block statements).
type seqPattern interface {
	Pattern
	// matchSeq consumes a prefix of ids and calls rest with the remainder.
	matchSeq(s *state, ids []ast.NodeID, rest func([]ast.NodeID) bool) bool
}

type state struct {
	tree   *ast.Tree
	opts   Options
	result Match
}

// try runs f and rolls captures back if it fails.
func (s *state) try(f func() bool) bool {
	cp := s.result.Checkpoint()
	if f() {
		return true
	}
	s.result.Restore(cp)
	return false
}

// matchSeq matches pats against ids left to right; k runs once every pattern
// is matched and every id consumed.
func matchSeq(s *state, pats []Pattern, ids []ast.NodeID, k func() bool) bool {
	if len(pats) == 0 {
		if len(ids) != 0 {
			return false
		}
		return k()
	}
	head, tail := pats[0], pats[1:]
	if sp, ok := head.(seqPattern); ok {
		return sp.matchSeq(s, ids, func(remaining []ast.NodeID) bool {
			return matchSeq(s, tail, remaining, k)
		})
	}
	if len(ids) == 0 {
		return false
	}
	return s.try(func() bool {
		return head.match(s, ids[0], func() bool {
			return matchSeq(s, tail, ids[1:], k)
		})
	})
}

// matchSlot matches p against a single child slot. Sequence patterns see the
// slot as a sequence of zero (empty slot) or one element.
func matchSlot(s *state, p Pattern, id ast.NodeID, k func() bool) bool {
	if p == nil {
		return !id.IsValid() && k()
	}
	if sp, ok := p.(seqPattern); ok {
		var ids []ast.NodeID
		if id.IsValid() {
			ids = []ast.NodeID{id}
		}
		return s.try(func() bool {
			return sp.matchSeq(s, ids, func(remaining []ast.NodeID) bool {
				return len(remaining) == 0 && k()
			})
		})
	}
	if !id.IsValid() {
		return false
	}
	return s.try(func() bool { return p.match(s, id, k) })
}
