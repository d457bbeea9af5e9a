package pattern

import (
	"iter"

	"ilnorm/internal/ast"
	"ilnorm/internal/types"
)

// Matcher runs one pattern. It holds no per-query state and may be shared
// between goroutines working on different trees.
type Matcher struct {
	pattern Pattern
	opts    Options
}

// New builds a matcher for p.
func New(p Pattern, opts Options) *Matcher {
	return &Matcher{pattern: p, opts: opts}
}

// Match tests p at node. On failure the returned Match is the zero value.
func (m *Matcher) Match(tree *ast.Tree, node ast.NodeID) (Match, bool) {
	if tree == nil || !node.IsValid() {
		return Match{}, false
	}
	s := &state{tree: tree, opts: m.opts}
	if !matchSlot(s, m.pattern, node, func() bool { return true }) {
		return Match{}, false
	}
	s.result.ok = true
	return s.result, true
}

// FindAll yields a match for every node under root (root included) where p
// matches, in preorder. Every iteration walks the tree again; nothing is
// cached between calls.
func (m *Matcher) FindAll(tree *ast.Tree, root ast.NodeID) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for id := range tree.Descendants(root) {
			if res, ok := m.Match(tree, id); ok && !yield(res) {
				return
			}
		}
	}
}

// Matches is a shortcut for a one-off query with default options.
func Matches(tree *ast.Tree, node ast.NodeID, p Pattern) (Match, bool) {
	return New(p, Options{}).Match(tree, node)
}

func sameTypeName(want, have string) bool {
	return types.TypeName(want).Same(types.TypeName(have))
}
