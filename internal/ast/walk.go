package ast

import "iter"

// Walk visits the subtree at root in preorder. Returning false from visit
// skips the children of that node.
func (t *Tree) Walk(root NodeID, visit func(NodeID) bool) {
	if !root.IsValid() {
		return
	}
	if !visit(root) {
		return
	}
	for _, child := range t.Children(root) {
		t.Walk(child, visit)
	}
}

// PostOrder visits children before their parent. Children are snapshotted
// before descending, so visit may replace the node it is given.
func (t *Tree) PostOrder(root NodeID, visit func(NodeID)) {
	if !root.IsValid() {
		return
	}
	for _, child := range t.Children(root) {
		t.PostOrder(child, visit)
	}
	visit(root)
}

// Descendants yields root and every node below it in preorder. Each call to
// the returned sequence starts a fresh traversal.
func (t *Tree) Descendants(root NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !root.IsValid() {
			return
		}
		stack := []NodeID{root}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(id) {
				return
			}
			children := t.Children(id)
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}
}

// OfKind filters Descendants by kind.
func (t *Tree) OfKind(root NodeID, kind Kind) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for id := range t.Descendants(root) {
			if t.Kind(id) == kind && !yield(id) {
				return
			}
		}
	}
}
