package ast

import "fmt"

// Validate checks that every node reachable from the root is reachable exactly
// once and points back at the node that holds it.
func (t *Tree) Validate() error {
	if !t.Root.IsValid() {
		return fmt.Errorf("ast: tree has no root")
	}
	if p := t.Parent(t.Root); p.IsValid() {
		return fmt.Errorf("ast: root %d has parent %d", t.Root, p)
	}
	seen := make(map[NodeID]struct{}, t.Nodes.Len())
	var check func(id NodeID) error
	check = func(id NodeID) error {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("ast: node %d (%s) reachable twice", id, t.Kind(id))
		}
		seen[id] = struct{}{}
		for _, child := range t.Children(id) {
			if t.Get(child) == nil {
				return fmt.Errorf("ast: node %d references unknown child %d", id, child)
			}
			if p := t.Parent(child); p != id {
				return fmt.Errorf("ast: child %d of %d has parent %d", child, id, p)
			}
			if err := check(child); err != nil {
				return err
			}
		}
		return nil
	}
	return check(t.Root)
}
