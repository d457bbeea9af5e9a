package pattern

import "ilnorm/internal/ast"

// Capture is one named binding.
type Capture struct {
	Name string
	Node ast.NodeID
}

// Match is the result of a query: captures in the order they were bound.
// A name repeats when a repeated sub-pattern binds it several times. The zero
// Match is a failure; a successful match may still have no captures.
type Match struct {
	captures []Capture
	ok       bool
}

// Success reports whether the pattern matched.
func (m *Match) Success() bool { return m.ok }

// Captures returns a copy of the binding list.
func (m *Match) Captures() []Capture {
	return append([]Capture(nil), m.captures...)
}

// Len counts bindings.
func (m *Match) Len() int { return len(m.captures) }

// Add appends a binding.
func (m *Match) Add(name string, node ast.NodeID) {
	m.captures = append(m.captures, Capture{Name: name, Node: node})
}

// Checkpoint returns the current length of the capture list.
func (m *Match) Checkpoint() int { return len(m.captures) }

// Restore truncates the capture list back to a checkpoint.
func (m *Match) Restore(cp int) {
	if cp < 0 || cp > len(m.captures) {
		misuse("Restore", "", "checkpoint %d outside [0,%d]", cp, len(m.captures))
	}
	clear(m.captures[cp:])
	m.captures = m.captures[:cp]
}

// Get returns every node bound to name, in binding order.
func (m *Match) Get(name string) []ast.NodeID {
	var out []ast.NodeID
	for _, c := range m.captures {
		if c.Name == name {
			out = append(out, c.Node)
		}
	}
	return out
}

// Has reports whether name is bound at least once.
func (m *Match) Has(name string) bool {
	for _, c := range m.captures {
		if c.Name == name {
			return true
		}
	}
	return false
}

// First returns the earliest binding of name.
func (m *Match) First(name string) (ast.NodeID, bool) {
	for _, c := range m.captures {
		if c.Name == name {
			return c.Node, true
		}
	}
	return ast.NoNodeID, false
}

// Last returns the most recent binding of name and panics when there is none.
func (m *Match) Last(name string) ast.NodeID {
	if id, ok := m.last(name); ok {
		return id
	}
	misuse("Last", name, "no capture")
	return ast.NoNodeID
}

func (m *Match) last(name string) (ast.NodeID, bool) {
	for i := len(m.captures) - 1; i >= 0; i-- {
		if m.captures[i].Name == name {
			return m.captures[i].Node, true
		}
	}
	return ast.NoNodeID, false
}

// SingleOrNone returns the only binding of name, or NoNodeID when name is
// unbound. More than one binding panics.
func (m *Match) SingleOrNone(name string) ast.NodeID {
	found := ast.NoNodeID
	for _, c := range m.captures {
		if c.Name != name {
			continue
		}
		if found.IsValid() {
			misuse("SingleOrNone", name, "bound more than once")
		}
		found = c.Node
	}
	return found
}

// Single returns the only binding of name and panics on zero or many.
func (m *Match) Single(name string) ast.NodeID {
	id := m.SingleOrNone(name)
	if !id.IsValid() {
		misuse("Single", name, "no capture")
	}
	return id
}
