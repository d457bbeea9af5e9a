package unit

// SchemaVersion is bumped whenever File changes incompatibly.
const SchemaVersion uint16 = 1

// File is the flat serializable form of a Unit. Node references are 1-based
// indices into Nodes; 0 means "none".
type File struct {
	Schema uint16       `msgpack:"schema" json:"schema"`
	Name   string       `msgpack:"name" json:"name"`
	Root   uint32       `msgpack:"root" json:"root"`
	Nodes  []NodeRecord `msgpack:"nodes" json:"nodes"`
	Types  []TypeRecord `msgpack:"types,omitempty" json:"types,omitempty"`
}

// NodeRecord is one tree node. Which fields are meaningful depends on Kind:
//
//	ident            Name
//	literal          Type, Value
//	binary, unary    Op, Kids (left, right) / (operand)
//	cast             Type, Kids (value)
//	call             Kids (target, args...)
//	member           Name, Kids (target)
//	array-create     Type (element), Kids (size or 0, elements...)
//	typeref          Name
//	return           Kids (value), empty for a bare return
//	expr-stmt        Kids (value)
//	block            Kids (statements...)
//	method           Name, Declaring, Type (return), Params, Kids (body)
//	unit             Name, Kids (members...)
type NodeRecord struct {
	Kind      string        `msgpack:"k" json:"kind"`
	Name      string        `msgpack:"n,omitempty" json:"name,omitempty"`
	Type      string        `msgpack:"t,omitempty" json:"type,omitempty"`
	Value     string        `msgpack:"v,omitempty" json:"value,omitempty"`
	Op        string        `msgpack:"o,omitempty" json:"op,omitempty"`
	Declaring string        `msgpack:"d,omitempty" json:"declaring,omitempty"`
	Params    []ParamRecord `msgpack:"p,omitempty" json:"params,omitempty"`
	Kids      []uint32      `msgpack:"c,omitempty" json:"kids,omitempty"`
	Annot     string        `msgpack:"a,omitempty" json:"annot,omitempty"`
	Callee    *MethodRecord `msgpack:"m,omitempty" json:"callee,omitempty"`
	// IL offsets, [Start, End)
	Start uint32 `msgpack:"ss,omitempty" json:"start,omitempty"`
	End   uint32 `msgpack:"se,omitempty" json:"end,omitempty"`
}

// ParamRecord is a named, typed parameter.
type ParamRecord struct {
	Name string `msgpack:"n" json:"name"`
	Type string `msgpack:"t" json:"type"`
}

// MethodRecord describes a method declaration or a resolved callee.
type MethodRecord struct {
	Declaring string        `msgpack:"d,omitempty" json:"declaring,omitempty"`
	Name      string        `msgpack:"n" json:"name"`
	Params    []ParamRecord `msgpack:"p,omitempty" json:"params,omitempty"`
	Return    string        `msgpack:"r,omitempty" json:"return,omitempty"`
	Static    bool          `msgpack:"s,omitempty" json:"static,omitempty"`
}

// TypeRecord is a declared type of the symbol table.
type TypeRecord struct {
	Name      string          `msgpack:"n" json:"name"`
	Base      string          `msgpack:"b,omitempty" json:"base,omitempty"`
	ValueType bool            `msgpack:"v,omitempty" json:"value_type,omitempty"`
	Methods   []*MethodRecord `msgpack:"m,omitempty" json:"methods,omitempty"`
}
