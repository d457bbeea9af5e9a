package types

// TypeName is a symbolic type identifier as it appears in annotations: either a
// keyword ("int") or a fully-qualified name ("System.Int32", "Demo.Widget").
type TypeName string

const NoTypeName TypeName = ""

var (
	byKeyword  = make(map[string]Prim, len(keywords))
	byFullName = make(map[string]Prim, len(clrNames))
)

func init() {
	for _, p := range Prims() {
		byKeyword[p.Keyword()] = p
		byFullName[p.FullName()] = p
	}
}

// NormalizeName maps a fully-qualified primitive name to its keyword. Other
// names are returned unchanged.
func NormalizeName(name string) string {
	if p, ok := byFullName[name]; ok {
		return p.Keyword()
	}
	return name
}

// DenormalizeName maps a primitive keyword to its fully-qualified name. Other
// names are returned unchanged.
func DenormalizeName(name string) string {
	if p, ok := byKeyword[name]; ok {
		return p.FullName()
	}
	return name
}

// PrimOf resolves either spelling of a base kind.
func PrimOf(name TypeName) (Prim, bool) {
	if p, ok := byKeyword[string(name)]; ok {
		return p, true
	}
	if p, ok := byFullName[string(name)]; ok {
		return p, true
	}
	return PrimInvalid, false
}

// Keyword returns the keyword spelling of name when it is a base kind.
func (n TypeName) Keyword() string {
	return NormalizeName(string(n))
}

// FullName returns the fully-qualified spelling of name.
func (n TypeName) FullName() string {
	return DenormalizeName(string(n))
}

// Same reports whether two names denote the same type regardless of spelling.
func (n TypeName) Same(other TypeName) bool {
	return n.FullName() == other.FullName()
}

// IsPrimitive reports whether name is one of the twelve base kinds.
func (n TypeName) IsPrimitive() bool {
	_, ok := PrimOf(n)
	return ok
}
