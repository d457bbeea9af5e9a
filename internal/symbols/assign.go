package symbols

import "ilnorm/internal/types"

// maxChainDepth bounds base-chain walks over malformed (cyclic) metadata.
const maxChainDepth = 64

// BaseChain returns name followed by its base types up to the root, in
// fully-qualified spelling. The walk stops at the first unresolved type.
func BaseChain(r Resolver, name types.TypeName) []types.TypeName {
	var chain []types.TypeName
	cur := name
	for depth := 0; cur != types.NoTypeName && depth < maxChainDepth; depth++ {
		chain = append(chain, types.TypeName(cur.FullName()))
		sym, ok := r.ResolveType(cur)
		if !ok {
			break
		}
		cur = sym.Base
	}
	return chain
}

// IsAssignable reports whether a value of type value can bind to a parameter
// of type param by walking value's inheritance chain and comparing
// fully-qualified names. There is no implicit numeric conversion here: an
// int literal does not bind to a long parameter.
func IsAssignable(r Resolver, param, value types.TypeName) bool {
	if param == types.NoTypeName || value == types.NoTypeName {
		return false
	}
	target := param.FullName()
	for _, link := range BaseChain(r, value) {
		if string(link) == target {
			return true
		}
	}
	return false
}
