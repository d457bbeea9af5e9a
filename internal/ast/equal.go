package ast

// Equal reports whether the subtrees at a and b have the same shape and
// payload values. Spans and parents are ignored.
func (t *Tree) Equal(a, b NodeID) bool {
	if a == b {
		return true
	}
	na, nb := t.Get(a), t.Get(b)
	if na == nil || nb == nil {
		return na == nb
	}
	if na.Kind != nb.Kind {
		return false
	}
	switch na.Kind {
	case KindIdent:
		x, _ := t.Ident(a)
		y, _ := t.Ident(b)
		return x.Name == y.Name
	case KindLiteral:
		x, _ := t.Literal(a)
		y, _ := t.Literal(b)
		return *x == *y
	case KindTypeRef:
		x, _ := t.TypeRef(a)
		y, _ := t.TypeRef(b)
		return x.Name == y.Name
	case KindBinary:
		x, _ := t.Binary(a)
		y, _ := t.Binary(b)
		if x.Op != y.Op {
			return false
		}
	case KindUnary:
		x, _ := t.Unary(a)
		y, _ := t.Unary(b)
		if x.Op != y.Op {
			return false
		}
	case KindMember:
		x, _ := t.Member(a)
		y, _ := t.Member(b)
		if x.Name != y.Name {
			return false
		}
	case KindMethod:
		x, _ := t.Method(a)
		y, _ := t.Method(b)
		if x.Name != y.Name || x.Declaring != y.Declaring || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if x.Params[i].Name != y.Params[i].Name {
				return false
			}
		}
	case KindUnit:
		x, _ := t.Unit(a)
		y, _ := t.Unit(b)
		if x.Name != y.Name {
			return false
		}
	}
	sa, sb := t.slots(a), t.slots(b)
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if sa[i].IsValid() != sb[i].IsValid() {
			return false
		}
		if sa[i].IsValid() && !t.Equal(*sa[i], *sb[i]) {
			return false
		}
	}
	return true
}
