package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"ilnorm/internal/ast"
	"ilnorm/internal/types"
)

type Options struct {
	IndentWidth int
	UseTabs     bool
	// Header prints a `// unit <name>` line before the members of a unit.
	Header bool
}

func (o Options) withDefaults() Options {
	if o.IndentWidth == 0 {
		o.IndentWidth = 4
	}
	return o
}

type printer struct {
	tree   *ast.Tree
	writer *Writer
	opt    Options
}

// FormatUnit renders the whole tree starting at its root.
func FormatUnit(tree *ast.Tree, opt Options) ([]byte, error) {
	if tree == nil {
		return nil, errors.New("format: nil tree")
	}
	if !tree.Root.IsValid() {
		return nil, errors.New("format: tree has no root")
	}
	return FormatNode(tree, tree.Root, opt)
}

// FormatNode renders one node of any kind.
func FormatNode(tree *ast.Tree, id ast.NodeID, opt Options) ([]byte, error) {
	if tree == nil {
		return nil, errors.New("format: nil tree")
	}
	if tree.Get(id) == nil {
		return nil, fmt.Errorf("format: unknown node %d", id)
	}
	opt = opt.withDefaults()
	pr := printer{tree: tree, writer: NewWriter(opt), opt: opt}
	pr.printNode(id)
	return pr.writer.Bytes(), nil
}

// Expr renders an expression on a single line. Unknown nodes print as "?".
func Expr(tree *ast.Tree, id ast.NodeID) string {
	var sb strings.Builder
	writeExpr(&sb, tree, id, precLowest)
	return sb.String()
}

func (p *printer) printNode(id ast.NodeID) {
	switch kind := p.tree.Kind(id); {
	case kind == ast.KindUnit:
		p.printUnit(id)
	case kind == ast.KindMethod:
		p.printMethod(id)
	case kind.IsStmt():
		p.printStmt(id)
	default:
		p.writer.WriteString(Expr(p.tree, id))
	}
}

func (p *printer) printUnit(id ast.NodeID) {
	u, _ := p.tree.Unit(id)
	if p.opt.Header {
		p.writer.WriteString("// unit " + p.tree.Name(u.Name))
		p.writer.Newline()
	}
	for i, m := range u.Members {
		if i > 0 {
			p.writer.BlankLine()
		}
		p.printNode(m)
		p.writer.Newline()
	}
}

func (p *printer) printMethod(id ast.NodeID) {
	m, _ := p.tree.Method(id)
	ret, _ := p.tree.TypeRefName(m.Return)
	p.writer.WriteString(TypeName(ret))
	p.writer.Space()
	p.writer.WriteString(Identifier(p.tree.Name(m.Name)))
	p.writer.WriteString("(")
	for i, param := range m.Params {
		if i > 0 {
			p.writer.WriteString(", ")
		}
		pt, _ := p.tree.TypeRefName(param.Type)
		p.writer.WriteString(TypeName(pt))
		p.writer.Space()
		p.writer.WriteString(Identifier(p.tree.Name(param.Name)))
	}
	p.writer.WriteString(")")
	p.writer.Newline()
	if p.tree.Kind(m.Body) == ast.KindBlock {
		p.printStmt(m.Body)
		return
	}
	// тело без блока: оборачиваем сами
	p.writer.WriteString("{")
	p.writer.Newline()
	p.writer.IndentPush()
	if m.Body.IsValid() {
		p.printStmt(m.Body)
		p.writer.Newline()
	}
	p.writer.IndentPop()
	p.writer.WriteString("}")
}

func (p *printer) printStmt(id ast.NodeID) {
	switch p.tree.Kind(id) {
	case ast.KindBlock:
		b, _ := p.tree.Block(id)
		p.writer.WriteString("{")
		p.writer.Newline()
		p.writer.IndentPush()
		for _, s := range b.Stmts {
			p.printStmt(s)
			p.writer.Newline()
		}
		p.writer.IndentPop()
		p.writer.WriteString("}")
	case ast.KindReturn:
		r, _ := p.tree.Return(id)
		if !r.Value.IsValid() {
			p.writer.WriteString("return;")
			return
		}
		p.writer.WriteString("return " + Expr(p.tree, r.Value) + ";")
	case ast.KindExprStmt:
		s, _ := p.tree.ExprStmt(id)
		p.writer.WriteString(Expr(p.tree, s.Value) + ";")
	default:
		p.writer.WriteString(Expr(p.tree, id) + ";")
	}
}

// C# operator precedence, higher binds tighter.
const (
	precLowest = iota
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPrimary
)

func binaryPrec(op ast.BinaryOp) int {
	switch op {
	case ast.BinaryLogicalOr:
		return precLogicalOr
	case ast.BinaryLogicalAnd:
		return precLogicalAnd
	case ast.BinaryBitOr:
		return precBitOr
	case ast.BinaryBitXor:
		return precBitXor
	case ast.BinaryBitAnd:
		return precBitAnd
	case ast.BinaryEq, ast.BinaryNotEq:
		return precEquality
	case ast.BinaryLess, ast.BinaryLessEq, ast.BinaryGreater, ast.BinaryGreaterEq:
		return precRelational
	case ast.BinaryShiftLeft, ast.BinaryShiftRight:
		return precShift
	case ast.BinaryAdd, ast.BinarySub:
		return precAdditive
	default:
		return precMultiplicative
	}
}

func exprPrec(tree *ast.Tree, id ast.NodeID) int {
	switch tree.Kind(id) {
	case ast.KindBinary:
		b, _ := tree.Binary(id)
		return binaryPrec(b.Op)
	case ast.KindUnary, ast.KindCast:
		return precUnary
	default:
		return precPrimary
	}
}

// writeExpr prints id, parenthesizing it when it binds looser than floor.
func writeExpr(sb *strings.Builder, tree *ast.Tree, id ast.NodeID, floor int) {
	if exprPrec(tree, id) < floor {
		sb.WriteByte('(')
		writeExpr(sb, tree, id, precLowest)
		sb.WriteByte(')')
		return
	}
	switch tree.Kind(id) {
	case ast.KindIdent:
		d, _ := tree.Ident(id)
		sb.WriteString(Identifier(tree.Name(d.Name)))
	case ast.KindLiteral:
		d, _ := tree.Literal(id)
		sb.WriteString(literal(tree.Name(d.Type), tree.Name(d.Value)))
	case ast.KindNull:
		sb.WriteString("null")
	case ast.KindThis:
		sb.WriteString("this")
	case ast.KindTypeRef:
		name, _ := tree.TypeRefName(id)
		sb.WriteString(TypeName(name))
	case ast.KindBinary:
		d, _ := tree.Binary(id)
		prec := binaryPrec(d.Op)
		writeExpr(sb, tree, d.Left, prec)
		sb.WriteString(" " + d.Op.String() + " ")
		// левоассоциативные: правый операнд того же уровня в скобках
		writeExpr(sb, tree, d.Right, prec+1)
	case ast.KindUnary:
		d, _ := tree.Unary(id)
		var operand strings.Builder
		writeExpr(&operand, tree, d.Operand, precUnary)
		op := d.Op.String()
		sb.WriteString(op)
		if (d.Op == ast.UnaryNeg || d.Op == ast.UnaryPlus) && strings.HasPrefix(operand.String(), op) {
			// "- -x", not "--x"
			sb.WriteByte(' ')
		}
		sb.WriteString(operand.String())
	case ast.KindCast:
		d, _ := tree.Cast(id)
		name, _ := tree.TypeRefName(d.Type)
		sb.WriteString("(" + TypeName(name) + ")")
		var value strings.Builder
		writeExpr(&value, tree, d.Value, precUnary)
		v := value.String()
		if !isKeywordType(name) && (strings.HasPrefix(v, "-") || strings.HasPrefix(v, "+")) {
			// (T)-x would read as a subtraction
			v = "(" + v + ")"
		}
		sb.WriteString(v)
	case ast.KindCall:
		d, _ := tree.Call(id)
		writeExpr(sb, tree, d.Target, precPrimary)
		sb.WriteByte('(')
		for i, a := range d.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, tree, a, precLowest)
		}
		sb.WriteByte(')')
	case ast.KindMember:
		d, _ := tree.Member(id)
		writeExpr(sb, tree, d.Target, precPrimary)
		sb.WriteString("." + Identifier(tree.Name(d.Name)))
	case ast.KindArrayCreate:
		d, _ := tree.ArrayCreate(id)
		elem, _ := tree.TypeRefName(d.Elem)
		sb.WriteString("new " + TypeName(elem) + "[")
		if d.Size.IsValid() {
			writeExpr(sb, tree, d.Size, precLowest)
		}
		sb.WriteByte(']')
		if len(d.Elements) > 0 || !d.Size.IsValid() {
			sb.WriteString(" {")
			for i, e := range d.Elements {
				if i > 0 {
					sb.WriteByte(',')
				}
				sb.WriteByte(' ')
				writeExpr(sb, tree, e, precLowest)
			}
			sb.WriteString(" }")
		}
	default:
		sb.WriteByte('?')
	}
}

func isKeywordType(name string) bool {
	spelled := TypeName(name)
	if _, ok := types.PrimOf(types.TypeName(spelled)); ok {
		return true
	}
	return isSystemKeyword(spelled)
}

var literalSuffix = map[types.Prim]string{
	types.PrimUInt:    "u",
	types.PrimLong:    "L",
	types.PrimULong:   "UL",
	types.PrimFloat:   "f",
	types.PrimDecimal: "m",
}

// literal spells a constant so that C# infers the same static type for it.
func literal(typeName, value string) string {
	switch TypeName(typeName) {
	case "string":
		if isQuoted(value, '"') {
			return value
		}
		return strconv.Quote(value)
	case "char":
		if isQuoted(value, '\'') {
			return value
		}
		r, _ := utf8.DecodeRuneInString(value)
		return strconv.QuoteRune(r)
	}
	p, ok := types.PrimOf(types.TypeName(typeName))
	if !ok || !isBareNumber(value) {
		return value
	}
	if suffix, ok := literalSuffix[p]; ok {
		return value + suffix
	}
	if p == types.PrimDouble && !strings.ContainsAny(value, ".eE") {
		return value + ".0"
	}
	return value
}

func isQuoted(s string, q byte) bool {
	return len(s) >= 2 && s[0] == q && s[len(s)-1] == q
}

// isBareNumber reports whether s is a numeral without a type suffix.
func isBareNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		if s == "" {
			return false
		}
		for _, r := range s {
			if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
				return false
			}
		}
		return true
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789.eE+-", r) {
			return false
		}
	}
	return s[0] >= '0' && s[0] <= '9'
}
