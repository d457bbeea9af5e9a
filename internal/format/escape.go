package format

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"ilnorm/internal/types"
)

// csharpKeywords are reserved words that need a leading '@' when used as names.
var csharpKeywords = map[string]struct{}{
	"abstract": {}, "as": {}, "base": {}, "bool": {}, "break": {}, "byte": {},
	"case": {}, "catch": {}, "char": {}, "checked": {}, "class": {}, "const": {},
	"continue": {}, "decimal": {}, "default": {}, "delegate": {}, "do": {},
	"double": {}, "else": {}, "enum": {}, "event": {}, "explicit": {}, "extern": {},
	"false": {}, "finally": {}, "fixed": {}, "float": {}, "for": {}, "foreach": {},
	"goto": {}, "if": {}, "implicit": {}, "in": {}, "int": {}, "interface": {},
	"internal": {}, "is": {}, "lock": {}, "long": {}, "namespace": {}, "new": {},
	"null": {}, "object": {}, "operator": {}, "out": {}, "override": {},
	"params": {}, "private": {}, "protected": {}, "public": {}, "readonly": {},
	"ref": {}, "return": {}, "sbyte": {}, "sealed": {}, "short": {}, "sizeof": {},
	"stackalloc": {}, "static": {}, "string": {}, "struct": {}, "switch": {},
	"this": {}, "throw": {}, "true": {}, "try": {}, "typeof": {}, "uint": {},
	"ulong": {}, "unchecked": {}, "unsafe": {}, "ushort": {}, "using": {},
	"virtual": {}, "void": {}, "volatile": {}, "while": {},
}

// Ключевые слова для непримитивных системных типов; примитивы идут через types.
var systemAliases = map[string]string{
	"System.Object":  "object",
	"System.String":  "string",
	"System.Boolean": "bool",
	"System.Void":    "void",
}

// Identifier normalizes name to NFC and escapes characters that would not be
// visible in source as \uXXXX. Reserved words get a leading '@'.
func Identifier(name string) string {
	name = norm.NFC.String(name)
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		if visible(r) {
			sb.WriteRune(r)
			continue
		}
		writeEscaped(&sb, r)
	}
	out := sb.String()
	if _, reserved := csharpKeywords[out]; reserved {
		return "@" + out
	}
	return out
}

func visible(r rune) bool {
	if r == ' ' {
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsPunct(r) ||
		unicode.IsSymbol(r) || unicode.IsMark(r)
}

func writeEscaped(sb *strings.Builder, r rune) {
	if r > 0xFFFF {
		hi, lo := utf16.EncodeRune(r)
		fmt.Fprintf(sb, "\\u%04X\\u%04X", hi, lo)
		return
	}
	fmt.Fprintf(sb, "\\u%04X", r)
}

// TypeName spells name the way C# source does: keywords for primitives and
// the common system aliases, dotted names otherwise. Each dotted segment is
// escaped like an identifier.
func TypeName(name string) string {
	if kw := types.NormalizeName(name); kw != name {
		return kw
	}
	if kw, ok := systemAliases[name]; ok {
		return kw
	}
	if _, ok := types.PrimOf(types.TypeName(name)); ok {
		return name
	}
	if isSystemKeyword(name) {
		return name
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = Identifier(p)
	}
	return strings.Join(parts, ".")
}

func isSystemKeyword(name string) bool {
	for _, kw := range systemAliases {
		if kw == name {
			return true
		}
	}
	return false
}
