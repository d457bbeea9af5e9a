package format

import "strings"

// NormalizeCode splits code into trimmed lines, dropping blank lines,
// `//` comments and preprocessor lines.
func NormalizeCode(code string) []string {
	lines := strings.Split(strings.ReplaceAll(code, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.Index(line, "//"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// CodeEqual compares two code fragments line by line after NormalizeCode.
// On mismatch it returns the first differing line pair (1-based index into
// the normalized lines, empty string for a missing line).
func CodeEqual(a, b string) (ok bool, line int, left, right string) {
	la, lb := NormalizeCode(a), NormalizeCode(b)
	n := max(len(la), len(lb))
	for i := range n {
		var x, y string
		if i < len(la) {
			x = la[i]
		}
		if i < len(lb) {
			y = lb[i]
		}
		if x != y || i >= len(la) || i >= len(lb) {
			return false, i + 1, x, y
		}
	}
	return true, 0, "", ""
}
