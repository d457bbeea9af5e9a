package driver

import (
	"path/filepath"
	"strings"
)

// unitOutput is where one unit is written under Options.OutDir. clash names
// an earlier input that already claimed the same path.
type unitOutput struct {
	path  string
	clash string
}

// planOutputs keeps each input's position relative to the deepest directory
// shared by all inputs, so a/x.ilu and b/x.ilu stay apart under outDir.
func planOutputs(paths []string, outDir string) []unitOutput {
	plan := make([]unitOutput, len(paths))
	if outDir == "" || len(paths) == 0 {
		return plan
	}
	abs := make([]string, len(paths))
	for i, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			a = filepath.Clean(p)
		}
		abs[i] = a
	}
	root := filepath.Dir(abs[0])
	for _, a := range abs[1:] {
		root = commonDir(root, filepath.Dir(a))
	}

	claimed := make(map[string]string, len(paths))
	for i, a := range abs {
		rel, err := filepath.Rel(root, a)
		if err != nil || !isBelow(rel) {
			rel = filepath.Base(a)
		}
		out := filepath.Join(outDir, rel)
		if first, dup := claimed[out]; dup {
			plan[i] = unitOutput{clash: first}
			continue
		}
		claimed[out] = paths[i]
		plan[i] = unitOutput{path: out}
	}
	return plan
}

func commonDir(a, b string) string {
	for {
		if rel, err := filepath.Rel(a, b); err == nil && isBelow(rel) {
			return a
		}
		parent := filepath.Dir(a)
		if parent == a {
			return a
		}
		a = parent
	}
}

func isBelow(rel string) bool {
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
