package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultPipelineRunsBothPasses(t *testing.T) {
	cfg, err := Default().Pipeline()
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	if !cfg.CastElision || !cfg.Overloads || cfg.Validate {
		t.Fatalf("unexpected default pipeline: %+v", cfg)
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestTemplateMatchesDefault(t *testing.T) {
	path := writeConfig(t, t.TempDir(), Template())
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(template): %v", err)
	}
	def := Default()
	if strings.Join(cfg.Normalize.Passes, ",") != strings.Join(def.Normalize.Passes, ",") {
		t.Fatalf("passes = %v, want %v", cfg.Normalize.Passes, def.Normalize.Passes)
	}
	if cfg.Normalize.MaxDiagnostics != def.Normalize.MaxDiagnostics || !cfg.Cache.Enabled {
		t.Fatalf("template drifted from defaults: %+v", cfg)
	}
	if cfg.Trace.Level != "off" || cfg.UI.Mode != "auto" {
		t.Fatalf("template drifted from defaults: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[normalize]
passes = ["overload_pinning"]
validate = true
jobs = 3

[cache]
enabled = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, err := cfg.Pipeline()
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	if p.CastElision || !p.Overloads || !p.Validate {
		t.Fatalf("pipeline = %+v", p)
	}
	if cfg.Normalize.Jobs != 3 || cfg.Cache.Enabled {
		t.Fatalf("config = %+v", cfg)
	}
	// untouched keys keep defaults
	if cfg.Normalize.MaxDiagnostics != 1000 || cfg.Trace.Mode != "stream" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadEmptyPassList(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[normalize]\npasses = []\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, _ := cfg.Pipeline()
	if p.CastElision || p.Overloads {
		t.Fatalf("empty pass list still enables passes: %+v", p)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[normalize]\npases = []\n", "unknown keys"},
		{"unknown pass", "[normalize]\npasses = [\"inline\"]\n", "unknown pass"},
		{"bad level", "[trace]\nlevel = \"loud\"\n", "[trace].level"},
		{"bad ui", "[ui]\nmode = \"sometimes\"\n", "[ui].mode"},
		{"negative jobs", "[normalize]\njobs = -1\n", "jobs"},
		{"zero diagnostics", "[normalize]\nmax_diagnostics = 0\n", "max_diagnostics"},
		{"syntax", "[normalize\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tc.body)
			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, Template())
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("Find = %q, want %q", got, want)
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg, path, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	// a config may exist above the temp dir on a developer machine
	if path == "" && len(cfg.Normalize.Passes) != 2 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}
