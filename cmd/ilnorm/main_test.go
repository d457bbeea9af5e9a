package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ilnorm/internal/config"
	"ilnorm/internal/testkit"
)

// writeUnit stores `long M() { return (long)a + b; }` with a:int, b:long.
func writeUnit(t *testing.T, path string) {
	t.Helper()
	if err := testkit.SaveRedundantCastUnit(path, "Demo"); err != nil {
		t.Fatalf("save: %v", err)
	}
}

// resetFlags puts every flag back to its default; cobra keeps values between
// Execute calls on the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI with a fresh config file in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err != nil {
		if err := os.WriteFile(cfgPath, []byte(config.Template()), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	full := append([]string{"--config", cfgPath, "--color", "off", "--ui", "off"}, args...)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNormalizeCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, filepath.Join(dir, "units", "demo.ilu"))
	outDir := filepath.Join(dir, "out")

	out, err := run(t, dir, "normalize", "--no-cache", "--format", "json", "--out", outDir, filepath.Join(dir, "units"))
	if err != nil {
		t.Fatalf("normalize: %v\n%s", err, out)
	}
	var payload reportJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if len(payload.Units) != 1 || payload.Changes != 1 || payload.Failed != 0 {
		t.Fatalf("unexpected report: %+v", payload)
	}
	if payload.Units[0].Output != filepath.Join(outDir, "demo.ilu") {
		t.Fatalf("output = %q", payload.Units[0].Output)
	}

	printed, err := run(t, dir, "print", payload.Units[0].Output)
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(printed, "return a + b;") {
		t.Fatalf("normalized unit still has the cast:\n%s", printed)
	}
}

func TestNormalizeCommandPassSelection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.json")
	writeUnit(t, path)

	out, err := run(t, dir, "normalize", "--no-cache", "--format", "json", "--passes", "overload_pinning", path)
	if err != nil {
		t.Fatalf("normalize: %v\n%s", err, out)
	}
	var payload reportJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if payload.Changes != 0 || len(payload.Units[0].Passes) != 1 || payload.Units[0].Passes[0].Name != "overload_pinning" {
		t.Fatalf("unexpected report: %+v", payload)
	}

	if _, err := run(t, dir, "normalize", "--no-cache", "--passes", "inline", path); err == nil {
		t.Fatalf("expected unknown pass error")
	}
}

func TestNormalizeCommandFailsOnBrokenUnit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := run(t, dir, "normalize", "--no-cache", "--format", "golden", path)
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
	if !strings.Contains(out, "error ") || !strings.Contains(out, "broken.json") {
		t.Fatalf("diagnostic missing:\n%s", out)
	}
}

func TestPrintCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.ilu")
	writeUnit(t, path)

	out, err := run(t, dir, "print", "--header", path)
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.HasPrefix(out, "// unit Demo\n") || !strings.Contains(out, "return (long)a + b;") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = run(t, dir, "print", "--normalize", path)
	if err != nil {
		t.Fatalf("print --normalize: %v", err)
	}
	if !strings.Contains(out, "return a + b;") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "project")
	if _, err := run(t, dir, "init", target); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := config.Load(filepath.Join(target, config.FileName)); err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if _, err := run(t, dir, "init", target); err == nil {
		t.Fatalf("second init must refuse to overwrite")
	}
}

func TestVersionCommandJSON(t *testing.T) {
	out, err := run(t, t.TempDir(), "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "ilnorm" || len(payload.Passes) != 2 || payload.GoVersion == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestReadToggle(t *testing.T) {
	for in, want := range map[string]toggle{"": toggleAuto, "AUTO": toggleAuto, "on": toggleOn, " off ": toggleOff} {
		got, err := readToggle("ui", in)
		if err != nil || got != want {
			t.Fatalf("readToggle(%q) = %q, %v", in, got, err)
		}
	}
	_, err := readToggle("color", "maybe")
	if err == nil || !strings.Contains(err.Error(), "--color") {
		t.Fatalf("expected --color error, got %v", err)
	}
	never := func() bool { return false }
	if !toggleOn.enabled(never) || toggleOff.enabled(func() bool { return true }) || toggleAuto.enabled(never) {
		t.Fatalf("enabled does not honor the toggle")
	}
}

func TestUnitNames(t *testing.T) {
	names := unitNames([]string{"a.ilu", "b.json"})
	if names(2) != "b.json" || names(0) != "unit0" || names(3) != "unit3" {
		t.Fatalf("unexpected names: %q %q %q", names(2), names(0), names(3))
	}
}
