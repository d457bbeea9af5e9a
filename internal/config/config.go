// Package config loads ilnorm.toml, the per-project defaults for the CLI.
// Command-line flags override whatever the file sets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"ilnorm/internal/trace"
	"ilnorm/internal/transform"
)

// FileName is the configuration file looked up from the working directory upward.
const FileName = "ilnorm.toml"

type Config struct {
	Normalize NormalizeConfig `toml:"normalize"`
	Cache     CacheConfig     `toml:"cache"`
	Trace     TraceConfig     `toml:"trace"`
	UI        UIConfig        `toml:"ui"`
}

type NormalizeConfig struct {
	// Passes in execution order is fixed; this only selects which run.
	Passes         []string `toml:"passes"`
	Validate       bool     `toml:"validate"`
	Jobs           int      `toml:"jobs"`
	Out            string   `toml:"out"`
	Timings        bool     `toml:"timings"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

type UIConfig struct {
	Mode  string `toml:"mode"`
	Color string `toml:"color"`
}

// Default is the configuration used when no file is found.
func Default() Config {
	return Config{
		Normalize: NormalizeConfig{
			Passes:         []string{transform.CastElision{}.Name(), transform.OverloadPinning{}.Name()},
			MaxDiagnostics: 1000,
		},
		Cache: CacheConfig{Enabled: true},
		Trace: TraceConfig{Level: "off", Mode: "stream", Format: "auto"},
		UI:    UIConfig{Mode: "auto", Color: "auto"},
	}
}

// Find walks from startDir up to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest FileName; without one it returns
// Default and an empty path.
func Discover(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

// Load decodes path on top of Default. Unknown keys are errors: a typo in a
// pass name or section must not be silently ignored.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("normalize", "passes") && cfg.Normalize.Passes == nil {
		cfg.Normalize.Passes = []string{}
	}
	if meta.IsDefined("normalize", "max_diagnostics") && cfg.Normalize.MaxDiagnostics <= 0 {
		return Config{}, fmt.Errorf("%s: [normalize].max_diagnostics must be positive", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that have a closed set of spellings.
func (c Config) Validate() error {
	if _, err := c.Pipeline(); err != nil {
		return err
	}
	if c.Normalize.Jobs < 0 {
		return fmt.Errorf("[normalize].jobs must not be negative")
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("[trace].mode: %w", err)
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		return fmt.Errorf("[trace].format: %w", err)
	}
	for key, v := range map[string]string{"[ui].mode": c.UI.Mode, "[ui].color": c.UI.Color} {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "auto", "on", "off":
		default:
			return fmt.Errorf("%s: invalid value %q (expected auto|on|off)", key, v)
		}
	}
	return nil
}

// Pipeline translates [normalize] into a transform.Config.
func (c Config) Pipeline() (transform.Config, error) {
	cfg := transform.Config{Validate: c.Normalize.Validate}
	for _, name := range c.Normalize.Passes {
		switch strings.TrimSpace(name) {
		case transform.CastElision{}.Name():
			cfg.CastElision = true
		case transform.OverloadPinning{}.Name():
			cfg.Overloads = true
		default:
			return transform.Config{}, fmt.Errorf("[normalize].passes: unknown pass %q", name)
		}
	}
	return cfg, nil
}

// Template is the file written by `ilnorm init`.
func Template() string {
	return `# ilnorm configuration
[normalize]
# passes run in a fixed order; remove one to disable it
passes = ["cast_elision", "overload_pinning"]
validate = false
jobs = 0            # 0 = GOMAXPROCS
out = ""            # directory for normalized units; empty = do not write
timings = false
max_diagnostics = 1000

[cache]
enabled = true
dir = ""            # empty = $XDG_CACHE_HOME/ilnorm

[trace]
level = "off"       # off|error|phase|detail|debug
mode = "stream"     # stream|ring|both
output = ""
format = "auto"     # auto|text|ndjson

[ui]
mode = "auto"       # auto|on|off
color = "auto"      # auto|on|off
`
}
