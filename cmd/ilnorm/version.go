package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"ilnorm/internal/transform"
	"ilnorm/internal/version"
)

// versionPayload is both the json output and the source of the pretty one.
type versionPayload struct {
	Tool       string   `json:"tool"`
	Version    string   `json:"version"`
	Passes     []string `json:"passes"`
	GoVersion  string   `json:"go_version"`
	GitCommit  string   `json:"git_commit,omitempty"`
	GitMessage string   `json:"git_message,omitempty"`
	BuildDate  string   `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ilnorm build information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	f := versionCmd.Flags()
	f.Bool("hash", false, "include git commit hash")
	f.Bool("message", false, "include git commit message")
	f.Bool("date", false, "include build timestamp")
	f.Bool("full", false, "show every recorded bit of build metadata")
	f.String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	format, _ := f.GetString("format")
	full, _ := f.GetBool("full")
	want := func(name string) bool {
		on, _ := f.GetBool(name)
		return on || full
	}

	p := buildVersionPayload()
	if !want("hash") {
		p.GitCommit = ""
	}
	if !want("message") {
		p.GitMessage = ""
	}
	if !want("date") {
		p.BuildDate = ""
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "pretty":
		printVersion(out, p)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

// buildVersionPayload fills every field; unset ldflags fall back to the
// VCS stamp the go tool embeds, then to "unknown".
func buildVersionPayload() versionPayload {
	p := versionPayload{
		Tool:       "ilnorm",
		Version:    cmp.Or(strings.TrimSpace(version.Version), "dev"),
		Passes:     transform.New(transform.DefaultConfig()).Passes(),
		GoVersion:  runtime.Version(),
		GitCommit:  strings.TrimSpace(version.GitCommit),
		GitMessage: strings.TrimSpace(version.GitMessage),
		BuildDate:  strings.TrimSpace(version.BuildDate),
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				p.GitCommit = cmp.Or(p.GitCommit, s.Value)
			case "vcs.time":
				p.BuildDate = cmp.Or(p.BuildDate, s.Value)
			}
		}
	}
	p.GitCommit = cmp.Or(p.GitCommit, "unknown")
	p.GitMessage = cmp.Or(p.GitMessage, "unknown")
	p.BuildDate = cmp.Or(p.BuildDate, "unknown")
	return p
}

func printVersion(out io.Writer, p versionPayload) {
	fmt.Fprintf(out, "ilnorm %s (%s)\n", version.Colored(), p.GoVersion)
	fmt.Fprintf(out, "passes: %s\n", strings.Join(p.Passes, ", "))
	for _, line := range [][2]string{{"commit", p.GitCommit}, {"message", p.GitMessage}, {"built", p.BuildDate}} {
		if line[1] != "" {
			fmt.Fprintf(out, "%-8s %s\n", line[0]+":", line[1])
		}
	}
}
