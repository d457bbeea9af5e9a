package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ilnorm/internal/config"
	"ilnorm/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ilnorm",
	Short: "Semantic normalization for decompiled IL units",
	Long: `ilnorm rewrites reconstructed expression trees so that they read like
source code: redundant numeric casts are removed and overloaded calls are
pinned to the method the binary actually calls.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  prepareCommand,
	PersistentPostRunE: finishCommand,
}

// appConfig is the merged ilnorm.toml; flags read it as their fallback.
var (
	appConfig     = config.Default()
	appConfigPath string
	cleanups      []func()
)

// errFailed reports a run that already printed its diagnostics.
var errFailed = errors.New("normalization failed")

func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to "+config.FileName+" (default: search upward from the working directory)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("ui", "auto", "progress UI (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 1000, "maximum number of diagnostics per unit")
	pf.String("trace", "", "trace output file (\"-\" for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "ring buffer size for --trace-mode ring|both")
	pf.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 = off)")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			dumpTrace(os.Stderr)
			panic(r)
		}
	}()
	err := rootCmd.Execute()
	if err != nil {
		dumpTrace(os.Stderr)
	}
	// PersistentPostRunE is skipped when a command fails
	_ = finishCommand(rootCmd, nil)
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		}
		os.Exit(1)
	}
}

// prepareCommand loads the configuration and sets up color and tracing
// before any subcommand runs.
func prepareCommand(cmd *cobra.Command, _ []string) error {
	_ = finishCommand(cmd, nil)
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		appConfig, err = config.Load(path)
		appConfigPath = path
	} else {
		appConfig, appConfigPath, err = config.Discover(".")
	}
	if err != nil {
		return err
	}

	colorMode, err := stringSetting(cmd, "color", appConfig.UI.Color)
	if err != nil {
		return err
	}
	if err := applyColorMode(colorMode); err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, cleanup)
	if cleanup, err = setupProfiling(cmd); err != nil {
		_ = finishCommand(cmd, nil)
		return err
	}
	cleanups = append(cleanups, cleanup)
	return nil
}

// finishCommand runs cleanups in reverse order of setup.
func finishCommand(*cobra.Command, []string) error {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
	return nil
}

func applyColorMode(mode string) error {
	switch t, err := readToggle("color", mode); {
	case err != nil:
		return err
	case t == toggleOn:
		color.NoColor = false
	case t == toggleOff:
		color.NoColor = true
	}
	// auto: fatih/color already checks the terminal and NO_COLOR
	return nil
}

// stringSetting returns the persistent flag if it was given on the command
// line, otherwise fallback from the configuration file.
func stringSetting(cmd *cobra.Command, name, fallback string) (string, error) {
	flags := cmd.Root().PersistentFlags()
	v, err := flags.GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if flags.Changed(name) || fallback == "" {
		return v, nil
	}
	return fallback, nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
