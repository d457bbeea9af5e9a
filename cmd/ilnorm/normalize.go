package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"ilnorm/internal/diag"
	"ilnorm/internal/diagfmt"
	"ilnorm/internal/driver"
	"ilnorm/internal/observ"
	"ilnorm/internal/source"
	"ilnorm/internal/version"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [flags] <unit|directory>...",
	Short: "Normalize unit files",
	Long: `Run the normalization passes over unit files (.ilu msgpack or .json).
Directories are searched recursively. Results are cached per unit content and
pass selection; --out writes the normalized units.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().String("out", "", "directory for normalized units")
	normalizeCmd.Flags().StringSlice("passes", nil, "passes to run (cast_elision,overload_pinning)")
	normalizeCmd.Flags().Bool("validate", false, "re-check tree well-formedness after every pass")
	normalizeCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	normalizeCmd.Flags().Bool("no-cache", false, "disable the disk cache")
	normalizeCmd.Flags().String("cache-dir", "", "disk cache directory")
	normalizeCmd.Flags().String("format", "pretty", "output format (pretty|golden|json|sarif)")
	normalizeCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	normalizeCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
}

type normalizeSettings struct {
	format           string
	withNotes        bool
	warningsAsErrors bool
	quiet            bool
	ui               toggle
}

func runNormalize(cmd *cobra.Command, args []string) error {
	files, err := driver.ListUnitFiles(args)
	if err != nil {
		return fmt.Errorf("failed to list units: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no unit files found in %s", strings.Join(args, ", "))
	}

	opts, settings, err := readNormalizeOptions(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	counter := &driver.Counter{}
	opts.Sink = counter
	runProgress.Store(counter)
	defer runProgress.Store(nil)

	start := time.Now()
	var report *driver.Report
	if !settings.quiet && settings.format == "pretty" && settings.ui.enabled(stdoutIsTerminal) {
		report, err = runNormalizeWithUI(ctx, "normalizing", files, opts)
	} else {
		report, err = driver.NormalizeAll(ctx, files, opts)
	}
	if report == nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch settings.format {
	case "json":
		if jerr := renderReportJSON(out, report, files, settings.withNotes); jerr != nil {
			return jerr
		}
	case "golden":
		if text := diag.FormatGolden(report.Diagnostics().Items(), unitNames(files), settings.withNotes); text != "" {
			fmt.Fprintln(out, text)
		}
	case "sarif":
		meta := diagfmt.SarifRunMeta{ToolName: "ilnorm", ToolVersion: version.Version, InvocationArgs: os.Args[1:]}
		if serr := diagfmt.Sarif(out, report.Diagnostics(), unitNames(files), meta); serr != nil {
			return serr
		}
	default:
		if perr := renderReportPretty(out, report, files, settings, time.Since(start)); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}

	bag := report.Diagnostics()
	if bag.HasErrors() || (settings.warningsAsErrors && bag.HasWarnings()) {
		return errFailed
	}
	return nil
}

// readNormalizeOptions merges command flags over the [normalize] and [cache]
// sections of the configuration.
func readNormalizeOptions(cmd *cobra.Command) (driver.Options, normalizeSettings, error) {
	var (
		opts     driver.Options
		settings normalizeSettings
		err      error
	)
	flags := cmd.Flags()
	cfg := appConfig

	if flags.Changed("passes") {
		if cfg.Normalize.Passes, err = flags.GetStringSlice("passes"); err != nil {
			return opts, settings, fmt.Errorf("failed to get passes flag: %w", err)
		}
	}
	if flags.Changed("validate") {
		cfg.Normalize.Validate, _ = flags.GetBool("validate")
	}
	if opts.Pipeline, err = cfg.Pipeline(); err != nil {
		return opts, settings, err
	}

	opts.Jobs = cfg.Normalize.Jobs
	if flags.Changed("jobs") {
		opts.Jobs, _ = flags.GetInt("jobs")
	}
	opts.OutDir = cfg.Normalize.Out
	if flags.Changed("out") {
		opts.OutDir, _ = flags.GetString("out")
	}
	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return opts, settings, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	root := cmd.Root().PersistentFlags()
	opts.MaxDiagnostics = cfg.Normalize.MaxDiagnostics
	if root.Changed("max-diagnostics") {
		opts.MaxDiagnostics, _ = root.GetInt("max-diagnostics")
	}
	opts.Timings = cfg.Normalize.Timings
	if root.Changed("timings") {
		opts.Timings, _ = root.GetBool("timings")
	}
	settings.quiet, _ = root.GetBool("quiet")

	if cache, err := openCache(cmd, cfg.Cache.Enabled, cfg.Cache.Dir); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s disk cache unavailable: %v\n", color.YellowString("warning:"), err)
	} else {
		opts.Cache = cache
	}

	settings.format, _ = flags.GetString("format")
	settings.format = strings.ToLower(settings.format)
	switch settings.format {
	case "pretty", "golden", "json", "sarif":
	default:
		return opts, settings, fmt.Errorf("unsupported format %q (must be pretty, golden, json or sarif)", settings.format)
	}
	settings.withNotes, _ = flags.GetBool("with-notes")
	settings.warningsAsErrors, _ = flags.GetBool("warnings-as-errors")

	uiValue, err := stringSetting(cmd, "ui", appConfig.UI.Mode)
	if err != nil {
		return opts, settings, err
	}
	if settings.ui, err = readToggle("ui", uiValue); err != nil {
		return opts, settings, err
	}
	return opts, settings, nil
}

func openCache(cmd *cobra.Command, enabled bool, dir string) (*driver.DiskCache, error) {
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache || !enabled {
		return nil, nil
	}
	if cmd.Flags().Changed("cache-dir") {
		dir, _ = cmd.Flags().GetString("cache-dir")
	}
	if dir != "" {
		return driver.OpenDiskCacheAt(dir)
	}
	return driver.OpenDiskCache("ilnorm")
}

// unitNames maps the ids NormalizeAll assigned (input order, 1-based) back
// to paths.
func unitNames(files []string) diagfmt.UnitNames {
	return func(id source.UnitID) string {
		if id == 0 || int(id) > len(files) {
			return fmt.Sprintf("unit%d", id)
		}
		return files[id-1]
	}
}

func renderReportPretty(out io.Writer, report *driver.Report, files []string, settings normalizeSettings, elapsed time.Duration) error {
	if !settings.quiet {
		nameWidth := 0
		for _, u := range report.Units {
			nameWidth = max(nameWidth, runewidth.StringWidth(u.Path))
		}
		nameWidth = min(nameWidth, 60)
		for _, u := range report.Units {
			name := runewidth.FillRight(runewidth.Truncate(u.Path, nameWidth, "..."), nameWidth)
			fmt.Fprintf(out, "  %s %s  %s\n", unitMark(u), name, unitDetail(u))
		}
	}

	opts := diagfmt.PrettyOpts{Color: !color.NoColor, ShowNotes: settings.withNotes}
	bag := report.Diagnostics()
	if err := diagfmt.Pretty(out, bag, unitNames(files), opts); err != nil {
		return err
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(out, "%s %d more diagnostics not shown (--max-diagnostics)\n", color.YellowString("note:"), n)
	}

	summary := fmt.Sprintf("%d units, %d changes, %d cached, %d failed in %s",
		len(report.Units), report.Changes(), report.CacheHits(), report.Failed(), elapsed.Round(time.Millisecond))
	if report.Failed() > 0 {
		fmt.Fprintln(out, color.RedString(summary))
	} else {
		fmt.Fprintln(out, color.GreenString(summary))
	}
	if report.Timer != nil {
		printPassTimings(out, report.Timer)
	}
	return nil
}

func unitMark(u driver.UnitResult) string {
	switch {
	case u.Err != nil:
		return color.RedString("x")
	case u.Cached:
		return color.BlueString("=")
	default:
		return color.GreenString("+")
	}
}

func unitDetail(u driver.UnitResult) string {
	if u.Err != nil {
		var first string
		if items := u.Bag.Items(); len(items) > 0 {
			first = items[0].Code.ID()
		}
		return color.RedString("failed %s", first)
	}
	parts := make([]string, 0, len(u.Result.Passes))
	for _, p := range u.Result.Passes {
		parts = append(parts, fmt.Sprintf("%s=%d", p.Pass, p.Stats.Changed))
	}
	detail := strings.Join(parts, " ")
	if u.Cached {
		detail += " (cached)"
	}
	if u.Output != "" {
		detail += " -> " + u.Output
	}
	return detail
}

type reportJSON struct {
	Units     []unitJSON     `json:"units"`
	Changes   int            `json:"changes"`
	CacheHits int            `json:"cache_hits"`
	Failed    int            `json:"failed"`
	Timings   *observ.Report `json:"timings,omitempty"`
}

type unitJSON struct {
	Path        string                   `json:"path"`
	Name        string                   `json:"name,omitempty"`
	Digest      string                   `json:"digest,omitempty"`
	Cached      bool                     `json:"cached,omitempty"`
	Output      string                   `json:"output,omitempty"`
	Passes      []passJSON               `json:"passes,omitempty"`
	Diagnostics []diagfmt.DiagnosticJSON `json:"diagnostics,omitempty"`
	Dropped     int                      `json:"dropped_diagnostics,omitempty"`
	Error       string                   `json:"error,omitempty"`
	ElapsedMS   float64                  `json:"elapsed_ms"`
}

type passJSON struct {
	Name      string  `json:"name"`
	Visited   int     `json:"visited"`
	Changed   int     `json:"changed"`
	Skipped   int     `json:"skipped"`
	ElapsedMS float64 `json:"elapsed_ms,omitempty"`
}

func renderReportJSON(out io.Writer, report *driver.Report, files []string, withNotes bool) error {
	payload := reportJSON{
		Units:     make([]unitJSON, 0, len(report.Units)),
		Changes:   report.Changes(),
		CacheHits: report.CacheHits(),
		Failed:    report.Failed(),
	}
	if report.Timer != nil {
		r := report.Timer.Report()
		payload.Timings = &r
	}
	for _, u := range report.Units {
		uj := unitJSON{
			Path:      u.Path,
			Name:      u.Result.Unit,
			Cached:    u.Cached,
			Output:    u.Output,
			ElapsedMS: observ.Millis(u.Elapsed),
		}
		if !u.Digest.IsZero() {
			uj.Digest = u.Digest.String()
		}
		if u.Err != nil {
			uj.Error = u.Err.Error()
		}
		for _, p := range u.Result.Passes {
			uj.Passes = append(uj.Passes, passJSON{
				Name:      p.Pass,
				Visited:   p.Stats.Visited,
				Changed:   p.Stats.Changed,
				Skipped:   p.Stats.Skipped,
				ElapsedMS: observ.Millis(p.Elapsed),
			})
		}
		if u.Bag != nil {
			uj.Dropped = u.Bag.Dropped()
		}
		if u.Bag != nil && u.Bag.Len() > 0 {
			uj.Diagnostics = diagfmt.BuildDiagnostics(u.Bag.Items(), unitNames(files), diagfmt.JSONOpts{IncludeNotes: withNotes})
		}
		payload.Units = append(payload.Units, uj)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return errors.Join(errors.New("failed to encode report"), err)
	}
	return nil
}
