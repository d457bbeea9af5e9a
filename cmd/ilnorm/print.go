package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ilnorm/internal/diag"
	"ilnorm/internal/format"
	"ilnorm/internal/source"
	"ilnorm/internal/transform"
	"ilnorm/internal/unit"
)

var printCmd = &cobra.Command{
	Use:   "print [flags] <unit>",
	Short: "Print a unit as C# source",
	Long: `Print a unit file as C#-like source. With --normalize the configured
passes run first, so the output shows what normalize would produce.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrint,
}

func init() {
	printCmd.Flags().Bool("normalize", false, "run the configured passes before printing")
	printCmd.Flags().Bool("header", false, "print a `// unit <name>` header")
	printCmd.Flags().Bool("tabs", false, "indent with tabs")
	printCmd.Flags().Int("indent", 4, "indent width in spaces")
}

func runPrint(cmd *cobra.Command, args []string) error {
	path := args[0]
	u, err := unit.Load(path, 1)
	if err != nil {
		return err
	}

	if doNormalize, _ := cmd.Flags().GetBool("normalize"); doNormalize {
		cfg, err := appConfig.Pipeline()
		if err != nil {
			return err
		}
		bag := diag.NewBag(appConfig.Normalize.MaxDiagnostics)
		cfg.Reporter = diag.BagReporter{Bag: bag}
		if _, err := transform.New(cfg).Run(cmd.Context(), u); err != nil {
			return err
		}
		if text := diag.FormatGolden(bag.Items(), func(source.UnitID) string { return path }, false); text != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), text)
		}
	}

	var opt format.Options
	opt.Header, _ = cmd.Flags().GetBool("header")
	opt.UseTabs, _ = cmd.Flags().GetBool("tabs")
	opt.IndentWidth, _ = cmd.Flags().GetInt("indent")
	if opt.IndentWidth < 0 {
		return fmt.Errorf("--indent must not be negative")
	}

	out, err := format.FormatUnit(u.Tree, opt)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
