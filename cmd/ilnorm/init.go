package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ilnorm/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create an " + config.FileName + " with the default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

// runInit writes the configuration template into the target directory
// (the working directory by default), creating the directory when needed.
// An existing configuration file is never overwritten.
func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	path := filepath.Join(target, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("already initialized: %s exists", path)
	}
	if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	return nil
}
