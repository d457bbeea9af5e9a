package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ilnorm/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the normalization cache",
}

var cacheDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := openConfiguredCache()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cache.Dir())
		return nil
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached unit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := openConfiguredCache()
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clean %q: %w", cache.Dir(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cache.Dir())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheDirCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}

func openConfiguredCache() (*driver.DiskCache, error) {
	if appConfig.Cache.Dir != "" {
		return driver.OpenDiskCacheAt(appConfig.Cache.Dir)
	}
	return driver.OpenDiskCache("ilnorm")
}
