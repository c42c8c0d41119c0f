package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spiffcs/racefinder/internal/cache"
	"github.com/spiffcs/racefinder/internal/constants"
)

// NewCmdCache creates the cache command with subcommands.
func NewCmdCache() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the repository metadata cache used by --cache",
	}

	cmd.AddCommand(newCmdCacheClear())
	cmd.AddCommand(newCmdCacheStats())

	return cmd
}

// newCmdCacheClear creates the cache clear subcommand.
func newCmdCacheClear() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the repository metadata cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClear(cmd.OutOrStdout())
		},
	}
}

// newCmdCacheStats creates the cache stats subcommand.
func newCmdCacheStats() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheStats(cmd.OutOrStdout())
		},
	}
}

func openCache() (*cache.Cache, error) {
	dir, err := cache.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate cache directory: %w", err)
	}
	c, err := cache.New(dir, constants.RepositoryCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to access cache: %w", err)
	}
	return c, nil
}

func runCacheClear(out io.Writer) error {
	c, err := openCache()
	if err != nil {
		return err
	}

	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Fprintln(out, "Cache cleared.")
	return nil
}

func runCacheStats(out io.Writer) error {
	c, err := openCache()
	if err != nil {
		return err
	}

	stats, err := c.Stats()
	if err != nil {
		return fmt.Errorf("failed to get cache stats: %w", err)
	}

	fmt.Fprintf(out, "Cache statistics (%s):\n", c.Dir())
	fmt.Fprintf(out, "  Repositories (TTL: %s):\n", constants.RepositoryCacheTTL)
	fmt.Fprintf(out, "    Total: %d\n", stats.Total)
	fmt.Fprintf(out, "    Valid: %d\n", stats.Valid)
	fmt.Fprintf(out, "    Expired: %d\n", stats.Total-stats.Valid)
	return nil
}
