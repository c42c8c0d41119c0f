package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := NewOptions()

	rootCmd := &cobra.Command{
		Use:   "racefinder <output-file>",
		Short: "Find reproducible concurrency bugs in popular C/C++ projects",
		Long: `Searches GitHub for closed issues that describe reproducible races,
deadlocks and other concurrency defects in C/C++ repositories, filters
them, and writes the issues from the most starred repositories to
<output-file> as JSON.

Set GITHUB_TOKEN (and optionally GITHUB_USER) to raise the API rate limit.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one output file argument, got %d", len(args))
			}
			if suggestions := cmd.SuggestionsFor(args[0]); len(suggestions) > 0 {
				return fmt.Errorf("unknown command %q for %q\n\nDid you mean this?\n\t%s\n\nTo write the report to a file with this name, use ./%s",
					args[0], cmd.CommandPath(), strings.Join(suggestions, "\n\t"), args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runSearch(cmd, opts, args[0])
		},
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	addSearchFlags(rootCmd, opts)

	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdCache())
	rootCmd.AddCommand(NewCmdRateLimit(opts))
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}

// addSearchFlags adds the search flags to a command.
func addSearchFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Summary printed to stdout (table, json, none)")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Config file to use instead of ./.racefinder.yaml")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	cmd.Flags().Var(optionalInt{&opts.Top}, "top", "Number of issues kept in the report (0 = all)")
	cmd.Flags().Var(optionalInt{&opts.Total}, "total", "Stop searching after this many accepted issues (0 = no limit)")
	cmd.Flags().Var(optionalInt{&opts.MinStars}, "min-stars", "Minimum repository stars")

	cmd.Flags().Var(optionalBool{&opts.Cache}, "cache", "Keep repository metadata on disk and revalidate it on later runs")
	cmd.Flags().Lookup("cache").NoOptDefVal = "true"

	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "GitHub API base URL (for GitHub Enterprise)")
}
