package cmd

import (
	"fmt"
	"io"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long: `Display the current GitHub API rate limit status for the core and
search APIs. A run spends search quota on issue and code searches and core
quota on comments and repository lookups.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRateLimit(cmd, opts)
		},
	}
}

func runRateLimit(cmd *cobra.Command, opts *Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	client, err := newGitHubClient(cmd.Context(), cfg, opts.APIURL)
	if err != nil {
		return err
	}

	limits, err := client.RateLimits(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "GitHub API Rate Limits:")
	fmt.Fprintln(out)
	printRate(out, "Core API:  ", limits.Core)
	printRate(out, "Search API:", limits.Search)

	return nil
}

func printRate(out io.Writer, label string, rate *gh.Rate) {
	if rate == nil {
		return
	}
	resetIn := max(time.Until(rate.Reset.Time).Round(time.Second), 0)
	fmt.Fprintf(out, "%s %d/%d remaining (resets in %s)\n", label, rate.Remaining, rate.Limit, resetIn)
}
