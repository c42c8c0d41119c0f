package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/racefinder/config"
	"github.com/spiffcs/racefinder/internal/cache"
	"github.com/spiffcs/racefinder/internal/constants"
	"github.com/spiffcs/racefinder/internal/ghclient"
	"github.com/spiffcs/racefinder/internal/log"
	"github.com/spiffcs/racefinder/internal/miner"
	"github.com/spiffcs/racefinder/internal/output"
)

func runSearch(cmd *cobra.Command, opts *Options, outputPath string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Initialize(log.Level(opts.Verbosity), cmd.ErrOrStderr())

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	settings, err := cfg.Settings(time.Now())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	formatName := opts.Format
	if formatName == "" {
		formatName = cfg.DefaultFormat
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	client, err := newGitHubClient(ctx, cfg, opts.APIURL)
	if err != nil {
		return err
	}
	repos, err := newRepositoryStore(client, cfg.CacheEnabled())
	if err != nil {
		return err
	}

	m := miner.New(settings, ghclient.NewCachedClient(client, repos), miner.WithProgress(reportProgress))
	candidates, report, err := m.Run(ctx)
	log.ProgressDone()
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if err := output.WriteReport(outputPath, candidates); err != nil {
		return err
	}

	hits, misses := repos.Stats()
	log.Debug("repository lookups", "cached", hits, "fetched", misses)
	log.Info("found repositories", "count", len(candidates), "output", outputPath,
		"examined", report.Examined, "rejected", report.RejectedTotal())

	return output.NewFormatter(format).Format(candidates, report, cmd.OutOrStdout())
}

// loadConfig loads the config files and applies the flag overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if opts.Top != nil {
		cfg.SetTop(*opts.Top)
	}
	if opts.Total != nil {
		cfg.SetTotal(*opts.Total)
	}
	if opts.MinStars != nil {
		cfg.SetMinStars(*opts.MinStars)
	}
	if opts.Cache != nil {
		cfg.UseCache = opts.Cache
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newGitHubClient authenticates with the credentials from the environment.
func newGitHubClient(ctx context.Context, cfg *config.Config, apiURL string) (*ghclient.Client, error) {
	creds := ghclient.Credentials{
		User:  cfg.GetGitHubUser(),
		Token: cfg.GetGitHubToken(),
	}
	if creds.Anonymous() {
		log.Warn("GITHUB_TOKEN not set, using unauthenticated requests with a low rate limit")
	}

	var opts []ghclient.ClientOption
	if apiURL != "" {
		opts = append(opts, ghclient.WithBaseURL(apiURL))
	}

	client, err := ghclient.NewClient(ctx, creds, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return client, nil
}

// newRepositoryStore puts the in-memory and, when enabled, the on-disk
// repository cache in front of the client.
func newRepositoryStore(client *ghclient.Client, useDisk bool) (*ghclient.RepositoryStore, error) {
	var disk *cache.Cache
	if useDisk {
		dir, err := cache.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate cache directory: %w", err)
		}
		disk, err = cache.New(dir, constants.RepositoryCacheTTL)
		if err != nil {
			return nil, err
		}
		log.Debug("using repository cache", "dir", disk.Dir())
	}
	return ghclient.NewRepositoryStore(client, disk, constants.RepositoryMemoSize)
}

// reportProgress prints a progress line every few examined issues.
func reportProgress(r miner.Report) {
	if r.Examined%constants.ProgressEvery != 0 {
		return
	}
	log.Progress("examined %d issues, accepted %d", r.Examined, r.Accepted)
}
