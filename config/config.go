package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spiffcs/racefinder/internal/constants"
	"github.com/spiffcs/racefinder/internal/duration"
	"github.com/spiffcs/racefinder/internal/miner"
	"github.com/spiffcs/racefinder/internal/query"
)

// Output formats for the stdout summary.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatNone  = "none"
)

// Config represents the application configuration. Unset values fall back to
// the defaults; an explicitly empty list disables that filter.
type Config struct {
	DefaultFormat string `yaml:"default_format,omitempty" json:"default_format,omitempty"`
	UseCache      *bool  `yaml:"use_cache,omitempty" json:"use_cache,omitempty"`

	Search  *SearchOverrides `yaml:"search,omitempty" json:"search,omitempty"`
	Filters *FilterOverrides `yaml:"filters,omitempty" json:"filters,omitempty"`
	Limits  *LimitOverrides  `yaml:"limits,omitempty" json:"limits,omitempty"`
}

// StringList is a configurable list. An unset list is omitted when the
// config is written out, while an explicitly empty one is kept as [] because
// it disables the corresponding filter.
type StringList []string

// IsZero reports whether the list is unset.
func (l StringList) IsZero() bool {
	return l == nil
}

// SearchOverrides shape the issue search queries.
type SearchOverrides struct {
	Keywords          StringList `yaml:"keywords,omitempty" json:"keywords,omitzero"`
	BatchSize         *int     `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	Status            *string  `yaml:"status,omitempty" json:"status,omitempty"`
	Languages         StringList `yaml:"languages,omitempty" json:"languages,omitzero"`
	CreatedSince      *string  `yaml:"created_since,omitempty" json:"created_since,omitempty"`
	PerPage           *int     `yaml:"per_page,omitempty" json:"per_page,omitempty"`
	PaginationFailure *string  `yaml:"pagination_failure,omitempty" json:"pagination_failure,omitempty"`
}

// FilterOverrides configure the rejection funnel.
type FilterOverrides struct {
	Labels            StringList `yaml:"labels,omitempty" json:"labels,omitzero"`
	ExclusionKeywords StringList `yaml:"exclusion_keywords,omitempty" json:"exclusion_keywords,omitzero"`
	CodeKeywords      StringList `yaml:"code_keywords,omitempty" json:"code_keywords,omitzero"`
	ExcludedIssueURLs StringList `yaml:"excluded_issue_urls,omitempty" json:"excluded_issue_urls,omitzero"`
	MinStars          *int     `yaml:"min_stars,omitempty" json:"min_stars,omitempty"`
	UpdatedSince      *string  `yaml:"updated_since,omitempty" json:"updated_since,omitempty"`
}

// LimitOverrides bound the size of the report. Zero means unbounded.
type LimitOverrides struct {
	Total *int `yaml:"total,omitempty" json:"total,omitempty"`
	Top   *int `yaml:"top,omitempty" json:"top,omitempty"`
}

// Defaults reproduce the concurrency-bug preset.
const (
	DefaultMinStars     = 1000
	DefaultCreatedSince = "2017-01-01"
	DefaultUpdatedSince = "2022-09-01"
	DefaultTotal        = 50
	DefaultTop          = 50
)

// DefaultSearchKeywords returns the concurrency vocabulary searched for.
func DefaultSearchKeywords() []string {
	return []string{
		"race", "dead-lock", "deadlock", "concurrent", "concurrency",
		"atomic", "synchronize", "synchronous", "synchronization",
		"starvation", "suspension", "livelock", "live-lock",
		"multi-threaded", "multithreading", "multi-thread", "thread",
		"blocked", "locked",
	}
}

// DefaultLanguages returns the repository languages searched.
func DefaultLanguages() []string {
	return []string{"c", "c++"}
}

// DefaultLabels returns the label allow-list.
func DefaultLabels() []string {
	return []string{"bug", "race", "race-condition", "concurrency", "deadlock", "dead-lock"}
}

// DefaultExclusionKeywords returns the words that disqualify an issue.
func DefaultExclusionKeywords() []string {
	return []string{"game", "games", "windows", "gpu", "cuda", "display"}
}

// DefaultCodeKeywords returns the words at least one of which must occur in
// the repository's code.
func DefaultCodeKeywords() []string {
	return []string{"pthread", "openmp"}
}

// DefaultExcludedIssueURLs returns issues known to be unsuitable.
func DefaultExcludedIssueURLs() []string {
	return []string{
		"https://github.com/apple/cups/issues/6089",
		"https://github.com/microsoft/terminal/issues/14863",
		"https://github.com/opencv/opencv/issues/23228",
	}
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".racefinder"
	}
	return filepath.Join(configDir, "racefinder")
}

// ConfigPath returns the path to the global config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".racefinder.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config, then merges the local config on top
// (local values take precedence). A non-empty localPath replaces the default
// ./.racefinder.yaml and must exist.
func Load(localPath string) (*Config, error) {
	cfg := &Config{
		DefaultFormat: FormatTable,
	}

	if global, err := readFile(ConfigPath(), false); err != nil {
		return nil, fmt.Errorf("failed to load global config file: %w", err)
	} else if global != nil {
		cfg = mergeConfig(cfg, global)
	}

	required := localPath != ""
	if !required {
		localPath = LocalConfigPath()
	}
	local, err := readFile(localPath, required)
	if err != nil {
		return nil, fmt.Errorf("failed to load local config file: %w", err)
	}
	if local != nil {
		cfg = mergeConfig(cfg, local)
	}

	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = FormatTable
	}

	return cfg, nil
}

// readFile parses path, returning nil when the file is absent and not required.
func readFile(path string, required bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{
		DefaultFormat: global.DefaultFormat,
		UseCache:      pick(global.UseCache, local.UseCache),
	}
	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	}

	result.Search = mergeSearch(global.Search, local.Search)
	result.Filters = mergeFilters(global.Filters, local.Filters)
	result.Limits = mergeLimits(global.Limits, local.Limits)

	return result
}

func mergeSearch(global, local *SearchOverrides) *SearchOverrides {
	if global == nil {
		return local
	}
	if local == nil {
		return global
	}
	return &SearchOverrides{
		Keywords:          pickSlice(global.Keywords, local.Keywords),
		BatchSize:         pick(global.BatchSize, local.BatchSize),
		Status:            pick(global.Status, local.Status),
		Languages:         pickSlice(global.Languages, local.Languages),
		CreatedSince:      pick(global.CreatedSince, local.CreatedSince),
		PerPage:           pick(global.PerPage, local.PerPage),
		PaginationFailure: pick(global.PaginationFailure, local.PaginationFailure),
	}
}

func mergeFilters(global, local *FilterOverrides) *FilterOverrides {
	if global == nil {
		return local
	}
	if local == nil {
		return global
	}
	return &FilterOverrides{
		Labels:            pickSlice(global.Labels, local.Labels),
		ExclusionKeywords: pickSlice(global.ExclusionKeywords, local.ExclusionKeywords),
		CodeKeywords:      pickSlice(global.CodeKeywords, local.CodeKeywords),
		ExcludedIssueURLs: pickSlice(global.ExcludedIssueURLs, local.ExcludedIssueURLs),
		MinStars:          pick(global.MinStars, local.MinStars),
		UpdatedSince:      pick(global.UpdatedSince, local.UpdatedSince),
	}
}

func mergeLimits(global, local *LimitOverrides) *LimitOverrides {
	if global == nil {
		return local
	}
	if local == nil {
		return global
	}
	return &LimitOverrides{
		Total: pick(global.Total, local.Total),
		Top:   pick(global.Top, local.Top),
	}
}

// pick returns local when it is set.
func pick[T any](global, local *T) *T {
	if local != nil {
		return local
	}
	return global
}

// pickSlice returns local when it is set. An empty but non-nil local list
// is an explicit override.
func pickSlice(global, local []string) []string {
	if local != nil {
		return local
	}
	return global
}

// SetTop overrides the number of results kept in the report.
func (c *Config) SetTop(n int) {
	if c.Limits == nil {
		c.Limits = &LimitOverrides{}
	}
	c.Limits.Top = &n
}

// SetTotal overrides the number of accepted candidates after which the search stops.
func (c *Config) SetTotal(n int) {
	if c.Limits == nil {
		c.Limits = &LimitOverrides{}
	}
	c.Limits.Total = &n
}

// SetMinStars overrides the repository star threshold.
func (c *Config) SetMinStars(n int) {
	if c.Filters == nil {
		c.Filters = &FilterOverrides{}
	}
	c.Filters.MinStars = &n
}

// CacheEnabled reports whether repository metadata is cached on disk.
func (c *Config) CacheEnabled() bool {
	return c.UseCache != nil && *c.UseCache
}

// Validate checks every value that would otherwise fail mid-run.
func (c *Config) Validate() error {
	switch c.DefaultFormat {
	case "", FormatTable, FormatJSON, FormatNone:
	default:
		return fmt.Errorf("invalid default_format %q (use %s, %s or %s)", c.DefaultFormat, FormatTable, FormatJSON, FormatNone)
	}
	_, err := c.Settings(time.Now())
	return err
}

// Settings resolves the configuration against the defaults. Relative dates
// are anchored at now.
func (c *Config) Settings(now time.Time) (miner.Settings, error) {
	search := c.Search
	if search == nil {
		search = &SearchOverrides{}
	}
	filters := c.Filters
	if filters == nil {
		filters = &FilterOverrides{}
	}
	limits := c.Limits
	if limits == nil {
		limits = &LimitOverrides{}
	}

	s := miner.Settings{
		SearchKeywords:    orDefault(search.Keywords, DefaultSearchKeywords),
		BatchSize:         value(search.BatchSize, query.DefaultBatchSize),
		IssueStatus:       value(search.Status, constants.StateClosed),
		Languages:         orDefault(search.Languages, DefaultLanguages),
		PerPage:           value(search.PerPage, constants.MaxPerPage),
		IssueLabels:       orDefault(filters.Labels, DefaultLabels),
		ExclusionKeywords: orDefault(filters.ExclusionKeywords, DefaultExclusionKeywords),
		CodeKeywords:      orDefault(filters.CodeKeywords, DefaultCodeKeywords),
		ExcludedIssueURLs: orDefault(filters.ExcludedIssueURLs, DefaultExcludedIssueURLs),
		MinStars:          value(filters.MinStars, DefaultMinStars),
		TotalCap:          value(limits.Total, DefaultTotal),
		TopN:              value(limits.Top, DefaultTop),
	}

	if s.BatchSize < 1 {
		return miner.Settings{}, fmt.Errorf("invalid search.batch_size %d: must be at least 1", s.BatchSize)
	}
	if s.PerPage < 1 || s.PerPage > constants.MaxPerPage {
		return miner.Settings{}, fmt.Errorf("invalid search.per_page %d: must be between 1 and %d", s.PerPage, constants.MaxPerPage)
	}
	switch s.IssueStatus {
	case "", constants.StateOpen, constants.StateClosed:
	default:
		return miner.Settings{}, fmt.Errorf("invalid search.status %q (use %s or %s)", s.IssueStatus, constants.StateOpen, constants.StateClosed)
	}
	if s.MinStars < 0 {
		return miner.Settings{}, fmt.Errorf("invalid filters.min_stars %d: must not be negative", s.MinStars)
	}
	if s.TotalCap < 0 {
		return miner.Settings{}, fmt.Errorf("invalid limits.total %d: must not be negative", s.TotalCap)
	}
	if s.TopN < 0 {
		return miner.Settings{}, fmt.Errorf("invalid limits.top %d: must not be negative", s.TopN)
	}

	var err error
	if s.MinCreated, err = duration.ParseDate(value(search.CreatedSince, DefaultCreatedSince), now); err != nil {
		return miner.Settings{}, fmt.Errorf("invalid search.created_since: %w", err)
	}
	if s.MinRepoUpdated, err = duration.ParseDate(value(filters.UpdatedSince, DefaultUpdatedSince), now); err != nil {
		return miner.Settings{}, fmt.Errorf("invalid filters.updated_since: %w", err)
	}
	if s.PaginationFailure, err = miner.ParsePaginationPolicy(value(search.PaginationFailure, "")); err != nil {
		return miner.Settings{}, fmt.Errorf("invalid search.pagination_failure: %w", err)
	}

	return s, nil
}

func value[T any](v *T, def T) T {
	if v != nil {
		return *v
	}
	return def
}

func orDefault(v []string, def func() []string) []string {
	if v != nil {
		return slices.Clone(v)
	}
	return def()
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment variable.
// Tokens are only read from the environment.
func (c *Config) GetGitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// GetGitHubUser returns the user paired with the token for basic auth.
func (c *Config) GetGitHubUser() string {
	return os.Getenv("GITHUB_USER")
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	batchSize := query.DefaultBatchSize
	status := constants.StateClosed
	createdSince := DefaultCreatedSince
	perPage := constants.MaxPerPage
	pagination := string(miner.PaginationStop)
	minStars := DefaultMinStars
	updatedSince := DefaultUpdatedSince
	total := DefaultTotal
	top := DefaultTop
	useCache := false

	return &Config{
		DefaultFormat: FormatTable,
		UseCache:      &useCache,
		Search: &SearchOverrides{
			Keywords:          DefaultSearchKeywords(),
			BatchSize:         &batchSize,
			Status:            &status,
			Languages:         DefaultLanguages(),
			CreatedSince:      &createdSince,
			PerPage:           &perPage,
			PaginationFailure: &pagination,
		},
		Filters: &FilterOverrides{
			Labels:            DefaultLabels(),
			ExclusionKeywords: DefaultExclusionKeywords(),
			CodeKeywords:      DefaultCodeKeywords(),
			ExcludedIssueURLs: DefaultExcludedIssueURLs(),
			MinStars:          &minStars,
			UpdatedSince:      &updatedSince,
		},
		Limits: &LimitOverrides{
			Total: &total,
			Top:   &top,
		},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# racefinder configuration file
# See: racefinder config defaults  (for all available options)

# Summary printed after a run: table, json or none
default_format: table

# Reuse repository metadata between runs
# use_cache: true

# search:
#   created_since: 5y        # YYYY-MM-DD or a relative age (d, w, mo, y)
#   languages: [c, c++]
#   pagination_failure: stop # or fail

# filters:
#   min_stars: 1000
#   updated_since: 2022-09-01
#   exclusion_keywords: []   # an empty list disables the filter

# limits:
#   total: 50
#   top: 50
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
