package cmd

// Options holds the command-line options for a search run. Pointer fields
// are nil unless the flag was given, in which case they override the config.
type Options struct {
	Format     string
	ConfigPath string
	APIURL     string
	Verbosity  int

	Top      *int
	Total    *int
	MinStars *int
	Cache    *bool
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the summary format (table, json, none).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithConfigPath replaces the local config file.
func WithConfigPath(path string) Option {
	return func(o *Options) {
		o.ConfigPath = path
	}
}

// WithAPIURL points the client at another GitHub API root.
func WithAPIURL(url string) Option {
	return func(o *Options) {
		o.APIURL = url
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithTop sets how many candidates the report keeps.
func WithTop(n int) Option {
	return func(o *Options) {
		o.Top = &n
	}
}

// WithTotal sets how many accepted candidates stop the search.
func WithTotal(n int) Option {
	return func(o *Options) {
		o.Total = &n
	}
}

// WithMinStars sets the repository star threshold.
func WithMinStars(n int) Option {
	return func(o *Options) {
		o.MinStars = &n
	}
}

// WithCache enables or disables the on-disk repository cache.
func WithCache(enabled bool) Option {
	return func(o *Options) {
		o.Cache = &enabled
	}
}
