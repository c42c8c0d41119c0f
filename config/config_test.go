package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiffcs/racefinder/internal/miner"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

// isolate points the global config at an empty directory and runs the test
// from another empty directory so real config files never leak in.
func isolate(t *testing.T) (globalDir, workDir string) {
	t.Helper()
	globalDir = t.TempDir()
	workDir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", globalDir)
	t.Chdir(workDir)
	return filepath.Join(globalDir, "racefinder"), workDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, SaveTo(path, content))
}

func TestSettings_Defaults(t *testing.T) {
	s, err := (&Config{}).Settings(testNow)
	require.NoError(t, err)

	assert.Equal(t, DefaultSearchKeywords(), s.SearchKeywords)
	assert.Equal(t, 2, s.BatchSize)
	assert.Equal(t, "closed", s.IssueStatus)
	assert.Equal(t, []string{"c", "c++"}, s.Languages)
	assert.Equal(t, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), s.MinCreated)
	assert.Equal(t, 100, s.PerPage)
	assert.Equal(t, DefaultLabels(), s.IssueLabels)
	assert.Equal(t, DefaultExclusionKeywords(), s.ExclusionKeywords)
	assert.Equal(t, []string{"pthread", "openmp"}, s.CodeKeywords)
	assert.Len(t, s.ExcludedIssueURLs, 3)
	assert.Equal(t, 1000, s.MinStars)
	assert.Equal(t, time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC), s.MinRepoUpdated)
	assert.Equal(t, 50, s.TotalCap)
	assert.Equal(t, 50, s.TopN)
	assert.Equal(t, miner.PaginationStop, s.PaginationFailure)
}

func TestSettings_DefaultConfigMatchesZeroConfig(t *testing.T) {
	fromDefaults, err := DefaultConfig().Settings(testNow)
	require.NoError(t, err)
	fromZero, err := (&Config{}).Settings(testNow)
	require.NoError(t, err)

	assert.Equal(t, fromZero, fromDefaults)
}

func TestSettings_EmptyListDisablesFilter(t *testing.T) {
	cfg := &Config{Filters: &FilterOverrides{
		Labels:            []string{},
		ExclusionKeywords: []string{},
	}}

	s, err := cfg.Settings(testNow)
	require.NoError(t, err)
	assert.Empty(t, s.IssueLabels)
	assert.Empty(t, s.ExclusionKeywords)
	assert.NotEmpty(t, s.CodeKeywords, "unset lists keep their defaults")
}

func TestSettings_RelativeDates(t *testing.T) {
	since := "5y"
	updated := "18mo"
	cfg := &Config{
		Search:  &SearchOverrides{CreatedSince: &since},
		Filters: &FilterOverrides{UpdatedSince: &updated},
	}

	s, err := cfg.Settings(testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), s.MinCreated)
	assert.Equal(t, time.Date(2023, 9, 15, 0, 0, 0, 0, time.UTC), s.MinRepoUpdated)
}

func TestSettings_Invalid(t *testing.T) {
	ptr := func(v int) *int { return &v }
	str := func(v string) *string { return &v }

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"bad created date", &Config{Search: &SearchOverrides{CreatedSince: str("yesterday")}}},
		{"bad updated date", &Config{Filters: &FilterOverrides{UpdatedSince: str("2022-13-01")}}},
		{"unknown pagination policy", &Config{Search: &SearchOverrides{PaginationFailure: str("retry")}}},
		{"unknown status", &Config{Search: &SearchOverrides{Status: str("merged")}}},
		{"zero batch size", &Config{Search: &SearchOverrides{BatchSize: ptr(0)}}},
		{"oversized page", &Config{Search: &SearchOverrides{PerPage: ptr(101)}}},
		{"negative stars", &Config{Filters: &FilterOverrides{MinStars: ptr(-1)}}},
		{"negative total", &Config{Limits: &LimitOverrides{Total: ptr(-1)}}},
		{"negative top", &Config{Limits: &LimitOverrides{Top: ptr(-5)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Settings(testNow)
			require.Error(t, err)
		})
	}
}

func TestValidate_Format(t *testing.T) {
	assert.NoError(t, (&Config{DefaultFormat: FormatNone}).Validate())
	assert.Error(t, (&Config{DefaultFormat: "xml"}).Validate())
}

func TestOverrides(t *testing.T) {
	cfg := &Config{}
	cfg.SetTop(5)
	cfg.SetTotal(0)
	cfg.SetMinStars(10)

	s, err := cfg.Settings(testNow)
	require.NoError(t, err)
	assert.Equal(t, 5, s.TopN)
	assert.Equal(t, 0, s.TotalCap)
	assert.Equal(t, 10, s.MinStars)
}

func TestMergeConfig(t *testing.T) {
	globalStars := 500
	localTop := 10
	enabled := true

	global := &Config{
		DefaultFormat: FormatJSON,
		UseCache:      &enabled,
		Filters: &FilterOverrides{
			MinStars:     &globalStars,
			CodeKeywords: []string{"pthread"},
		},
	}
	local := &Config{
		Filters: &FilterOverrides{CodeKeywords: []string{}},
		Limits:  &LimitOverrides{Top: &localTop},
	}

	merged := mergeConfig(global, local)

	assert.Equal(t, FormatJSON, merged.DefaultFormat)
	assert.True(t, merged.CacheEnabled())
	require.NotNil(t, merged.Filters)
	assert.Equal(t, 500, *merged.Filters.MinStars)
	assert.NotNil(t, merged.Filters.CodeKeywords)
	assert.Empty(t, merged.Filters.CodeKeywords)
	require.NotNil(t, merged.Limits)
	assert.Equal(t, 10, *merged.Limits.Top)
}

func TestLoad(t *testing.T) {
	t.Run("no files yields defaults", func(t *testing.T) {
		isolate(t)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, FormatTable, cfg.DefaultFormat)
		assert.False(t, cfg.CacheEnabled())
	})

	t.Run("local overrides global", func(t *testing.T) {
		globalDir, _ := isolate(t)
		writeFile(t, filepath.Join(globalDir, "config.yaml"), "default_format: json\nfilters:\n  min_stars: 200\n")
		writeFile(t, LocalConfigPath(), "filters:\n  exclusion_keywords: []\nlimits:\n  top: 3\n")

		cfg, err := Load("")
		require.NoError(t, err)

		s, err := cfg.Settings(testNow)
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, cfg.DefaultFormat)
		assert.Equal(t, 200, s.MinStars)
		assert.Empty(t, s.ExclusionKeywords)
		assert.Equal(t, 3, s.TopN)
	})

	t.Run("explicit file replaces local", func(t *testing.T) {
		_, workDir := isolate(t)
		writeFile(t, LocalConfigPath(), "limits:\n  top: 3\n")
		explicit := filepath.Join(workDir, "custom.yaml")
		writeFile(t, explicit, "limits:\n  top: 7\n")

		cfg, err := Load(explicit)
		require.NoError(t, err)
		assert.Equal(t, 7, *cfg.Limits.Top)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		isolate(t)

		_, err := Load("does-not-exist.yaml")
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		isolate(t)
		writeFile(t, LocalConfigPath(), "limits: [unterminated\n")

		_, err := Load("")
		require.Error(t, err)
	})
}

func TestDefaultConfig_RoundTripsThroughYAML(t *testing.T) {
	_, workDir := isolate(t)

	out, err := DefaultConfig().ToYAML()
	require.NoError(t, err)
	path := filepath.Join(workDir, "defaults.yaml")
	writeFile(t, path, out)

	cfg, err := Load(path)
	require.NoError(t, err)
	s, err := cfg.Settings(testNow)
	require.NoError(t, err)

	want, err := DefaultConfig().Settings(testNow)
	require.NoError(t, err)
	assert.Equal(t, want, s)
}

func TestMinimalConfig_Parses(t *testing.T) {
	_, workDir := isolate(t)
	path := filepath.Join(workDir, "minimal.yaml")
	writeFile(t, path, MinimalConfig())

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
}

func TestToYAML_KeepsExplicitlyEmptyLists(t *testing.T) {
	_, workDir := isolate(t)
	cfg := &Config{Filters: &FilterOverrides{ExclusionKeywords: StringList{}}}

	out, err := cfg.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, out, "exclusion_keywords: []")
	assert.NotContains(t, out, "labels", "unset lists are omitted")

	path := filepath.Join(workDir, "shown.yaml")
	writeFile(t, path, out)
	loaded, err := Load(path)
	require.NoError(t, err)
	s, err := loaded.Settings(testNow)
	require.NoError(t, err)
	assert.Empty(t, s.ExclusionKeywords, "the printed config disables the same filter")
	assert.Equal(t, DefaultLabels(), s.IssueLabels)

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"exclusion_keywords":[]`)
	assert.NotContains(t, string(data), "labels")
}
