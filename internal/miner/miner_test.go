package miner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiffcs/racefinder/internal/model"
)

func htmlURLs(cs []model.Candidate) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.HTMLURL)
	}
	return out
}

func TestRun_DeduplicatesAcrossBatches(t *testing.T) {
	fc := newFakeClient()
	fc.addRepo("x/y", 2000, recent)
	dup := makeIssue("x/y", 1)
	fc.onBatch([]string{"race"}, page(0, dup))
	fc.onBatch([]string{"deadlock"}, page(0, dup, makeIssue("x/y", 2)))

	settings := Settings{SearchKeywords: []string{"race", "deadlock"}, BatchSize: 1}
	got, report, err := New(settings, fc).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"https://github.com/x/y/issues/1", "https://github.com/x/y/issues/2"}, htmlURLs(got))
	assert.Equal(t, 1, report.Rejected[ReasonDuplicate])
	assert.Equal(t, 3, report.Examined)
	assert.Equal(t, 2, report.Accepted)
	assert.Len(t, fc.repoCalls, 2, "duplicate must not be enriched again")
}

func TestRun_ExcludedURLNeverInOutput(t *testing.T) {
	fc := newFakeClient()
	fc.addRepo("x/y", 90000, recent)
	excluded := makeIssue("x/y", 1)
	fc.onBatch([]string{"race"}, page(0, excluded, makeIssue("x/y", 2)))

	settings := Settings{
		SearchKeywords:    []string{"race"},
		ExcludedIssueURLs: []string{excluded.HTMLURL},
	}
	got, report, err := New(settings, fc).Run(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, htmlURLs(got), excluded.HTMLURL)
	assert.Equal(t, 1, report.Rejected[ReasonExcluded])
}

func TestRun_CapHaltsAcrossBatches(t *testing.T) {
	fc := newFakeClient()
	fc.addRepo("a/one", 100, recent)
	fc.addRepo("b/two", 200, recent)
	fc.addRepo("c/three", 300, recent)
	fc.onBatch([]string{"race"}, page(0, makeIssue("a/one", 1)))
	fc.onBatch([]string{"deadlock"}, page(0, makeIssue("b/two", 1), makeIssue("c/three", 1)))
	fc.onBatch([]string{"livelock"}, page(0, makeIssue("c/three", 2)))

	settings := Settings{
		SearchKeywords: []string{"race", "deadlock", "livelock"},
		BatchSize:      1,
		TotalCap:       2,
	}
	got, report, err := New(settings, fc).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"https://github.com/b/two/issues/1", "https://github.com/a/one/issues/1"}, htmlURLs(got))
	assert.True(t, report.Halted)
	assert.Equal(t, 2, report.Examined, "third qualifying issue must never be evaluated")
	assert.Equal(t, 2, report.Batches)
	assert.NotContains(t, fc.repoCalls, "https://api.github.com/repos/c/three")
	assert.Len(t, fc.searchCalls, 2, "remaining batches must not be searched")
}

func TestRun_SortsByStarsAndTruncates(t *testing.T) {
	fc := newFakeClient()
	stars := map[string]int{"a/a": 10, "b/b": 5000, "c/c": 700, "d/d": 700, "e/e": 20000}
	var issues []model.Issue
	for _, name := range []string{"a/a", "b/b", "c/c", "d/d", "e/e"} {
		fc.addRepo(name, stars[name], recent)
		issues = append(issues, makeIssue(name, 1))
	}
	fc.onBatch([]string{"race", "deadlock"}, page(2, issues[:3]...), page(0, issues[3:]...))

	settings := Settings{SearchKeywords: []string{"race", "deadlock"}, TopN: 4, TotalCap: 50}
	got, report, err := New(settings, fc).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Stars, got[i].Stars)
	}
	assert.Equal(t, []string{
		"https://github.com/e/e/issues/1",
		"https://github.com/b/b/issues/1",
		"https://github.com/c/c/issues/1",
		"https://github.com/d/d/issues/1",
	}, htmlURLs(got))
	assert.Equal(t, 2, report.Pages)
	assert.False(t, report.Halted)
}

func TestRun_MinStarsRejectsSmallRepository(t *testing.T) {
	fc := newFakeClient()
	fc.addRepo("small/repo", 500, recent)
	fc.onBatch([]string{"race"}, page(0, makeIssue("small/repo", 1)))

	settings := Settings{SearchKeywords: []string{"race"}, MinStars: 1000}
	got, report, err := New(settings, fc).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, got)
	assert.Equal(t, 1, report.Rejected[ReasonStars])
	assert.Equal(t, 1, report.RejectedTotal())
}

func TestRun_EnrichmentErrorAbortsRun(t *testing.T) {
	fc := newFakeClient()
	fc.repoErr = errBoom
	fc.onBatch([]string{"race"}, page(0, makeIssue("x/y", 1)))

	got, _, err := New(Settings{SearchKeywords: []string{"race"}}, fc).Run(context.Background())
	require.ErrorIs(t, err, errBoom)
	assert.Nil(t, got)
}

func TestRun_PrimarySearchErrorAbortsRun(t *testing.T) {
	fc := newFakeClient()
	fc.pageErrs[testQuery("race")] = map[int]error{1: errBoom}

	_, _, err := New(Settings{SearchKeywords: []string{"race"}}, fc).Run(context.Background())
	require.ErrorIs(t, err, errBoom)
}

func TestRun_ReportsProgress(t *testing.T) {
	fc := newFakeClient()
	fc.addRepo("x/y", 10, recent)
	fc.onBatch([]string{"race"}, page(0, makeIssue("x/y", 1), makeIssue("x/y", 2)))

	var snapshots []Report
	_, _, err := New(Settings{SearchKeywords: []string{"race"}}, fc, WithProgress(func(r Report) {
		snapshots = append(snapshots, r)
	})).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshots, 2)
	assert.Equal(t, 1, snapshots[0].Examined)
	assert.Equal(t, 2, snapshots[1].Accepted)
}

func TestRun_NoKeywords(t *testing.T) {
	fc := newFakeClient()
	got, report, err := New(Settings{}, fc).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, report.Batches)
	assert.Empty(t, fc.searchCalls)
}
