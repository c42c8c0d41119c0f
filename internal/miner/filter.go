package miner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spiffcs/racefinder/internal/duration"
	"github.com/spiffcs/racefinder/internal/log"
	"github.com/spiffcs/racefinder/internal/model"
)

// Verdict is the outcome of evaluating one issue.
type Verdict struct {
	// Reason is empty when the issue was accepted.
	Reason Reason
	// Attrs carries log key/value pairs explaining a rejection.
	Attrs     []any
	Candidate model.Candidate
}

// Accepted reports whether every criterion passed.
func (v Verdict) Accepted() bool {
	return v.Reason == ""
}

func reject(reason Reason, attrs ...any) Verdict {
	return Verdict{Reason: reason, Attrs: attrs}
}

// Filter applies the rejection funnel after deduplication, cheapest
// criteria first. Deduplication itself belongs to the Accumulator because it
// owns the set of processed issues.
type Filter struct {
	enricher *Enricher
	code     CodeSearcher

	excluded          map[string]struct{}
	labels            []string
	exclusionKeywords []string
	codeKeywords      []string
	minStars          int
	minUpdated        time.Time
}

// NewFilter prepares the funnel for settings.
func NewFilter(settings Settings, enricher *Enricher, code CodeSearcher) *Filter {
	excluded := make(map[string]struct{}, len(settings.ExcludedIssueURLs))
	for _, u := range settings.ExcludedIssueURLs {
		excluded[u] = struct{}{}
	}

	return &Filter{
		enricher:          enricher,
		code:              code,
		excluded:          excluded,
		labels:            lowerAll(settings.IssueLabels),
		exclusionKeywords: lowerAll(settings.ExclusionKeywords),
		codeKeywords:      settings.CodeKeywords,
		minStars:          settings.MinStars,
		minUpdated:        duration.Day(settings.MinRepoUpdated),
	}
}

// Evaluate runs the funnel for issue and stops at the first failing
// criterion. Errors come from the enrichment and code search calls only.
func (f *Filter) Evaluate(ctx context.Context, issue model.Issue) (Verdict, error) {
	if _, ok := f.excluded[issue.HTMLURL]; ok {
		return reject(ReasonExcluded), nil
	}

	if !f.labelsMatch(issue.Labels) {
		return reject(ReasonLabels, "labels", issue.Labels), nil
	}

	if len(f.exclusionKeywords) > 0 {
		content, err := f.enricher.Content(ctx, issue)
		if err != nil {
			return Verdict{}, err
		}
		if kw, ok := containsAny(strings.ToLower(content), f.exclusionKeywords); ok {
			return reject(ReasonContent, "keyword", kw), nil
		}
	}

	repo, err := f.enricher.Repository(ctx, issue)
	if err != nil {
		return Verdict{}, err
	}

	if f.stale(repo) {
		return reject(ReasonStale, "updated", duration.Format(duration.Day(repo.UpdatedAt))), nil
	}

	if repo.Stars < f.minStars {
		return reject(ReasonStars, "stars", repo.Stars), nil
	}

	if len(f.codeKeywords) > 0 {
		found, err := f.codeContains(ctx, repo.FullName)
		if err != nil {
			return Verdict{}, err
		}
		if !found {
			return reject(ReasonNoCode, "repo", repo.FullName), nil
		}
	}

	return Verdict{Candidate: model.NewCandidate(issue, *repo)}, nil
}

// labelsMatch implements the label gate. Unlabelled issues and an empty
// allow-list both pass.
func (f *Filter) labelsMatch(labels []string) bool {
	if len(labels) == 0 || len(f.labels) == 0 {
		return true
	}
	for _, label := range labels {
		if _, ok := containsAny(strings.ToLower(label), f.labels); ok {
			return true
		}
	}
	return false
}

// stale compares calendar days; a repository without an update time passes.
func (f *Filter) stale(repo *model.Repository) bool {
	if f.minUpdated.IsZero() || repo.UpdatedAt.IsZero() {
		return false
	}
	return duration.Day(repo.UpdatedAt).Before(f.minUpdated)
}

// codeContains reports whether any code keyword has at least one hit.
func (f *Filter) codeContains(ctx context.Context, repoFullName string) (bool, error) {
	for _, kw := range f.codeKeywords {
		n, err := f.code.CodeMatches(ctx, kw, repoFullName)
		if err != nil {
			return false, fmt.Errorf("failed to search code in %s: %w", repoFullName, err)
		}
		log.Trace("code search", "repo", repoFullName, "keyword", kw, "hits", n)
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

// containsAny returns the first needle that is a substring of s.
func containsAny(s string, needles []string) (string, bool) {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return n, true
		}
	}
	return "", false
}

func lowerAll(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}
