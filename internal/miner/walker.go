package miner

import (
	"context"
	"fmt"

	"github.com/spiffcs/racefinder/internal/constants"
	"github.com/spiffcs/racefinder/internal/log"
	"github.com/spiffcs/racefinder/internal/model"
)

// Visitor receives each issue of a walk in backend order.
type Visitor func(ctx context.Context, issue model.Issue) (Signal, error)

// WalkStats describes what a single Walk covered.
type WalkStats struct {
	Pages  int
	Issues int
	Signal Signal
}

// Walker follows the pages of one issue search.
type Walker struct {
	searcher IssueSearcher
	perPage  int
	policy   PaginationPolicy
}

// NewWalker creates a Walker. perPage <= 0 selects the API maximum.
func NewWalker(searcher IssueSearcher, perPage int, policy PaginationPolicy) *Walker {
	if perPage <= 0 {
		perPage = constants.MaxPerPage
	}
	if policy == "" {
		policy = PaginationStop
	}
	return &Walker{searcher: searcher, perPage: perPage, policy: policy}
}

// Walk runs query and hands every result to visit until the results are
// exhausted or visit returns Halt. A failure on the first page is returned;
// a failure on a later page is handled according to the pagination policy.
func (w *Walker) Walk(ctx context.Context, query string, visit Visitor) (WalkStats, error) {
	var stats WalkStats

	page := 1
	result, err := w.searcher.SearchIssues(ctx, query, page, w.perPage)
	if err != nil {
		return stats, fmt.Errorf("failed to search issues: %w", err)
	}
	log.Debug("search results", "total", result.Total, "page", page, "items", len(result.Issues))

	for {
		stats.Pages++
		for _, issue := range result.Issues {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			stats.Issues++
			sig, err := visit(ctx, issue)
			if err != nil {
				return stats, err
			}
			if sig == Halt {
				stats.Signal = Halt
				return stats, nil
			}
		}

		// A next page that does not advance is as good as none.
		if result.NextPage <= page {
			return stats, nil
		}
		page = result.NextPage

		next, err := w.searcher.SearchIssues(ctx, query, page, w.perPage)
		if err != nil {
			if w.policy == PaginationFail || ctx.Err() != nil {
				return stats, fmt.Errorf("failed to fetch search page %d: %w", page, err)
			}
			log.Warn("stopping pagination after failed page", "page", page, "error", err)
			return stats, nil
		}
		log.Debug("search results", "page", page, "items", len(next.Issues))
		result = next
	}
}
