package miner

import (
	"context"

	"github.com/spiffcs/racefinder/internal/model"
)

// IssueSearcher runs one page of an issue search.
type IssueSearcher interface {
	SearchIssues(ctx context.Context, query string, page, perPage int) (*model.IssuePage, error)
}

// Fetcher dereferences URLs embedded in issue search results.
type Fetcher interface {
	Comments(ctx context.Context, commentsURL string) ([]model.Comment, error)
	Repository(ctx context.Context, repoURL string) (*model.Repository, error)
}

// CodeSearcher counts code search hits for a keyword inside one repository.
type CodeSearcher interface {
	CodeMatches(ctx context.Context, keyword, repoFullName string) (int, error)
}

// Client is everything the pipeline needs from GitHub.
type Client interface {
	IssueSearcher
	Fetcher
	CodeSearcher
}
