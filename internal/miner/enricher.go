package miner

import (
	"context"
	"fmt"
	"strings"

	"github.com/spiffcs/racefinder/internal/model"
)

// Enricher fetches the data an issue search hit does not carry itself.
type Enricher struct {
	fetcher Fetcher
}

// NewEnricher creates an Enricher backed by fetcher.
func NewEnricher(fetcher Fetcher) *Enricher {
	return &Enricher{fetcher: fetcher}
}

// Content returns the title, body and all comment bodies of issue joined by
// single spaces. Empty bodies are skipped.
func (e *Enricher) Content(ctx context.Context, issue model.Issue) (string, error) {
	var sb strings.Builder
	sb.WriteString(issue.Title)
	if issue.Body != "" {
		sb.WriteString(" ")
		sb.WriteString(issue.Body)
	}

	if issue.CommentsURL == "" {
		return sb.String(), nil
	}
	comments, err := e.fetcher.Comments(ctx, issue.CommentsURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch comments for %s: %w", issue.HTMLURL, err)
	}
	for _, c := range comments {
		if c.Body != "" {
			sb.WriteString(" ")
			sb.WriteString(c.Body)
		}
	}
	return sb.String(), nil
}

// Repository returns the metadata of the repository that owns issue.
func (e *Enricher) Repository(ctx context.Context, issue model.Issue) (*model.Repository, error) {
	repo, err := e.fetcher.Repository(ctx, issue.RepositoryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repository for %s: %w", issue.HTMLURL, err)
	}
	return repo, nil
}
