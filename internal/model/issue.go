// Package model defines the records that flow through the search pipeline.
package model

import "time"

// Issue is a search hit as returned by the GitHub issue search API.
type Issue struct {
	URL           string // API form, e.g. https://api.github.com/repos/o/r/issues/1
	HTMLURL       string // browsable form, e.g. https://github.com/o/r/issues/1
	Title         string
	Body          string
	Labels        []string
	CommentsURL   string
	RepositoryURL string
	CreatedAt     time.Time
}

// Comment is a single issue comment.
type Comment struct {
	Body string
}

// IssuePage is one page of issue search results.
type IssuePage struct {
	Issues []Issue
	Total  int
	// NextPage is the page number to request next, 0 when there is none.
	NextPage int
}
