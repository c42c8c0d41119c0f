// Package ghclient talks to the GitHub REST API on behalf of the search
// pipeline.
package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/spiffcs/racefinder/internal/constants"
	"github.com/spiffcs/racefinder/internal/model"
)

// Credentials are optional. A token alone authenticates with a bearer
// token, a user plus token with basic auth, and neither runs anonymously
// under the much lower unauthenticated quota.
type Credentials struct {
	User  string
	Token string
}

// Anonymous reports whether no credentials were supplied.
func (c Credentials) Anonymous() bool {
	return c.Token == ""
}

// Client wraps the GitHub API client.
type Client struct {
	client *gh.Client
	limits *RateLimitState
}

// ClientOption configures a Client.
type ClientOption func(*gh.Client) error

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *gh.Client) error {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid base URL %q: %w", baseURL, err)
		}
		c.BaseURL = u
		return nil
	}
}

// NewClient creates a GitHub client for creds.
func NewClient(ctx context.Context, creds Credentials, opts ...ClientOption) (*Client, error) {
	var hc *http.Client
	switch {
	case creds.Token != "" && creds.User != "":
		bt := &gh.BasicAuthTransport{Username: creds.User, Password: creds.Token}
		hc = bt.Client()
	case creds.Token != "":
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.Token}))
	default:
		hc = &http.Client{}
	}

	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	limits := &RateLimitState{}
	hc.Transport = &rateLimitTransport{base: base, state: limits}

	client := gh.NewClient(hc)
	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}

	return &Client{client: client, limits: limits}, nil
}

// RateLimitState exposes the quota observed by this client.
func (c *Client) RateLimitState() *RateLimitState {
	return c.limits
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}

// SearchIssues fetches one page of issue search results in the order the
// backend returns them.
func (c *Client) SearchIssues(ctx context.Context, query string, page, perPage int) (*model.IssuePage, error) {
	opts := &gh.SearchOptions{
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	result, resp, err := c.client.Search.Issues(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("issue search failed: %w", err)
	}

	p := &model.IssuePage{
		Total:    result.GetTotal(),
		NextPage: resp.NextPage,
		Issues:   make([]model.Issue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		p.Issues = append(p.Issues, toIssue(issue))
	}
	return p, nil
}

// Comments dereferences an issue's comments URL and returns every comment.
func (c *Client) Comments(ctx context.Context, commentsURL string) ([]model.Comment, error) {
	var comments []model.Comment

	for page := 1; page != 0; {
		u, err := withPage(commentsURL, page, constants.MaxPerPage)
		if err != nil {
			return nil, err
		}
		req, err := c.client.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		var batch []*gh.IssueComment
		resp, err := c.client.Do(ctx, req, &batch)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments: %w", err)
		}
		for _, ic := range batch {
			comments = append(comments, model.Comment{Body: ic.GetBody()})
		}
		page = resp.NextPage
	}

	return comments, nil
}

// Repository dereferences a repository API URL.
func (c *Client) Repository(ctx context.Context, repoURL string) (*model.Repository, error) {
	rev, err := c.RepositoryIfModified(ctx, repoURL, "")
	if err != nil {
		return nil, err
	}
	return rev.Repository, nil
}

// RepositoryRevision is the outcome of a conditional repository fetch.
type RepositoryRevision struct {
	// Repository is nil when NotModified is set.
	Repository  *model.Repository
	ETag        string
	NotModified bool
}

// RepositoryIfModified dereferences a repository API URL unless GitHub
// reports that it still matches etag. An empty etag always fetches.
func (c *Client) RepositoryIfModified(ctx context.Context, repoURL, etag string) (*RepositoryRevision, error) {
	req, err := c.client.NewRequest(http.MethodGet, repoURL, nil)
	if err != nil {
		return nil, err
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	var repo gh.Repository
	resp, err := c.client.Do(ctx, req, &repo)
	if etag != "" && resp != nil && resp.StatusCode == http.StatusNotModified {
		return &RepositoryRevision{ETag: etag, NotModified: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}

	return &RepositoryRevision{
		Repository: &model.Repository{
			URL:        repoURL,
			FullName:   repo.GetFullName(),
			Stars:      repo.GetStargazersCount(),
			OpenIssues: repo.GetOpenIssuesCount(),
			UpdatedAt:  repo.GetUpdatedAt().Time,
		},
		ETag: resp.Header.Get("ETag"),
	}, nil
}

// CodeMatches counts files in repoFullName containing keyword. Only the
// total is needed, so a single result is requested.
func (c *Client) CodeMatches(ctx context.Context, keyword, repoFullName string) (int, error) {
	query := fmt.Sprintf("%s in:file repo:%s", keyword, repoFullName)
	opts := &gh.SearchOptions{ListOptions: gh.ListOptions{PerPage: 1}}

	result, _, err := c.client.Search.Code(ctx, query, opts)
	if err != nil {
		return 0, fmt.Errorf("code search failed: %w", err)
	}
	return result.GetTotal(), nil
}

// toIssue converts a search result into the pipeline's issue record.
func toIssue(issue *gh.Issue) model.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	return model.Issue{
		URL:           issue.GetURL(),
		HTMLURL:       issue.GetHTMLURL(),
		Title:         issue.GetTitle(),
		Body:          issue.GetBody(),
		Labels:        labels,
		CommentsURL:   issue.GetCommentsURL(),
		RepositoryURL: issue.GetRepositoryURL(),
		CreatedAt:     issue.GetCreatedAt().Time,
	}
}

// withPage adds pagination parameters to an API URL.
func withPage(rawURL string, page, perPage int) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
